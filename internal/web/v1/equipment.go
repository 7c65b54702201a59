package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/loaner-service/internal/core/domain"
)

// ListEquipment handles GET /equipment?category=&status=.
func (h *Handler) ListEquipment(c *gin.Context) {
	ctx, span := startSpan(c, "http.equipment.list")
	defer span.End()

	filter := domain.EquipmentFilter{
		Category: c.Query("category"),
		Status:   domain.EquipmentStatus(c.Query("status")),
	}
	items, err := h.equipment.List(ctx, filter)
	if err != nil {
		respondError(c, span, err, "List equipment failed")
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetEquipment handles GET /equipment/:id.
func (h *Handler) GetEquipment(c *gin.Context) {
	ctx, span := startSpan(c, "http.equipment.get", attribute.String("equipment.id", c.Param("id")))
	defer span.End()

	item, err := h.equipment.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, span, err, "Get equipment failed")
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateEquipment handles POST /equipment.
func (h *Handler) CreateEquipment(c *gin.Context) {
	ctx, span := startSpan(c, "http.equipment.create")
	defer span.End()

	var req domain.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, span, err)
		return
	}

	item, err := h.equipment.Create(ctx, req)
	if err != nil {
		respondError(c, span, err, "Create equipment failed")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateEquipment handles PATCH /equipment/:id.
func (h *Handler) UpdateEquipment(c *gin.Context) {
	ctx, span := startSpan(c, "http.equipment.update", attribute.String("equipment.id", c.Param("id")))
	defer span.End()

	var req domain.UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, span, err)
		return
	}

	item, err := h.equipment.Update(ctx, c.Param("id"), req)
	if err != nil {
		respondError(c, span, err, "Update equipment failed")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteEquipment handles DELETE /equipment/:id.
func (h *Handler) DeleteEquipment(c *gin.Context) {
	ctx, span := startSpan(c, "http.equipment.delete", attribute.String("equipment.id", c.Param("id")))
	defer span.End()

	if err := h.equipment.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, span, err, "Delete equipment failed")
		return
	}
	c.Status(http.StatusNoContent)
}
