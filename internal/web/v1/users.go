package v1

import (
	"net/http"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/loaner-service/internal/core/domain"
)

// ListUsers handles GET /users.
func (h *Handler) ListUsers(c *gin.Context) {
	ctx, span := startSpan(c, "http.users.list")
	defer span.End()

	users, err := h.users.List(ctx)
	if err != nil {
		respondError(c, span, err, "List users failed")
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /users/:id.
func (h *Handler) GetUser(c *gin.Context) {
	ctx, span := startSpan(c, "http.users.get", attribute.String("user.id", c.Param("id")))
	defer span.End()

	user, err := h.users.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, span, err, "Get user failed")
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(c *gin.Context) {
	ctx, span := startSpan(c, "http.users.create")
	defer span.End()

	var req domain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, span, err)
		return
	}

	user, err := h.users.Create(ctx, req)
	if err != nil {
		respondError(c, span, err, "Create user failed")
		return
	}

	logger := pkgzerolog.FromContext(ctx)
	logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("User created")
	c.JSON(http.StatusCreated, user)
}

// UpdateUser handles PATCH /users/:id.
func (h *Handler) UpdateUser(c *gin.Context) {
	ctx, span := startSpan(c, "http.users.update", attribute.String("user.id", c.Param("id")))
	defer span.End()

	var req domain.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, span, err)
		return
	}

	user, err := h.users.Update(ctx, c.Param("id"), req)
	if err != nil {
		respondError(c, span, err, "Update user failed")
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /users/:id.
func (h *Handler) DeleteUser(c *gin.Context) {
	ctx, span := startSpan(c, "http.users.delete", attribute.String("user.id", c.Param("id")))
	defer span.End()

	if err := h.users.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, span, err, "Delete user failed")
		return
	}
	c.Status(http.StatusNoContent)
}
