package v1

import (
	"net/http"
	"strconv"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/loaner-service/internal/booking"
	"github.com/duynhne/loaner-service/internal/core/domain"
)

// bookingFilter reads ?status= and ?all= into a filter.
func bookingFilter(c *gin.Context) (booking.Filter, error) {
	var f booking.Filter
	if raw := c.Query("status"); raw != "" {
		status, err := booking.ParseStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = status
	}
	if raw := c.Query("all"); raw != "" {
		all, err := strconv.ParseBool(raw)
		if err != nil {
			return f, err
		}
		f.IncludeInactive = all
	}
	return f, nil
}

// ListBookings handles GET /bookings?status=&all=.
func (h *Handler) ListBookings(c *gin.Context) {
	ctx, span := startSpan(c, "http.bookings.list")
	defer span.End()

	filter, err := bookingFilter(c)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookings, err := h.bookings.List(ctx, actor(c), filter)
	if err != nil {
		respondError(c, span, err, "List bookings failed")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// ListEquipmentBookings handles GET /equipment/:id/bookings?status=.
func (h *Handler) ListEquipmentBookings(c *gin.Context) {
	ctx, span := startSpan(c, "http.bookings.list_equipment", attribute.String("equipment.id", c.Param("id")))
	defer span.End()

	filter, err := bookingFilter(c)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter.EquipmentID = c.Param("id")

	bookings, err := h.bookings.List(ctx, actor(c), filter)
	if err != nil {
		respondError(c, span, err, "List equipment bookings failed")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// CreateBooking handles POST /equipment/:id/bookings.
func (h *Handler) CreateBooking(c *gin.Context) {
	ctx, span := startSpan(c, "http.bookings.create", attribute.String("equipment.id", c.Param("id")))
	defer span.End()

	var req domain.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, span, err)
		return
	}

	b, err := h.bookings.Request(ctx, actor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, span, err, "Create booking failed")
		return
	}

	logger := pkgzerolog.FromContext(ctx)
	logger.Info().Str("booking_id", b.ID).Str("equipment_id", b.EquipmentID).Msg("Booking requested")
	c.JSON(http.StatusCreated, b)
}

// TransitionBooking handles PATCH /equipment/:id/bookings/:bookingId/:action.
func (h *Handler) TransitionBooking(c *gin.Context) {
	ctx, span := startSpan(c, "http.bookings.transition",
		attribute.String("equipment.id", c.Param("id")),
		attribute.String("booking.id", c.Param("bookingId")),
		attribute.String("booking.action", c.Param("action")),
	)
	defer span.End()

	b, err := h.bookings.Transition(ctx, actor(c), c.Param("id"), c.Param("bookingId"), c.Param("action"))
	if err != nil {
		respondError(c, span, err, "Booking transition failed")
		return
	}

	logger := pkgzerolog.FromContext(ctx)
	logger.Info().
		Str("booking_id", b.ID).
		Str("action", c.Param("action")).
		Str("status", string(b.Status)).
		Msg("Booking transitioned")
	c.JSON(http.StatusOK, b)
}
