package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/loaner-service/internal/core/domain"
	logicv1 "github.com/duynhne/loaner-service/internal/logic/v1"
	"github.com/duynhne/loaner-service/internal/token"
	"github.com/duynhne/loaner-service/middleware"
)

// Handler groups HTTP handlers for the loaner API v1.
// Dependencies are injected via the constructor, no global state.
type Handler struct {
	auth      *logicv1.AuthService
	users     *logicv1.UserService
	equipment *logicv1.EquipmentService
	bookings  *logicv1.BookingService
	issuer    *token.Issuer
}

// NewHandler creates a new Handler.
func NewHandler(auth *logicv1.AuthService, users *logicv1.UserService, equipment *logicv1.EquipmentService, bookings *logicv1.BookingService, issuer *token.Issuer) *Handler {
	return &Handler{auth: auth, users: users, equipment: equipment, bookings: bookings, issuer: issuer}
}

// RegisterRoutes registers all loaner API v1 routes on the given router
// group. loginLimit, when non-nil, throttles POST /auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, loginLimit gin.HandlerFunc) {
	if loginLimit != nil {
		rg.POST("/auth", loginLimit, h.Login)
	} else {
		rg.POST("/auth", h.Login)
	}

	authed := rg.Group("", middleware.Authenticate(h.issuer))
	authed.GET("/auth/me", h.GetMe)

	users := authed.Group("/users", middleware.RequireAdmin())
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.GET("/:id", h.GetUser)
	users.PATCH("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)

	authed.GET("/equipment", h.ListEquipment)
	authed.GET("/equipment/:id", h.GetEquipment)
	authed.POST("/equipment", middleware.RequireStaff(), h.CreateEquipment)
	authed.PATCH("/equipment/:id", middleware.RequireStaff(), h.UpdateEquipment)
	authed.DELETE("/equipment/:id", middleware.RequireAdmin(), h.DeleteEquipment)

	authed.GET("/equipment/:id/bookings", h.ListEquipmentBookings)
	authed.POST("/equipment/:id/bookings", h.CreateBooking)
	authed.PATCH("/equipment/:id/bookings/:bookingId/:action", middleware.RequireStaff(), h.TransitionBooking)
	authed.GET("/bookings", h.ListBookings)
}

func startSpan(c *gin.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	}, attrs...)
	return middleware.StartSpan(c.Request.Context(), name, trace.WithAttributes(attrs...))
}

// actor returns the caller behind the verified bearer token.
func actor(c *gin.Context) domain.AuthUser {
	if claims := middleware.ClaimsFromContext(c); claims != nil {
		return claims.AuthUser()
	}
	return domain.AuthUser{}
}
