package v1

import (
	"errors"
	"net/http"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/loaner-service/internal/core/domain"
	logicv1 "github.com/duynhne/loaner-service/internal/logic/v1"
	"github.com/duynhne/loaner-service/middleware"
)

// Login handles POST /auth.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := startSpan(c, "http.auth.login")
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		respondBindError(c, span, err)
		return
	}
	span.SetAttributes(attribute.Bool("request.valid", true))

	response, err := h.auth.Login(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, logicv1.ErrInvalidCredentials), errors.Is(err, logicv1.ErrUserNotFound):
			// Unknown users look the same as wrong passwords
			span.RecordError(err)
			logger.Warn().Err(err).Msg("Login failed")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		default:
			respondError(c, span, err, "Login failed")
		}
		return
	}

	logger.Info().Str("user_id", response.User.ID).Msg("Login successful")
	c.JSON(http.StatusOK, response)
}

// GetMe handles GET /auth/me.
func (h *Handler) GetMe(c *gin.Context) {
	ctx, span := startSpan(c, "http.auth.me")
	defer span.End()

	claims := middleware.ClaimsFromContext(c)
	user, err := h.auth.Me(ctx, claims)
	if err != nil {
		respondError(c, span, err, "Get current user failed")
		return
	}
	c.JSON(http.StatusOK, user)
}
