package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/loaner-service/internal/access"
	"github.com/duynhne/loaner-service/internal/token"
)

const claimsKey = "claims"

// Authenticate verifies the bearer token and stores its claims on the
// context. Missing or invalid tokens end the request with 401.
func Authenticate(issuer *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		scheme, raw, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			return
		}

		claims, err := issuer.Parse(raw)
		if err != nil {
			GetLoggerFromGinContext(c).Warn().Err(err).Msg("Token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFromContext returns the verified claims, or nil on routes without
// Authenticate.
func ClaimsFromContext(c *gin.Context) *token.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*token.Claims)
	return claims
}

// RequireAdmin lets only admins through.
func RequireAdmin() gin.HandlerFunc {
	return gate(access.CanEnterAdminArea)
}

// RequireStaff lets staff and admins through.
func RequireStaff() gin.HandlerFunc {
	return gate(access.CanEnterStaffArea)
}

// gate maps a denied access decision to 401 for anonymous callers and 403
// for signed-in callers with the wrong role.
func gate(decide func(access.State) access.Decision) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := access.Static{}
		if claims := ClaimsFromContext(c); claims != nil {
			user := claims.AuthUser()
			state = access.Static{Authenticated: true, User: &user}
		}

		d := decide(state)
		switch {
		case d.Allowed:
			c.Next()
		case d.Reason == access.ReasonUnauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permission"})
		}
	}
}
