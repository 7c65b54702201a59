package v1

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/loaner-service/internal/core/domain"
	"github.com/duynhne/loaner-service/internal/token"
	"github.com/duynhne/loaner-service/middleware"
)

// AuthService implements authentication business rules.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database or SQL directly.
type AuthService struct {
	users  domain.UserRepository
	issuer *token.Issuer
	deps   Deps
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, issuer *token.Issuer, deps Deps) *AuthService {
	return &AuthService{users: users, issuer: issuer, deps: deps.withDefaults()}
}

// Login verifies email and password and issues an access token.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	row, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", req.Email, err)
	}
	if row == nil {
		middleware.LoginAttempts.WithLabelValues("unknown_user").Inc()
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Email, ErrUserNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(req.Password)); err != nil {
		middleware.LoginAttempts.WithLabelValues("bad_password").Inc()
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Email, ErrInvalidCredentials)
	}

	// Best-effort, don't fail login
	if updateErr := s.users.UpdateLastLogin(ctx, row.ID, s.deps.Clock.Now()); updateErr != nil {
		span.RecordError(fmt.Errorf("update last_login: %w", updateErr))
	}

	user := domain.AuthUser{ID: row.ID, Name: row.Name, Email: row.Email, Role: row.Role}
	accessToken, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	middleware.LoginAttempts.WithLabelValues("success").Inc()
	span.SetAttributes(
		attribute.String("user.id", user.ID),
		attribute.String("user.role", string(user.Role)),
		attribute.String("token.expires_at", expiresAt.String()),
	)
	span.AddEvent("user.authenticated")

	return &domain.LoginResponse{AccessToken: accessToken, User: user}, nil
}

// Me returns the account behind verified claims.
func (s *AuthService) Me(ctx context.Context, claims *token.Claims) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.me", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", claims.Subject),
	))
	defer span.End()

	row, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %s: %w", claims.Subject, err)
	}
	if row == nil {
		return nil, fmt.Errorf("lookup user %s: %w", claims.Subject, ErrUserNotFound)
	}
	return &row.User, nil
}
