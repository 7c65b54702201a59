package v1

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/loaner-service/internal/core/domain"
	"github.com/duynhne/loaner-service/middleware"
)

// UserService implements user administration.
type UserService struct {
	users domain.UserRepository
	deps  Deps
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository, deps Deps) *UserService {
	return &UserService{users: users, deps: deps.withDefaults()}
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "users.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	users, err := s.users.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list users: %w", err)
	}
	span.SetAttributes(attribute.Int("users.count", len(users)))
	return users, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	row, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("query user %s: %w", id, err)
	}
	if row == nil {
		return nil, fmt.Errorf("get user %s: %w", id, ErrUserNotFound)
	}
	return &row.User, nil
}

// Create registers a new account. The role defaults to student.
func (s *UserService) Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "users.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("role", string(req.Role)),
	))
	defer span.End()

	role := req.Role
	if role == "" {
		role = domain.RoleStudent
	}
	if !role.Valid() {
		return nil, fmt.Errorf("role %q: %w", role, ErrInvalidInput)
	}

	var dob *time.Time
	if req.DOB != "" {
		parsed, err := parseDate("dob", req.DOB)
		if err != nil {
			return nil, err
		}
		dob = &parsed
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("create user %q: %w", req.Email, ErrUserExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.deps.Clock.Now()
	row := domain.UserRow{
		User: domain.User{
			ID:          s.deps.NewID(),
			Name:        strings.TrimSpace(req.Name),
			Email:       strings.TrimSpace(req.Email),
			Phone:       strings.TrimSpace(req.Phone),
			DOB:         dob,
			Role:        role,
			DateJoined:  now,
			LastUpdated: now,
		},
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, row); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	span.SetAttributes(attribute.String("user.id", row.ID))
	span.AddEvent("user.created")
	return &row.User, nil
}

// Update applies a partial update.
func (s *UserService) Update(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "users.update", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", id),
	))
	defer span.End()

	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %s: %w", id, err)
	}
	if current == nil {
		return nil, fmt.Errorf("update user %s: %w", id, ErrUserNotFound)
	}

	patch := domain.UserPatch{Name: req.Name, Phone: req.Phone, Role: req.Role}
	if req.Email != nil && !strings.EqualFold(*req.Email, current.Email) {
		exists, err := s.users.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("check existing user: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("update user %s email %q: %w", id, *req.Email, ErrUserExists)
		}
		patch.Email = req.Email
	}
	if req.DOB != nil {
		dob, err := parseDate("dob", *req.DOB)
		if err != nil {
			return nil, err
		}
		patch.DOB = &dob
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, fmt.Errorf("role %q: %w", *patch.Role, ErrInvalidInput)
	}

	updated, err := s.users.Update(ctx, id, patch, s.deps.Clock.Now())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("update user %s: %w", id, ErrUserNotFound)
	}
	return updated, nil
}

// Delete removes a user and their bookings.
func (s *UserService) Delete(ctx context.Context, id string) error {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("delete user %s: %w", id, ErrUserNotFound)
	}
	return nil
}

// EnsureAdmin creates an admin account for email unless one with that
// email already exists. It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return false, nil
	}
	_, err = s.Create(ctx, domain.CreateUserRequest{
		Name:     "Administrator",
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
