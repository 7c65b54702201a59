package domain

import (
	"context"
	"time"
)

// Role is the actor role carried in the access token.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// AuthUser is the identity returned on login and stored by the client next
// to the token.
type AuthUser struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// User is the public view of a user account.
type User struct {
	ID          string     `json:"_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	DOB         *time.Time `json:"dob,omitempty"`
	Role        Role       `json:"role"`
	DateJoined  time.Time  `json:"dateJoined"`
	LastUpdated time.Time  `json:"lastUpdated"`
}

// UserRow represents a user record returned from the database.
// It includes the password hash so the Logic layer can verify credentials.
type UserRow struct {
	User
	PasswordHash string
}

// UserPatch carries the fields of a partial user update. Nil fields are
// left untouched.
type UserPatch struct {
	Name  *string
	Email *string
	Phone *string
	DOB   *time.Time
	Role  *Role
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only; never on SQL or pgx directly.
type UserRepository interface {
	// GetByEmail returns the user matching the given email.
	// Returns (nil, nil) when no user is found.
	GetByEmail(ctx context.Context, email string) (*UserRow, error)

	// GetByID returns the user with the given id.
	// Returns (nil, nil) when no user is found.
	GetByID(ctx context.Context, id string) (*UserRow, error)

	// List returns every user ordered by name.
	List(ctx context.Context) ([]User, error)

	// ExistsByEmail returns true when a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts a new user.
	Create(ctx context.Context, row UserRow) error

	// Update applies patch and returns the updated user.
	// Returns (nil, nil) when no user is found.
	Update(ctx context.Context, id string, patch UserPatch, at time.Time) (*User, error)

	// Delete removes the user. Returns false when no user was found.
	Delete(ctx context.Context, id string) (bool, error)

	// UpdateLastLogin sets the last_login timestamp for the given user.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
