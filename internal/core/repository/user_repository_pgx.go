package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/loaner-service/internal/core/domain"
)

const userColumns = `id, name, email, phone, dob, role, date_joined, last_updated, password_hash`

// PgxUserRepository implements domain.UserRepository using pgxpool.
type PgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*domain.UserRow, error) {
	var u domain.UserRow
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.DOB, &u.Role,
		&u.DateJoined, &u.LastUpdated, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns the user matching the given email.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserRow, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetByID returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByID(ctx context.Context, id string) (*domain.UserRow, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// List returns every user ordered by name.
func (r *PgxUserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.User, error) {
		u, err := scanUser(row)
		if err != nil {
			return domain.User{}, err
		}
		return u.User, nil
	})
}

// ExistsByEmail returns true when a user with the given email exists.
func (r *PgxUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts a new user.
func (r *PgxUserRepository) Create(ctx context.Context, u domain.UserRow) error {
	query := `
		INSERT INTO users (id, name, email, phone, dob, role, password_hash, date_joined, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query, u.ID, u.Name, u.Email, u.Phone, u.DOB, u.Role,
		u.PasswordHash, u.DateJoined, u.LastUpdated)
	return err
}

// Update applies patch. Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) Update(ctx context.Context, id string, patch domain.UserPatch, at time.Time) (*domain.User, error) {
	var s setClause
	if patch.Name != nil {
		s.add("name", *patch.Name)
	}
	if patch.Email != nil {
		s.add("email", *patch.Email)
	}
	if patch.Phone != nil {
		s.add("phone", *patch.Phone)
	}
	if patch.DOB != nil {
		s.add("dob", *patch.DOB)
	}
	if patch.Role != nil {
		s.add("role", *patch.Role)
	}
	s.add("last_updated", at)

	query, args := s.statement("users", id, userColumns)
	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil || u == nil {
		return nil, err
	}
	return &u.User, nil
}

// Delete removes the user and, by cascade, their bookings.
func (r *PgxUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateLastLogin sets the last_login timestamp for the given user.
func (r *PgxUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	return err
}
