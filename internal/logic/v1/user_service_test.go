package v1

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/loaner-service/internal/core/domain"
)

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.users.Create(ctx, domain.CreateUserRequest{
		Name:     "  Ada  ",
		Email:    "ada@example.com",
		Phone:    "555-0101",
		Password: "password123",
		DOB:      "1990-12-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, domain.RoleStudent, u.Role)
	assert.Equal(t, t0, u.DateJoined)
	require.NotNil(t, u.DOB)
	assert.Equal(t, time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC), *u.DOB)

	row, err := f.mem.Users().GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.NotEqual(t, "password123", row.PasswordHash)

	_, err = f.users.Create(ctx, domain.CreateUserRequest{
		Name: "Ada again", Email: "ada@example.com", Phone: "1", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = f.users.Create(ctx, domain.CreateUserRequest{
		Name: "Bad role", Email: "x@example.com", Phone: "1", Password: "password123", Role: "janitor",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.createUser(t, "a@example.com", domain.RoleStudent)
	f.createUser(t, "b@example.com", domain.RoleStudent)

	f.clk.Advance(time.Hour)
	role := domain.RoleStaff
	name := "Promoted"
	u, err := f.users.Update(ctx, a.ID, domain.UpdateUserRequest{Name: &name, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Promoted", u.Name)
	assert.Equal(t, domain.RoleStaff, u.Role)
	assert.Equal(t, t0.Add(time.Hour), u.LastUpdated)

	taken := "b@example.com"
	_, err = f.users.Update(ctx, a.ID, domain.UpdateUserRequest{Email: &taken})
	assert.ErrorIs(t, err, ErrUserExists)

	same := "A@example.com"
	_, err = f.users.Update(ctx, a.ID, domain.UpdateUserRequest{Email: &same})
	assert.NoError(t, err)

	_, err = f.users.Update(ctx, "missing", domain.UpdateUserRequest{Name: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.createUser(t, "a@example.com", domain.RoleStudent)

	require.NoError(t, f.users.Delete(ctx, a.ID))
	assert.ErrorIs(t, f.users.Delete(ctx, a.ID), ErrUserNotFound)
	_, err := f.users.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.users.EnsureAdmin(ctx, "root@example.com", "password123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.users.EnsureAdmin(ctx, "root@example.com", "other-password")
	require.NoError(t, err)
	assert.False(t, created)

	resp, err := f.auth.Login(ctx, domain.LoginRequest{Email: "root@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, resp.User.Role)
}
