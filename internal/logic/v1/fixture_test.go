package v1

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/duynhne/loaner-service/internal/clock"
	"github.com/duynhne/loaner-service/internal/core/domain"
	"github.com/duynhne/loaner-service/internal/core/repository"
	"github.com/duynhne/loaner-service/internal/token"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	clk       *clock.FakeClock
	mem       *repository.Memory
	auth      *AuthService
	users     *UserService
	equipment *EquipmentService
	bookings  *BookingService
	issuer    *token.Issuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.Fake(t0)
	seq := 0
	deps := Deps{
		Clock: clk,
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	}
	mem := repository.NewMemory()
	issuer := token.NewIssuer("test-secret-with-enough-bytes-000", "loaner-test", time.Hour, clk)
	return &fixture{
		clk:       clk,
		mem:       mem,
		issuer:    issuer,
		auth:      NewAuthService(mem.Users(), issuer, deps),
		users:     NewUserService(mem.Users(), deps),
		equipment: NewEquipmentService(mem.Equipment(), deps),
		bookings:  NewBookingService(mem.Bookings(), mem.Equipment(), mem.Users(), deps),
	}
}

func (f *fixture) createUser(t *testing.T, email string, role domain.Role) domain.AuthUser {
	t.Helper()
	u, err := f.users.Create(context.Background(), domain.CreateUserRequest{
		Name:     "User " + email,
		Email:    email,
		Phone:    "555-0100",
		Password: "password123",
		Role:     role,
	})
	require.NoError(t, err)
	return domain.AuthUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (f *fixture) createEquipment(t *testing.T, name string) *domain.Equipment {
	t.Helper()
	e, err := f.equipment.Create(context.Background(), domain.CreateEquipmentRequest{Name: name, Category: "camera"})
	require.NoError(t, err)
	return e
}
