package v1

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/loaner-service/internal/booking"
	"github.com/duynhne/loaner-service/internal/core/domain"
)

func TestBookingService_Request(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	student := f.createUser(t, "s@example.com", domain.RoleStudent)
	other := f.createUser(t, "o@example.com", domain.RoleStudent)
	staff := f.createUser(t, "staff@example.com", domain.RoleStaff)
	item := f.createEquipment(t, "Camera")

	tests := []struct {
		name    string
		actor   domain.AuthUser
		eqID    string
		req     domain.CreateBookingRequest
		wantErr error
		wantFor string
	}{
		{
			name:    "student books for self",
			actor:   student,
			eqID:    item.ID,
			req:     domain.CreateBookingRequest{StartDate: "2025-03-12", EndDate: "2025-03-14", Notes: "field trip"},
			wantFor: student.ID,
		},
		{
			name:    "same day range",
			actor:   student,
			eqID:    item.ID,
			req:     domain.CreateBookingRequest{StartDate: "2025-03-12T10:00:00Z", EndDate: "2025-03-12T10:00:00Z"},
			wantFor: student.ID,
		},
		{
			name:    "staff books on behalf",
			actor:   staff,
			eqID:    item.ID,
			req:     domain.CreateBookingRequest{UserID: other.ID, StartDate: "2025-03-12", EndDate: "2025-03-13"},
			wantFor: other.ID,
		},
		{
			name:    "student cannot book for others",
			actor:   student,
			eqID:    item.ID,
			req:     domain.CreateBookingRequest{UserID: other.ID, StartDate: "2025-03-12", EndDate: "2025-03-13"},
			wantErr: ErrForbidden,
		},
		{
			name:    "end before start",
			actor:   student,
			eqID:    item.ID,
			req:     domain.CreateBookingRequest{StartDate: "2025-03-14", EndDate: "2025-03-12"},
			wantErr: booking.ErrInvalidDateRange,
		},
		{
			name:    "unparseable date",
			actor:   student,
			eqID:    item.ID,
			req:     domain.CreateBookingRequest{StartDate: "tomorrow", EndDate: "2025-03-12"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown equipment",
			actor:   student,
			eqID:    "missing",
			req:     domain.CreateBookingRequest{StartDate: "2025-03-12", EndDate: "2025-03-13"},
			wantErr: ErrEquipmentNotFound,
		},
		{
			name:    "unknown user",
			actor:   staff,
			eqID:    item.ID,
			req:     domain.CreateBookingRequest{UserID: "ghost", StartDate: "2025-03-12", EndDate: "2025-03-13"},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := f.bookings.Request(ctx, tt.actor, tt.eqID, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, b.ID)
			assert.Equal(t, booking.StatusPending, b.Status)
			assert.Equal(t, tt.wantFor, b.UserID)
			assert.Equal(t, tt.req.Notes, b.Notes)
			assert.Equal(t, t0, b.CreatedAt)

			stored, err := f.mem.Bookings().GetByID(ctx, b.ID)
			require.NoError(t, err)
			assert.Equal(t, *b, *stored)
		})
	}
}

func TestBookingService_OverlapAccepted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.createUser(t, "a@example.com", domain.RoleStudent)
	b := f.createUser(t, "b@example.com", domain.RoleStudent)
	item := f.createEquipment(t, "Camera")

	req := domain.CreateBookingRequest{StartDate: "2025-03-12", EndDate: "2025-03-14"}
	_, err := f.bookings.Request(ctx, a, item.ID, req)
	require.NoError(t, err)
	_, err = f.bookings.Request(ctx, b, item.ID, req)
	require.NoError(t, err)
}

func TestBookingService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	student := f.createUser(t, "s@example.com", domain.RoleStudent)
	staff := f.createUser(t, "staff@example.com", domain.RoleStaff)
	item := f.createEquipment(t, "Camera")

	b, err := f.bookings.Request(ctx, student, item.ID, domain.CreateBookingRequest{StartDate: "2025-03-12", EndDate: "2025-03-14"})
	require.NoError(t, err)

	_, err = f.bookings.Transition(ctx, staff, item.ID, b.ID, "check-out")
	assert.ErrorIs(t, err, booking.ErrIllegalTransition)

	steps := []struct {
		action     string
		wantStatus booking.Status
		wantItem   domain.EquipmentStatus
	}{
		{"approve", booking.StatusApproved, domain.EquipmentAvailable},
		{"check-out", booking.StatusCheckedOut, domain.EquipmentOut},
		{"check-in", booking.StatusReturned, domain.EquipmentAvailable},
	}
	for _, step := range steps {
		f.clk.Advance(time.Minute)
		got, err := f.bookings.Transition(ctx, staff, item.ID, b.ID, step.action)
		require.NoError(t, err, step.action)
		assert.Equal(t, step.wantStatus, got.Status)
		assert.Equal(t, f.clk.Now(), got.UpdatedAt)

		e, err := f.equipment.Get(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, step.wantItem, e.Status, step.action)
	}

	_, err = f.bookings.Transition(ctx, staff, item.ID, b.ID, "approve")
	assert.ErrorIs(t, err, booking.ErrIllegalTransition)
}

func TestBookingService_TransitionLookup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	student := f.createUser(t, "s@example.com", domain.RoleStudent)
	staff := f.createUser(t, "staff@example.com", domain.RoleStaff)
	camera := f.createEquipment(t, "Camera")
	tripod := f.createEquipment(t, "Tripod")

	b, err := f.bookings.Request(ctx, student, camera.ID, domain.CreateBookingRequest{StartDate: "2025-03-12", EndDate: "2025-03-14"})
	require.NoError(t, err)

	_, err = f.bookings.Transition(ctx, staff, tripod.ID, b.ID, "approve")
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = f.bookings.Transition(ctx, staff, camera.ID, "missing", "approve")
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = f.bookings.Transition(ctx, staff, camera.ID, b.ID, "cancel")
	assert.ErrorIs(t, err, booking.ErrUnknownAction)

	stored, err := f.mem.Bookings().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, stored.Status)
}

func TestBookingService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.createUser(t, "alice@example.com", domain.RoleStudent)
	bob := f.createUser(t, "bob@example.com", domain.RoleStudent)
	admin := f.createUser(t, "admin@example.com", domain.RoleAdmin)
	camera := f.createEquipment(t, "Camera")
	tripod := f.createEquipment(t, "Tripod")

	req := domain.CreateBookingRequest{StartDate: "2025-03-12", EndDate: "2025-03-14"}
	first, err := f.bookings.Request(ctx, alice, camera.ID, req)
	require.NoError(t, err)
	f.clk.Advance(time.Minute)
	second, err := f.bookings.Request(ctx, bob, camera.ID, req)
	require.NoError(t, err)
	f.clk.Advance(time.Minute)
	third, err := f.bookings.Request(ctx, alice, tripod.ID, req)
	require.NoError(t, err)
	_, err = f.bookings.Transition(ctx, admin, camera.ID, second.ID, "deny")
	require.NoError(t, err)

	ids := func(bs []booking.Booking) []string {
		out := make([]string, 0, len(bs))
		for _, b := range bs {
			out = append(out, b.ID)
		}
		return out
	}

	got, err := f.bookings.List(ctx, admin, booking.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, first.ID}, ids(got))

	got, err = f.bookings.List(ctx, admin, booking.Filter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(got))

	got, err = f.bookings.List(ctx, admin, booking.Filter{Status: booking.StatusDenied})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, ids(got))

	got, err = f.bookings.List(ctx, admin, booking.Filter{EquipmentID: camera.ID, IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID, first.ID}, ids(got))

	got, err = f.bookings.List(ctx, alice, booking.Filter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, first.ID}, ids(got))

	_, err = f.bookings.List(ctx, admin, booking.Filter{EquipmentID: "missing"})
	assert.ErrorIs(t, err, ErrEquipmentNotFound)
}
