package domain

import (
	"context"
	"time"

	"github.com/duynhne/loaner-service/internal/booking"
)

// CreateBookingRequest is the body of POST /equipment/:id/bookings.
// Dates accept RFC 3339 timestamps or plain YYYY-MM-DD days.
type CreateBookingRequest struct {
	UserID    string `json:"userId"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Notes     string `json:"notes" binding:"max=500"`
}

// BookingRepository defines the data-access contract for bookings. Bookings
// are a top-level collection that reference equipment and user by id.
type BookingRepository interface {
	// List returns bookings matching the equipment and status selectors of
	// filter, in no particular order. Active-view filtering and ordering are
	// left to booking.Apply.
	List(ctx context.Context, filter booking.Filter) ([]booking.Booking, error)

	// GetByID returns (nil, nil) when no booking is found.
	GetByID(ctx context.Context, id string) (*booking.Booking, error)

	Create(ctx context.Context, b booking.Booking) error

	// UpdateStatus overwrites the status. There is no version check; the
	// last writer wins.
	UpdateStatus(ctx context.Context, id string, status booking.Status, at time.Time) error
}
