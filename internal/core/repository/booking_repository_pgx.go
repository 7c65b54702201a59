package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/loaner-service/internal/booking"
)

const bookingColumns = `id, equipment_id, user_id, start_date, end_date, status, notes, created_at, updated_at`

// PgxBookingRepository implements domain.BookingRepository using pgxpool.
type PgxBookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository creates a new PgxBookingRepository.
func NewBookingRepository(pool *pgxpool.Pool) *PgxBookingRepository {
	return &PgxBookingRepository{pool: pool}
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var b booking.Booking
	err := row.Scan(&b.ID, &b.EquipmentID, &b.UserID, &b.StartDate, &b.EndDate, &b.Status,
		&b.Notes, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// List returns bookings matching the equipment and status selectors.
func (r *PgxBookingRepository) List(ctx context.Context, filter booking.Filter) ([]booking.Booking, error) {
	var where []string
	var args []any
	if filter.EquipmentID != "" {
		args = append(args, filter.EquipmentID)
		where = append(where, fmt.Sprintf("equipment_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (booking.Booking, error) {
		b, err := scanBooking(row)
		if err != nil {
			return booking.Booking{}, err
		}
		return *b, nil
	})
}

// GetByID returns (nil, nil) when no booking is found.
func (r *PgxBookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
}

// Create inserts a new booking.
func (r *PgxBookingRepository) Create(ctx context.Context, b booking.Booking) error {
	query := `
		INSERT INTO bookings (id, equipment_id, user_id, start_date, end_date, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query, b.ID, b.EquipmentID, b.UserID, b.StartDate, b.EndDate,
		b.Status, b.Notes, b.CreatedAt, b.UpdatedAt)
	return err
}

// UpdateStatus overwrites the status without a version check.
func (r *PgxBookingRepository) UpdateStatus(ctx context.Context, id string, status booking.Status, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`, id, status, at)
	return err
}
