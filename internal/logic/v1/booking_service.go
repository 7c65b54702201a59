package v1

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/loaner-service/internal/booking"
	"github.com/duynhne/loaner-service/internal/core/domain"
	"github.com/duynhne/loaner-service/middleware"
)

// equipmentStatusAfter maps actions that move an item physically to the
// item's new availability.
var equipmentStatusAfter = map[booking.Action]domain.EquipmentStatus{
	booking.ActionCheckOut: domain.EquipmentOut,
	booking.ActionCheckIn:  domain.EquipmentAvailable,
}

// BookingService applies the booking lifecycle to stored bookings.
// Overlapping requests for the same item are accepted; staff resolve
// conflicts when approving.
type BookingService struct {
	bookings  domain.BookingRepository
	equipment domain.EquipmentRepository
	users     domain.UserRepository
	deps      Deps
}

// NewBookingService creates a new BookingService.
func NewBookingService(bookings domain.BookingRepository, equipment domain.EquipmentRepository, users domain.UserRepository, deps Deps) *BookingService {
	return &BookingService{bookings: bookings, equipment: equipment, users: users, deps: deps.withDefaults()}
}

// Request creates a pending booking of equipmentID. Students may only book
// for themselves; staff and admins may book on behalf of any user.
func (s *BookingService) Request(ctx context.Context, actor domain.AuthUser, equipmentID string, req domain.CreateBookingRequest) (*booking.Booking, error) {
	ctx, span := middleware.StartSpan(ctx, "bookings.request", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("equipment.id", equipmentID),
		attribute.String("actor.id", actor.ID),
	))
	defer span.End()

	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return nil, err
	}

	userID := req.UserID
	if userID == "" {
		userID = actor.ID
	}
	if userID != actor.ID && actor.Role == domain.RoleStudent {
		return nil, fmt.Errorf("book for user %s as %s: %w", userID, actor.ID, ErrForbidden)
	}

	b, err := booking.Request(equipmentID, userID, start, end, s.deps.Clock.Now())
	if err != nil {
		return nil, err
	}

	item, err := s.equipment.GetByID(ctx, equipmentID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query equipment %s: %w", equipmentID, err)
	}
	if item == nil {
		return nil, fmt.Errorf("book equipment %s: %w", equipmentID, ErrEquipmentNotFound)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %s: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("book for user %s: %w", userID, ErrUserNotFound)
	}

	b.ID = s.deps.NewID()
	b.Notes = req.Notes
	if err := s.bookings.Create(ctx, *b); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	span.SetAttributes(attribute.String("booking.id", b.ID))
	span.AddEvent("booking.requested")
	return b, nil
}

// List returns bookings matching filter, newest first. Students only see
// their own bookings.
func (s *BookingService) List(ctx context.Context, actor domain.AuthUser, filter booking.Filter) ([]booking.Booking, error) {
	ctx, span := middleware.StartSpan(ctx, "bookings.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("filter.status", string(filter.Status)),
		attribute.String("filter.equipment_id", filter.EquipmentID),
	))
	defer span.End()

	if filter.EquipmentID != "" {
		item, err := s.equipment.GetByID(ctx, filter.EquipmentID)
		if err != nil {
			return nil, fmt.Errorf("query equipment %s: %w", filter.EquipmentID, err)
		}
		if item == nil {
			return nil, fmt.Errorf("list bookings of %s: %w", filter.EquipmentID, ErrEquipmentNotFound)
		}
	}

	all, err := s.bookings.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	if actor.Role == domain.RoleStudent {
		own := all[:0]
		for _, b := range all {
			if b.UserID == actor.ID {
				own = append(own, b)
			}
		}
		all = own
	}

	out := booking.Apply(all, filter)
	span.SetAttributes(attribute.Int("bookings.count", len(out)))
	return out, nil
}

// Transition applies action to a booking of equipmentID. Concurrent
// transitions are not coordinated; the last write wins.
func (s *BookingService) Transition(ctx context.Context, actor domain.AuthUser, equipmentID, bookingID, rawAction string) (*booking.Booking, error) {
	ctx, span := middleware.StartSpan(ctx, "bookings.transition", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("booking.id", bookingID),
		attribute.String("booking.action", rawAction),
		attribute.String("actor.id", actor.ID),
	))
	defer span.End()

	action, err := booking.ParseAction(rawAction)
	if err != nil {
		return nil, err
	}

	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query booking %s: %w", bookingID, err)
	}
	if current == nil || current.EquipmentID != equipmentID {
		return nil, fmt.Errorf("booking %s of %s: %w", bookingID, equipmentID, ErrBookingNotFound)
	}

	now := s.deps.Clock.Now()
	next, err := booking.Transition(current, action, now)
	if err != nil {
		if errors.Is(err, booking.ErrIllegalTransition) {
			middleware.BookingTransitions.WithLabelValues(string(action), "rejected").Inc()
		}
		span.RecordError(err)
		return nil, err
	}

	if err := s.bookings.UpdateStatus(ctx, bookingID, next.Status, now); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update booking %s: %w", bookingID, err)
	}
	middleware.BookingTransitions.WithLabelValues(string(action), "applied").Inc()

	// Best-effort, the booking is already updated
	if status, ok := equipmentStatusAfter[action]; ok {
		if err := s.equipment.SetStatus(ctx, equipmentID, status, now); err != nil {
			span.RecordError(fmt.Errorf("set equipment status: %w", err))
		}
	}

	span.SetAttributes(
		attribute.String("booking.from", string(current.Status)),
		attribute.String("booking.to", string(next.Status)),
	)
	return next, nil
}
