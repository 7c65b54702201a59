// Package booking holds the reservation lifecycle rules shared by the
// loaner service and the admin client.
//
// A booking starts in StatusPending and moves along a fixed set of edges:
//
//	pending     --approve-->   approved
//	pending     --deny-->      denied      (terminal)
//	approved    --check-out--> checked_out
//	checked_out --check-in-->  returned    (terminal)
//
// Everything in this package is pure: no I/O, no clocks. Callers pass the
// current time in.
package booking

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrIllegalTransition indicates the booking's current status has no
	// edge for the requested action.
	// HTTP Status: 409 Conflict
	ErrIllegalTransition = errors.New("illegal booking transition")

	// ErrInvalidDateRange indicates the booking ends before it starts.
	// HTTP Status: 400 Bad Request
	ErrInvalidDateRange = errors.New("invalid booking date range")

	// ErrUnknownAction indicates an action name outside the lifecycle.
	// HTTP Status: 400 Bad Request
	ErrUnknownAction = errors.New("unknown booking action")

	// ErrUnknownStatus indicates a status name outside the lifecycle.
	ErrUnknownStatus = errors.New("unknown booking status")
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusDenied     Status = "denied"
	StatusCheckedOut Status = "checked_out"
	StatusReturned   Status = "returned"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusApproved, StatusDenied, StatusCheckedOut, StatusReturned}

// Action is a staff-triggered lifecycle step.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionDeny     Action = "deny"
	ActionCheckOut Action = "check-out"
	ActionCheckIn  Action = "check-in"
)

// Actions lists every action.
var Actions = []Action{ActionApprove, ActionDeny, ActionCheckOut, ActionCheckIn}

var edges = map[Status]map[Action]Status{
	StatusPending: {
		ActionApprove: StatusApproved,
		ActionDeny:    StatusDenied,
	},
	StatusApproved: {
		ActionCheckOut: StatusCheckedOut,
	},
	StatusCheckedOut: {
		ActionCheckIn: StatusReturned,
	},
}

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	for _, status := range Statuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("parse status %q: %w", s, ErrUnknownStatus)
}

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	for _, action := range Actions {
		if string(action) == s {
			return action, nil
		}
	}
	return "", fmt.Errorf("parse action %q: %w", s, ErrUnknownAction)
}

// Terminal reports whether no action can leave s.
func (s Status) Terminal() bool {
	return len(edges[s]) == 0
}

// Active reports whether s belongs in the default bookings view.
func (s Status) Active() bool {
	return s != StatusDenied && s != StatusReturned
}

// AvailableActions returns the actions that have an edge out of s, in
// declaration order.
func (s Status) AvailableActions() []Action {
	var out []Action
	for _, action := range Actions {
		if _, ok := edges[s][action]; ok {
			out = append(out, action)
		}
	}
	return out
}

// Next returns the status reached by applying action to from.
func Next(from Status, action Action) (Status, error) {
	to, ok := edges[from][action]
	if !ok {
		return "", fmt.Errorf("%s from %s: %w", action, from, ErrIllegalTransition)
	}
	return to, nil
}

// Booking is a reservation of one equipment item by one user.
type Booking struct {
	ID          string    `json:"bookingId"`
	EquipmentID string    `json:"equipmentId"`
	UserID      string    `json:"userId"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Status      Status    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ValidateRange checks that start is not after end.
func ValidateRange(start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("end %s before start %s: %w",
			end.Format(time.DateOnly), start.Format(time.DateOnly), ErrInvalidDateRange)
	}
	return nil
}

// Request builds a new pending booking. The caller assigns the ID.
// Overlap with other bookings of the same equipment is not checked here.
func Request(equipmentID, userID string, start, end, now time.Time) (*Booking, error) {
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}
	return &Booking{
		EquipmentID: equipmentID,
		UserID:      userID,
		StartDate:   start,
		EndDate:     end,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Transition returns a copy of b with action applied. b is not modified.
func Transition(b *Booking, action Action, now time.Time) (*Booking, error) {
	to, err := Next(b.Status, action)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	next := *b
	next.Status = to
	next.UpdatedAt = now
	return &next, nil
}
