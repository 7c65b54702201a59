package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/duynhne/loaner-service/internal/booking"
	"github.com/duynhne/loaner-service/internal/core/domain"
)

// Authenticate exchanges credentials for a token. A 401 comes back as
// ErrInvalidCredentials and does not touch the session.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth",
		body:      domain.LoginRequest{Email: email, Password: password},
		anonymous: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me"}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns every account. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users"}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns one account.
func (c *Client) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users/" + url.PathEscape(id)}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser registers an account.
func (c *Client) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, request{method: http.MethodPost, path: "/users", body: req}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser applies a partial update.
func (c *Client) UpdateUser(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, request{method: http.MethodPatch, path: "/users/" + url.PathEscape(id), body: req}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes an account and its bookings.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/users/" + url.PathEscape(id)}, nil)
}

// ListEquipment returns items matching filter.
func (c *Client) ListEquipment(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}

	var items []domain.Equipment
	if err := c.do(ctx, request{method: http.MethodGet, path: "/equipment", query: q}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetEquipment returns one item.
func (c *Client) GetEquipment(ctx context.Context, id string) (*domain.Equipment, error) {
	var e domain.Equipment
	if err := c.do(ctx, request{method: http.MethodGet, path: equipmentPath(id)}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEquipment adds an item.
func (c *Client) CreateEquipment(ctx context.Context, req domain.CreateEquipmentRequest) (*domain.Equipment, error) {
	var e domain.Equipment
	if err := c.do(ctx, request{method: http.MethodPost, path: "/equipment", body: req}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEquipment applies a partial update.
func (c *Client) UpdateEquipment(ctx context.Context, id string, req domain.UpdateEquipmentRequest) (*domain.Equipment, error) {
	var e domain.Equipment
	if err := c.do(ctx, request{method: http.MethodPatch, path: equipmentPath(id), body: req}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteEquipment removes an item and its bookings.
func (c *Client) DeleteEquipment(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: equipmentPath(id)}, nil)
}

// ListBookings returns bookings matching filter, newest first. With an
// EquipmentID the per-item listing is used.
func (c *Client) ListBookings(ctx context.Context, filter booking.Filter) ([]booking.Booking, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.IncludeInactive {
		q.Set("all", strconv.FormatBool(true))
	}

	path := "/bookings"
	if filter.EquipmentID != "" {
		path = equipmentPath(filter.EquipmentID) + "/bookings"
	}

	var bookings []booking.Booking
	if err := c.do(ctx, request{method: http.MethodGet, path: path, query: q}, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// BookingRequest describes a new booking.
type BookingRequest struct {
	// UserID books on behalf of another user. Empty books for the caller.
	UserID string
	Start  time.Time
	End    time.Time
	Notes  string
}

// RequestBooking creates a pending booking of equipmentID. An inverted
// date range fails with booking.ErrInvalidDateRange before any request is
// sent.
func (c *Client) RequestBooking(ctx context.Context, equipmentID string, req BookingRequest) (*booking.Booking, error) {
	if err := booking.ValidateRange(req.Start, req.End); err != nil {
		return nil, err
	}

	body := domain.CreateBookingRequest{
		UserID:    req.UserID,
		StartDate: req.Start.Format(time.RFC3339),
		EndDate:   req.End.Format(time.RFC3339),
		Notes:     req.Notes,
	}
	var b booking.Booking
	err := c.do(ctx, request{method: http.MethodPost, path: equipmentPath(equipmentID) + "/bookings", body: body}, &b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// TransitionBooking applies action to b. An action with no edge out of
// b's status fails with booking.ErrIllegalTransition before any request is
// sent.
func (c *Client) TransitionBooking(ctx context.Context, b booking.Booking, action booking.Action) (*booking.Booking, error) {
	if _, err := booking.Next(b.Status, action); err != nil {
		return nil, err
	}

	path := equipmentPath(b.EquipmentID) + "/bookings/" + url.PathEscape(b.ID) + "/" + string(action)
	var next booking.Booking
	if err := c.do(ctx, request{method: http.MethodPatch, path: path}, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func equipmentPath(id string) string {
	return "/equipment/" + url.PathEscape(id)
}
