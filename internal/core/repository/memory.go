package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/duynhne/loaner-service/internal/booking"
	"github.com/duynhne/loaner-service/internal/core/domain"
)

// Memory holds users, equipment and bookings in process memory. It backs
// the STORAGE=memory development mode and the logic and web tests.
type Memory struct {
	mu        sync.Mutex
	users     map[string]domain.UserRow
	equipment map[string]domain.Equipment
	bookings  map[string]booking.Booking
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		users:     map[string]domain.UserRow{},
		equipment: map[string]domain.Equipment{},
		bookings:  map[string]booking.Booking{},
	}
}

// Users returns the user repository view.
func (m *Memory) Users() *MemoryUserRepository { return &MemoryUserRepository{m} }

// Equipment returns the equipment repository view.
func (m *Memory) Equipment() *MemoryEquipmentRepository { return &MemoryEquipmentRepository{m} }

// Bookings returns the booking repository view.
func (m *Memory) Bookings() *MemoryBookingRepository { return &MemoryBookingRepository{m} }

// MemoryUserRepository implements domain.UserRepository.
type MemoryUserRepository struct{ m *Memory }

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.UserRow, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.UserRow, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]domain.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		out = append(out, u.User)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, err := r.GetByEmail(ctx, email)
	return u != nil, err
}

func (r *MemoryUserRepository) Create(_ context.Context, u domain.UserRow) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.users[u.ID] = u
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, id string, patch domain.UserPatch, at time.Time) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, nil
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.DOB != nil {
		dob := *patch.DOB
		u.DOB = &dob
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	u.LastUpdated = at
	r.m.users[id] = u
	return &u.User, nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return false, nil
	}
	delete(r.m.users, id)
	for bid, b := range r.m.bookings {
		if b.UserID == id {
			delete(r.m.bookings, bid)
		}
	}
	return true, nil
}

func (r *MemoryUserRepository) UpdateLastLogin(context.Context, string, time.Time) error {
	return nil
}

// MemoryEquipmentRepository implements domain.EquipmentRepository.
type MemoryEquipmentRepository struct{ m *Memory }

func (r *MemoryEquipmentRepository) List(_ context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []domain.Equipment{}
	for _, e := range r.m.equipment {
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryEquipmentRepository) GetByID(_ context.Context, id string) (*domain.Equipment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.equipment[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *MemoryEquipmentRepository) Create(_ context.Context, e domain.Equipment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.equipment[e.ID] = e
	return nil
}

func (r *MemoryEquipmentRepository) Update(_ context.Context, id string, patch domain.EquipmentPatch, at time.Time) (*domain.Equipment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.equipment[id]
	if !ok {
		return nil, nil
	}
	if patch.Name != nil {
		e.Name = *patch.Name
	}
	if patch.Category != nil {
		e.Category = *patch.Category
	}
	if patch.Serial != nil {
		e.Serial = *patch.Serial
	}
	if patch.Condition != nil {
		e.Condition = *patch.Condition
	}
	if patch.Status != nil {
		e.Status = *patch.Status
	}
	if patch.Location != nil {
		e.Location = *patch.Location
	}
	e.UpdatedAt = at
	r.m.equipment[id] = e
	return &e, nil
}

func (r *MemoryEquipmentRepository) Delete(_ context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.equipment[id]; !ok {
		return false, nil
	}
	delete(r.m.equipment, id)
	for bid, b := range r.m.bookings {
		if b.EquipmentID == id {
			delete(r.m.bookings, bid)
		}
	}
	return true, nil
}

func (r *MemoryEquipmentRepository) SetStatus(_ context.Context, id string, status domain.EquipmentStatus, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if e, ok := r.m.equipment[id]; ok {
		e.Status = status
		e.UpdatedAt = at
		r.m.equipment[id] = e
	}
	return nil
}

// MemoryBookingRepository implements domain.BookingRepository.
type MemoryBookingRepository struct{ m *Memory }

func (r *MemoryBookingRepository) List(_ context.Context, filter booking.Filter) ([]booking.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []booking.Booking{}
	for _, b := range r.m.bookings {
		if filter.EquipmentID != "" && b.EquipmentID != filter.EquipmentID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *MemoryBookingRepository) GetByID(_ context.Context, id string) (*booking.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *MemoryBookingRepository) Create(_ context.Context, b booking.Booking) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.bookings[b.ID] = b
	return nil
}

func (r *MemoryBookingRepository) UpdateStatus(_ context.Context, id string, status booking.Status, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if b, ok := r.m.bookings[id]; ok {
		b.Status = status
		b.UpdatedAt = at
		r.m.bookings[id] = b
	}
	return nil
}
