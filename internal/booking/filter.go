package booking

import "sort"

// Filter selects bookings for a list view. The zero Filter is the default
// "active" view.
type Filter struct {
	// Status, when set, selects only that status, terminal ones included.
	Status Status

	// EquipmentID, when set, selects only bookings of that item.
	EquipmentID string

	// IncludeInactive keeps denied and returned bookings when Status is
	// empty.
	IncludeInactive bool
}

// Matches reports whether b passes f.
func (f Filter) Matches(b Booking) bool {
	if f.EquipmentID != "" && b.EquipmentID != f.EquipmentID {
		return false
	}
	if f.Status != "" {
		return b.Status == f.Status
	}
	return f.IncludeInactive || b.Status.Active()
}

// Apply returns the bookings matching f, newest CreatedAt first. The input
// slice is not reordered.
func Apply(bookings []Booking, f Filter) []Booking {
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		if f.Matches(b) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
