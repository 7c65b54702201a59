package v1

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/duynhne/loaner-service/internal/clock"
)

// Deps carries the collaborators shared by every service.
type Deps struct {
	Clock clock.Clock
	NewID func() string
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	return d
}

// parseDate accepts an RFC 3339 timestamp or a YYYY-MM-DD day (UTC
// midnight).
func parseDate(field, value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%s %q is not a date: %w", field, value, ErrInvalidInput)
}
