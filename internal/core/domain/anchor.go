package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-goals/internal/core/recurrence"
)

var ErrInvalidAnchor = errors.New("invalid goal anchor (must be RFC3339 or YYYY-MM-DD)")

// ParseAnchor reads a goal creation timestamp coming from outside the
// system. Date-only values are taken as the start of that day in loc. Malformed input is
// rejected here so that scheduling code only ever sees real instants.
func ParseAnchor(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrInvalidAnchor
	}
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := recurrence.ParseDate(s, loc); err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidAnchor, raw)
}
