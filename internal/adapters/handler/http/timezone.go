package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-goals/internal/core/recurrence"
)

const timezoneHeader = "X-Timezone"

var errUnknownTimezone = errors.New("unknown timezone")

// requestLocation picks the calendar location for a request: the tz query
// parameter, then the X-Timezone header, then fallback.
func requestLocation(c *gin.Context, fallback *time.Location) (*time.Location, error) {
	name := strings.TrimSpace(c.Query("tz"))
	if name == "" {
		name = strings.TrimSpace(c.GetHeader(timezoneHeader))
	}
	if name == "" {
		if fallback == nil {
			return time.UTC, nil
		}
		return fallback, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil || name == "Local" {
		return nil, fmt.Errorf("%w: %q", errUnknownTimezone, name)
	}
	return loc, nil
}

// parseDay reads an optional YYYY-MM-DD query value as the start of that
// calendar day in loc. An empty value yields the zero time.
func parseDay(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return recurrence.ParseDate(raw, loc)
}
