package recurrence

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidFrequency = errors.New("invalid frequency (must be daily, weekly, or monthly)")

// Frequency is the recurrence cadence of a goal. The zero value is not a
// valid frequency; values only come from the declared constants or from
// ParseFrequency.
type Frequency uint8

const (
	Daily Frequency = iota + 1
	Weekly
	Monthly
)

var frequencyNames = map[Frequency]string{
	Daily:   "daily",
	Weekly:  "weekly",
	Monthly: "monthly",
}

func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return Daily, nil
	case "weekly":
		return Weekly, nil
	case "monthly":
		return Monthly, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
}

func (f Frequency) Valid() bool {
	_, ok := frequencyNames[f]
	return ok
}

func (f Frequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Frequency(%d)", uint8(f))
}

func (f Frequency) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrequency, uint8(f))
	}
	return []byte(f.String()), nil
}

func (f *Frequency) UnmarshalText(text []byte) error {
	parsed, err := ParseFrequency(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Scan reads the frequency column, which is stored as text.
func (f *Frequency) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return f.UnmarshalText([]byte(v))
	case []byte:
		return f.UnmarshalText(v)
	case nil:
		return fmt.Errorf("%w: NULL", ErrInvalidFrequency)
	}
	return fmt.Errorf("%w: unsupported column type %T", ErrInvalidFrequency, src)
}

func (f Frequency) Value() (driver.Value, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrequency, uint8(f))
	}
	return f.String(), nil
}
