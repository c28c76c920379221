// Package recurrence decides when a recurring goal is due.
//
// Every date is first normalized to its calendar day in the scheduler's
// location. The anchor (the goal's creation time) and the evaluation date go
// through the same normalization, so a goal is always due on the day it was
// created. Day arithmetic works on civil dates, never on elapsed hours, so
// DST transitions cannot move a goal to another day.
package recurrence

import "time"

const secondsPerDay = 24 * 60 * 60

// Scheduler evaluates recurrence rules in a fixed location. It holds no
// mutable state and is safe for concurrent use.
type Scheduler struct {
	loc *time.Location
}

// New returns a scheduler that reads calendar days in loc. A nil location
// means UTC.
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{loc: loc}
}

func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// Normalize truncates t to the start of its calendar day in the scheduler's
// location.
func (s *Scheduler) Normalize(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return StartOfDay(y, m, d, s.loc)
}

// IsLive reports whether a goal with the given frequency, created at
// createdAt, is due on the calendar day of on.
func (s *Scheduler) IsLive(freq Frequency, createdAt, on time.Time) bool {
	switch freq {
	case Daily:
		return true
	case Weekly:
		diff := s.daysBetween(createdAt, on)
		return diff >= 0 && diff%7 == 0
	case Monthly:
		y, m, d := on.In(s.loc).Date()
		return d == ClampDay(createdAt.In(s.loc).Day(), y, m)
	}
	return false
}

// NextDueDate returns the start of the first due day strictly after the
// calendar day of from. It returns the zero time for an invalid frequency.
func (s *Scheduler) NextDueDate(freq Frequency, createdAt, from time.Time) time.Time {
	y, m, d := from.In(s.loc).Date()

	switch freq {
	case Daily:
		return StartOfDay(y, m, d+1, s.loc)
	case Weekly:
		target := createdAt.In(s.loc).Weekday()
		current := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Weekday()
		offset := (int(target) - int(current) + 7) % 7
		if offset == 0 {
			offset = 7
		}
		return StartOfDay(y, m, d+offset, s.loc)
	case Monthly:
		anchorDay := createdAt.In(s.loc).Day()
		if due := ClampDay(anchorDay, y, m); d < due {
			return StartOfDay(y, m, due, s.loc)
		}
		ny, nm := nextMonth(y, m)
		return StartOfDay(ny, nm, ClampDay(anchorDay, ny, nm), s.loc)
	}
	return time.Time{}
}

// daysBetween counts whole calendar days from a to b in the scheduler's
// location. The result is negative when b falls before a.
func (s *Scheduler) daysBetween(a, b time.Time) int64 {
	return s.dayNumber(b) - s.dayNumber(a)
}

func (s *Scheduler) dayNumber(t time.Time) int64 {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

// StartOfDay returns the first instant of the civil date year-month-day in
// loc. Out of range values roll over like time.Date. Where the clocks skip
// midnight (DST starting at 00:00), the day begins at the end of the gap.
func StartOfDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()

	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if onDay(t, y, m, d) {
		return t
	}

	// Midnight fell into a gap and resolved to the previous day. The next
	// zone period starts exactly where the day does.
	if _, end := t.ZoneBounds(); !end.IsZero() && onDay(end, y, m, d) {
		return end
	}
	for i := 0; i < 24*60 && !onDay(t, y, m, d); i++ {
		t = t.Add(time.Minute)
	}
	return t
}

// ParseDate reads a YYYY-MM-DD value as the start of that day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	civil, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := civil.Date()
	return StartOfDay(y, m, d, loc), nil
}

func onDay(t time.Time, y int, m time.Month, d int) bool {
	ty, tm, td := t.Date()
	return ty == y && tm == m && td == d
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay reduces day to the last day of the given month when the month is
// too short to contain it.
func ClampDay(day, year int, month time.Month) int {
	if last := DaysIn(year, month); day > last {
		return last
	}
	return day
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}
