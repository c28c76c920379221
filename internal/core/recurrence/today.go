package recurrence

import "time"

// Today binds a Scheduler to a clock for callers that want "due today"
// answers. The Scheduler itself never reads the clock.
type Today struct {
	scheduler *Scheduler
	now       func() time.Time
}

func NewToday(s *Scheduler, now func() time.Time) *Today {
	if now == nil {
		now = time.Now
	}
	return &Today{scheduler: s, now: now}
}

func (t *Today) Date() time.Time {
	return t.scheduler.Normalize(t.now())
}

func (t *Today) IsLive(freq Frequency, createdAt time.Time) bool {
	return t.scheduler.IsLive(freq, createdAt, t.now())
}

func (t *Today) NextDueDate(freq Frequency, createdAt time.Time) time.Time {
	return t.scheduler.NextDueDate(freq, createdAt, t.now())
}
