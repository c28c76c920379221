package recurrence_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-goals/internal/core/recurrence"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScheduler_IsLive_Daily(t *testing.T) {
	s := recurrence.New(time.UTC)
	anchor := time.Date(2024, 5, 10, 18, 45, 0, 0, time.UTC)

	t.Run("Always live on and after the anchor", func(t *testing.T) {
		for d := day(2024, 5, 10); d.Before(day(2024, 8, 1)); d = d.AddDate(0, 0, 1) {
			assert.True(t, s.IsLive(recurrence.Daily, anchor, d), d.Format(time.DateOnly))
		}
	})

	t.Run("Live before the anchor too", func(t *testing.T) {
		assert.True(t, s.IsLive(recurrence.Daily, anchor, day(2020, 1, 1)))
	})
}

func TestScheduler_IsLive_Weekly(t *testing.T) {
	s := recurrence.New(time.UTC)
	anchor := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC) // Wednesday

	tests := []struct {
		name string
		on   time.Time
		want bool
	}{
		{"Creation day", day(2024, 1, 3), true},
		{"Creation day, earlier hour", time.Date(2024, 1, 3, 0, 1, 0, 0, time.UTC), true},
		{"One week later", day(2024, 1, 10), true},
		{"Day before one week later", day(2024, 1, 9), false},
		{"Day after one week later", day(2024, 1, 11), false},
		{"Many weeks later across a year", day(2025, 1, 1), true},
		{"Day before the anchor", day(2024, 1, 2), false},
		{"Same weekday one week before the anchor", day(2023, 12, 27), false},
		{"Same weekday many weeks before the anchor", day(2023, 6, 7), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsLive(recurrence.Weekly, anchor, tt.on))
		})
	}

	t.Run("Live iff same weekday and not before anchor", func(t *testing.T) {
		for d := day(2023, 11, 1); d.Before(day(2024, 6, 1)); d = d.AddDate(0, 0, 1) {
			want := d.Weekday() == time.Wednesday && !d.Before(day(2024, 1, 3))
			assert.Equal(t, want, s.IsLive(recurrence.Weekly, anchor, d), d.Format(time.DateOnly))
		}
	})
}

func TestScheduler_IsLive_Monthly(t *testing.T) {
	s := recurrence.New(time.UTC)

	t.Run("Anchor on the 31st clamps to short months", func(t *testing.T) {
		anchor := day(2024, 1, 31)

		tests := []struct {
			on   time.Time
			want bool
		}{
			{day(2024, 2, 29), true},
			{day(2024, 2, 28), false},
			{day(2024, 3, 31), true},
			{day(2024, 3, 30), false},
			{day(2024, 4, 30), true},
			{day(2024, 4, 29), false},
			{day(2024, 6, 30), true},
			{day(2024, 9, 30), true},
			{day(2024, 11, 30), true},
			{day(2024, 12, 31), true},
			{day(2024, 12, 30), false},
		}

		for _, tt := range tests {
			assert.Equal(t, tt.want, s.IsLive(recurrence.Monthly, anchor, tt.on), tt.on.Format(time.DateOnly))
		}
	})

	t.Run("Leap year boundary", func(t *testing.T) {
		assert.True(t, s.IsLive(recurrence.Monthly, day(2023, 1, 31), day(2023, 2, 28)))
		assert.True(t, s.IsLive(recurrence.Monthly, day(2024, 1, 31), day(2024, 2, 29)))
		assert.False(t, s.IsLive(recurrence.Monthly, day(2023, 1, 31), day(2023, 2, 27)))
		assert.False(t, s.IsLive(recurrence.Monthly, day(2024, 1, 31), day(2024, 2, 27)))
	})

	t.Run("Leap day anchor", func(t *testing.T) {
		anchor := time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC)

		assert.True(t, s.IsLive(recurrence.Monthly, anchor, day(2024, 2, 29)))
		assert.True(t, s.IsLive(recurrence.Monthly, anchor, day(2024, 3, 29)))
		assert.True(t, s.IsLive(recurrence.Monthly, anchor, day(2025, 2, 28)))
		assert.False(t, s.IsLive(recurrence.Monthly, anchor, day(2025, 2, 27)))
		assert.False(t, s.IsLive(recurrence.Monthly, anchor, day(2025, 3, 1)))
		assert.True(t, s.IsLive(recurrence.Monthly, anchor, day(2028, 2, 29)))
	})

	t.Run("Live iff day equals clamped anchor day", func(t *testing.T) {
		for _, anchorDay := range []int{1, 15, 28, 29, 30, 31} {
			anchor := day(2023, 1, anchorDay)
			for d := day(2023, 1, 1); d.Before(day(2025, 1, 1)); d = d.AddDate(0, 0, 1) {
				want := d.Day() == min(anchorDay, recurrence.DaysIn(d.Year(), d.Month()))
				assert.Equal(t, want, s.IsLive(recurrence.Monthly, anchor, d), "anchor %d on %s", anchorDay, d.Format(time.DateOnly))
			}
		}
	})
}

func TestScheduler_IsLive_InvalidFrequency(t *testing.T) {
	s := recurrence.New(time.UTC)
	assert.False(t, s.IsLive(recurrence.Frequency(0), day(2024, 1, 1), day(2024, 1, 1)))
	assert.False(t, s.IsLive(recurrence.Frequency(42), day(2024, 1, 1), day(2024, 1, 1)))
}

func TestScheduler_NextDueDate(t *testing.T) {
	s := recurrence.New(time.UTC)

	tests := []struct {
		name   string
		freq   recurrence.Frequency
		anchor time.Time
		from   time.Time
		want   time.Time
	}{
		{"Daily returns tomorrow", recurrence.Daily, day(2024, 1, 1), time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC), day(2024, 1, 11)},
		{"Daily across year end", recurrence.Daily, day(2024, 1, 1), day(2024, 12, 31), day(2025, 1, 1)},
		{"Weekly from the due weekday skips a week", recurrence.Weekly, day(2024, 1, 3), day(2024, 1, 10), day(2024, 1, 17)},
		{"Weekly from the creation day", recurrence.Weekly, day(2024, 1, 3), day(2024, 1, 3), day(2024, 1, 10)},
		{"Weekly from the next day", recurrence.Weekly, day(2024, 1, 3), day(2024, 1, 11), day(2024, 1, 17)},
		{"Weekly from the day before", recurrence.Weekly, day(2024, 1, 3), day(2024, 1, 16), day(2024, 1, 17)},
		{"Monthly from the due day goes to next month", recurrence.Monthly, day(2024, 1, 15), day(2024, 3, 15), day(2024, 4, 15)},
		{"Monthly before the due day stays in month", recurrence.Monthly, day(2024, 1, 15), day(2024, 3, 10), day(2024, 3, 15)},
		{"Monthly after the due day rolls over", recurrence.Monthly, day(2024, 1, 15), day(2024, 3, 20), day(2024, 4, 15)},
		{"Monthly 31st into leap February", recurrence.Monthly, day(2024, 1, 31), day(2024, 1, 31), day(2024, 2, 29)},
		{"Monthly 31st inside February", recurrence.Monthly, day(2024, 1, 31), day(2024, 2, 10), day(2024, 2, 29)},
		{"Monthly 31st out of February", recurrence.Monthly, day(2024, 1, 31), day(2024, 2, 29), day(2024, 3, 31)},
		{"Monthly 31st into April", recurrence.Monthly, day(2024, 1, 31), day(2024, 3, 31), day(2024, 4, 30)},
		{"Monthly 31st across year end", recurrence.Monthly, day(2024, 1, 31), day(2024, 12, 31), day(2025, 1, 31)},
		{"Monthly 30th into non-leap February", recurrence.Monthly, day(2024, 1, 30), day(2025, 1, 30), day(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.NextDueDate(tt.freq, tt.anchor, tt.from)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	t.Run("Invalid frequency returns zero time", func(t *testing.T) {
		assert.True(t, s.NextDueDate(recurrence.Frequency(9), day(2024, 1, 1), day(2024, 1, 1)).IsZero())
	})
}

func TestScheduler_NextDueDate_StrictlyFutureAndLive(t *testing.T) {
	s := recurrence.New(time.UTC)
	anchors := []time.Time{
		time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC),
		time.Date(2023, 8, 30, 0, 0, 0, 0, time.UTC),
	}
	freqs := []recurrence.Frequency{recurrence.Daily, recurrence.Weekly, recurrence.Monthly}

	for _, anchor := range anchors {
		for _, freq := range freqs {
			for from := s.Normalize(anchor); from.Before(day(2026, 1, 1)); from = from.AddDate(0, 0, 1) {
				fromWithTime := from.Add(13*time.Hour + 7*time.Minute)
				next := s.NextDueDate(freq, anchor, fromWithTime)

				require.True(t, next.After(from), "%s anchor %s from %s: got %s", freq, anchor, from, next)
				require.True(t, s.IsLive(freq, anchor, next), "%s anchor %s from %s: %s not live", freq, anchor, from, next)

				for d := from.AddDate(0, 0, 1); d.Before(next); d = d.AddDate(0, 0, 1) {
					require.False(t, s.IsLive(freq, anchor, d), "%s anchor %s from %s: skipped live day %s", freq, anchor, from, d)
				}
			}
		}
	}
}

func TestScheduler_NextDueDate_BeforeAnchorStillFuture(t *testing.T) {
	s := recurrence.New(time.UTC)
	anchor := day(2024, 1, 3)

	for from := day(2023, 10, 1); from.Before(anchor); from = from.AddDate(0, 0, 1) {
		for _, freq := range []recurrence.Frequency{recurrence.Daily, recurrence.Weekly, recurrence.Monthly} {
			assert.True(t, s.NextDueDate(freq, anchor, from).After(from))
		}
	}
}

func TestScheduler_Deterministic(t *testing.T) {
	s := recurrence.New(time.UTC)
	anchor := time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC)
	on := time.Date(2025, 2, 28, 22, 0, 0, 0, time.UTC)

	for _, freq := range []recurrence.Frequency{recurrence.Daily, recurrence.Weekly, recurrence.Monthly} {
		assert.Equal(t, s.IsLive(freq, anchor, on), s.IsLive(freq, anchor, on))
		assert.True(t, s.NextDueDate(freq, anchor, on).Equal(s.NextDueDate(freq, anchor, on)))
	}
}

func TestScheduler_Location(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	anchor := time.Date(2024, 1, 3, 23, 30, 0, 0, time.UTC) // Wed in UTC, Thu in Tokyo

	t.Run("UTC reads the anchor as Wednesday", func(t *testing.T) {
		s := recurrence.New(time.UTC)
		assert.True(t, s.IsLive(recurrence.Weekly, anchor, day(2024, 1, 10)))
		assert.False(t, s.IsLive(recurrence.Weekly, anchor, day(2024, 1, 11)))
	})

	t.Run("Tokyo reads the anchor as Thursday", func(t *testing.T) {
		s := recurrence.New(tokyo)
		assert.True(t, s.IsLive(recurrence.Weekly, anchor, time.Date(2024, 1, 11, 12, 0, 0, 0, tokyo)))
		assert.False(t, s.IsLive(recurrence.Weekly, anchor, time.Date(2024, 1, 10, 12, 0, 0, 0, tokyo)))
		assert.True(t, s.IsLive(recurrence.Weekly, anchor, time.Date(2024, 1, 4, 0, 0, 0, 0, tokyo)))
	})

	t.Run("Nil location falls back to UTC", func(t *testing.T) {
		assert.Equal(t, time.UTC, recurrence.New(nil).Location())
	})

	t.Run("Next due date is midnight in the scheduler location", func(t *testing.T) {
		s := recurrence.New(tokyo)
		got := s.NextDueDate(recurrence.Daily, anchor, time.Date(2024, 1, 4, 23, 0, 0, 0, tokyo))
		assert.True(t, time.Date(2024, 1, 5, 0, 0, 0, 0, tokyo).Equal(got))
	})
}

func TestScheduler_DST(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	s := recurrence.New(rome)

	t.Run("Weekly across spring forward", func(t *testing.T) {
		anchor := time.Date(2024, 3, 24, 10, 0, 0, 0, rome)
		assert.True(t, s.IsLive(recurrence.Weekly, anchor, time.Date(2024, 3, 31, 0, 30, 0, 0, rome)))
		assert.True(t, s.IsLive(recurrence.Weekly, anchor, time.Date(2024, 3, 31, 23, 30, 0, 0, rome)))
		assert.False(t, s.IsLive(recurrence.Weekly, anchor, time.Date(2024, 4, 1, 0, 30, 0, 0, rome)))

		next := s.NextDueDate(recurrence.Weekly, anchor, anchor)
		assert.True(t, time.Date(2024, 3, 31, 0, 0, 0, 0, rome).Equal(next))
	})

	t.Run("Daily across fall back", func(t *testing.T) {
		next := s.NextDueDate(recurrence.Daily, time.Date(2024, 1, 1, 0, 0, 0, 0, rome), time.Date(2024, 10, 26, 12, 0, 0, 0, rome))
		assert.True(t, time.Date(2024, 10, 27, 0, 0, 0, 0, rome).Equal(next))

		next = s.NextDueDate(recurrence.Daily, time.Date(2024, 1, 1, 0, 0, 0, 0, rome), time.Date(2024, 10, 27, 23, 59, 0, 0, rome))
		assert.True(t, time.Date(2024, 10, 28, 0, 0, 0, 0, rome).Equal(next))
	})

	t.Run("Weekly across fall back", func(t *testing.T) {
		anchor := time.Date(2024, 10, 20, 8, 0, 0, 0, rome)
		assert.True(t, s.IsLive(recurrence.Weekly, anchor, time.Date(2024, 10, 27, 23, 0, 0, 0, rome)))
	})
}

// America/Santiago jumps from 00:00 to 01:00 on 2024-09-08 and
// America/Sao_Paulo did the same on 2018-11-04, so those days have no midnight.
func TestScheduler_MidnightGap(t *testing.T) {
	santiago, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)
	s := recurrence.New(santiago)

	t.Run("Day starts at the end of the gap", func(t *testing.T) {
		start := recurrence.StartOfDay(2024, time.September, 8, santiago)
		assert.Equal(t, "2024-09-08 01:00", start.Format("2006-01-02 15:04"))
		assert.True(t, time.Date(2024, 9, 8, 4, 0, 0, 0, time.UTC).Equal(start))
	})

	t.Run("Normalize keeps the calendar day", func(t *testing.T) {
		got := s.Normalize(time.Date(2024, 9, 8, 15, 0, 0, 0, santiago))
		assert.Equal(t, "2024-09-08", got.Format(time.DateOnly))
	})

	t.Run("Daily next due is tomorrow, not today", func(t *testing.T) {
		from := time.Date(2024, 9, 7, 12, 0, 0, 0, santiago)
		next := s.NextDueDate(recurrence.Daily, day(2024, 1, 1), from)

		assert.Equal(t, "2024-09-08", next.Format(time.DateOnly))
		assert.True(t, s.Normalize(next).After(s.Normalize(from)))
	})

	t.Run("Weekly lands on the anchor weekday", func(t *testing.T) {
		anchor := time.Date(2024, 9, 1, 10, 0, 0, 0, santiago) // Sunday
		next := s.NextDueDate(recurrence.Weekly, anchor, time.Date(2024, 9, 4, 12, 0, 0, 0, santiago))

		assert.Equal(t, "2024-09-08", next.Format(time.DateOnly))
		assert.Equal(t, time.Sunday, next.Weekday())
		assert.True(t, s.IsLive(recurrence.Weekly, anchor, next))
	})

	t.Run("Monthly lands on the anchor day", func(t *testing.T) {
		anchor := time.Date(2024, 8, 8, 10, 0, 0, 0, santiago)
		next := s.NextDueDate(recurrence.Monthly, anchor, time.Date(2024, 9, 1, 12, 0, 0, 0, santiago))

		assert.Equal(t, "2024-09-08", next.Format(time.DateOnly))
		assert.True(t, s.IsLive(recurrence.Monthly, anchor, next))
	})

	t.Run("ParseDate reads the gap day", func(t *testing.T) {
		got, err := recurrence.ParseDate("2024-09-08", santiago)
		require.NoError(t, err)
		assert.Equal(t, "2024-09-08", got.Format(time.DateOnly))
		assert.True(t, s.IsLive(recurrence.Weekly, time.Date(2024, 9, 1, 10, 0, 0, 0, santiago), got))
	})
}

func TestScheduler_MidnightGap_WholeYear(t *testing.T) {
	zones := []struct {
		name string
		year int
	}{
		{"America/Santiago", 2024},
		{"America/Sao_Paulo", 2018},
		{"America/Asuncion", 2023},
	}
	freqs := []recurrence.Frequency{recurrence.Daily, recurrence.Weekly, recurrence.Monthly}

	for _, z := range zones {
		t.Run(z.name, func(t *testing.T) {
			loc, err := time.LoadLocation(z.name)
			require.NoError(t, err)
			s := recurrence.New(loc)

			for _, anchorDay := range []int{1, 4, 8, 31} {
				anchor := time.Date(z.year-1, time.January, anchorDay, 9, 0, 0, 0, loc)

				for i := 0; i < 366; i++ {
					from := time.Date(z.year, time.January, 1+i, 12, 0, 0, 0, loc)

					for _, f := range freqs {
						next := s.NextDueDate(f, anchor, from)

						require.True(t, next.Equal(s.Normalize(next)), "%s %s from %s: %s is not a day start", z.name, f, from.Format(time.DateOnly), next)
						require.True(t, s.Normalize(next).After(s.Normalize(from)), "%s %s from %s: %s is not in the future", z.name, f, from.Format(time.DateOnly), next)
						require.True(t, s.IsLive(f, anchor, next), "%s %s from %s: %s is not live", z.name, f, from.Format(time.DateOnly), next)
					}
				}
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	s := recurrence.New(time.UTC)
	got := s.Normalize(time.Date(2024, 7, 14, 23, 59, 59, 999, time.UTC))
	assert.True(t, day(2024, 7, 14).Equal(got))

	plusTwo := time.FixedZone("UTC+2", 2*60*60)
	got = s.Normalize(time.Date(2024, 7, 15, 1, 0, 0, 0, plusTwo))
	assert.True(t, day(2024, 7, 14).Equal(got), "should read the calendar day in UTC")
}

func TestDaysInAndClampDay(t *testing.T) {
	assert.Equal(t, 29, recurrence.DaysIn(2024, time.February))
	assert.Equal(t, 28, recurrence.DaysIn(2023, time.February))
	assert.Equal(t, 28, recurrence.DaysIn(1900, time.February))
	assert.Equal(t, 29, recurrence.DaysIn(2000, time.February))
	assert.Equal(t, 30, recurrence.DaysIn(2024, time.April))
	assert.Equal(t, 31, recurrence.DaysIn(2024, time.December))

	assert.Equal(t, 28, recurrence.ClampDay(31, 2023, time.February))
	assert.Equal(t, 30, recurrence.ClampDay(31, 2024, time.June))
	assert.Equal(t, 15, recurrence.ClampDay(15, 2024, time.February))
}

func TestToday(t *testing.T) {
	s := recurrence.New(time.UTC)
	now := time.Date(2024, 1, 10, 17, 0, 0, 0, time.UTC)
	today := recurrence.NewToday(s, func() time.Time { return now })

	anchor := day(2024, 1, 3)

	assert.True(t, day(2024, 1, 10).Equal(today.Date()))
	assert.True(t, today.IsLive(recurrence.Weekly, anchor))
	assert.True(t, day(2024, 1, 17).Equal(today.NextDueDate(recurrence.Weekly, anchor)))
}
