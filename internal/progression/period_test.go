package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWindowDaily(t *testing.T) {
	now := time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)

	p := Window(now, Cadence{Type: FreqDaily, Interval: 1})
	require.Equal(t, date(2024, 3, 14), p.Start)
	require.Equal(t, date(2024, 3, 15), p.End)

	// interval floored to 1
	p = Window(now, Cadence{Type: FreqDaily, Interval: 0})
	require.Equal(t, date(2024, 3, 15), p.End)

	p = Window(now, Cadence{Type: FreqDaily, Interval: 3})
	require.Equal(t, date(2024, 3, 17), p.End)
}

func TestWindowWeeklyMondayAnchor(t *testing.T) {
	// Thursday 2024-03-14 10:00 with weekStart=1 resolves to Mon..Mon
	now := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	p := Window(now, Cadence{Type: FreqWeekly, Interval: 1, WeekStart: 1})
	require.Equal(t, date(2024, 3, 11), p.Start)
	require.Equal(t, date(2024, 3, 18), p.End)
}

func TestWindowWeeklySundayAnchor(t *testing.T) {
	now := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	p := Window(now, Cadence{Type: FreqWeekly, Interval: 1, WeekStart: 7})
	require.Equal(t, date(2024, 3, 10), p.Start)
	require.Equal(t, date(2024, 3, 17), p.End)
}

func TestWindowWeeklyOnAnchorDay(t *testing.T) {
	// now is the anchor day itself: the window starts today
	now := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC) // Monday
	p := Window(now, Cadence{Type: FreqWeekly, Interval: 2, WeekStart: 1})
	require.Equal(t, date(2024, 3, 11), p.Start)
	require.Equal(t, date(2024, 3, 25), p.End)
}

func TestWindowMonthly(t *testing.T) {
	now := time.Date(2024, 3, 14, 23, 59, 0, 0, time.UTC)
	p := Window(now, Cadence{Type: FreqMonthly, Interval: 1})
	require.Equal(t, date(2024, 3, 1), p.Start)
	require.Equal(t, date(2024, 4, 1), p.End)

	p = Window(now, Cadence{Type: FreqMonthly, Interval: 2})
	require.Equal(t, date(2024, 5, 1), p.End)
}

func TestWindowOnceSpansEverything(t *testing.T) {
	now := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	p := Window(now, Cadence{Type: FreqOnce})
	require.True(t, p.Contains(date(1999, 1, 1)))
	require.True(t, p.Contains(date(2500, 6, 15)))
}

func TestWindowUnknownTypeFallsBackToDaily(t *testing.T) {
	now := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	p := Window(now, Cadence{Type: "bogus", Interval: 1})
	require.Equal(t, date(2024, 3, 14), p.Start)
	require.Equal(t, date(2024, 3, 15), p.End)
}

func TestPeriodContainsIsHalfOpen(t *testing.T) {
	p := Period{Start: date(2024, 3, 11), End: date(2024, 3, 18)}
	require.True(t, p.Contains(date(2024, 3, 11)))
	require.True(t, p.Contains(time.Date(2024, 3, 17, 23, 59, 59, 0, time.UTC)))
	require.False(t, p.Contains(date(2024, 3, 18)))
	require.False(t, p.Contains(date(2024, 3, 10)))
}

func TestPeriodKey(t *testing.T) {
	now := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	require.Equal(t, "2024-W11", PeriodKey(now, FreqWeekly))
	require.Equal(t, "2024-03-14", PeriodKey(now, FreqDaily))
	require.Equal(t, "", PeriodKey(now, FreqMonthly))
	require.Equal(t, "", PeriodKey(now, FreqOnce))
}
