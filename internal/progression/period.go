package progression

import (
	"fmt"
	"time"
)

// Period is a half-open window [Start, End) during which a goal's
// completion quota applies. It is recomputed from wall-clock time on
// every read, never persisted.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Window computes the current period for now under cadence c, in now's
// location.
//
// daily   -> [midnight today, +interval days)
// weekly  -> [midnight of the most recent WeekStart day, +7*interval days)
// monthly -> [first of the month, +interval months)
// once    -> a single all-time window, so MaxPerPeriod acts as a lifetime cap
//
// Unknown types fall back to the daily rule. Interval is floored to 1.
func Window(now time.Time, c Cadence) Period {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	interval := c.Interval
	if interval < 1 {
		interval = 1
	}

	switch c.Type {
	case FreqWeekly:
		// Map both the current weekday and the anchor to a Monday=0 scale,
		// then rewind to the most recent anchor day on/before today.
		weekdayMon0 := (int(today.Weekday()) + 6) % 7
		startMon0 := ((c.WeekStart % 7) + 6) % 7
		offset := (weekdayMon0 - startMon0 + 7) % 7
		start := today.AddDate(0, 0, -offset)
		return Period{Start: start, End: start.AddDate(0, 0, 7*interval)}

	case FreqMonthly:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		return Period{Start: start, End: start.AddDate(0, interval, 0)}

	case FreqOnce:
		return Period{
			Start: time.Date(1970, 1, 1, 0, 0, 0, 0, loc),
			End:   time.Date(9999, 12, 31, 0, 0, 0, 0, loc),
		}

	default: // daily, custom, anything unexpected
		return Period{Start: today, End: today.AddDate(0, 0, interval)}
	}
}

// PeriodKey renders an informational label for a completion row: the ISO
// week for weekly cadences, the ISO date for daily ones, empty otherwise.
// It is never used for quota gating.
func PeriodKey(now time.Time, typ FrequencyType) string {
	switch typ {
	case FreqWeekly:
		year, week := now.ISOWeek()
		return fmt.Sprintf("%d-W%d", year, week)
	case FreqDaily:
		return now.Format("2006-01-02")
	}
	return ""
}
