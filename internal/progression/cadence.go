package progression

// FrequencyType enumerates the supported goal cadences.
type FrequencyType string

const (
	FreqOnce    FrequencyType = "once"
	FreqDaily   FrequencyType = "daily"
	FreqWeekly  FrequencyType = "weekly"
	FreqMonthly FrequencyType = "monthly"
	FreqCustom  FrequencyType = "custom"
)

// ValidFrequencyType reports whether s is one of the enumerated cadences.
func ValidFrequencyType(s string) bool {
	switch FrequencyType(s) {
	case FreqOnce, FreqDaily, FreqWeekly, FreqMonthly, FreqCustom:
		return true
	}
	return false
}

// Cadence is the schedule actually applied to a goal.
type Cadence struct {
	Type         FrequencyType
	Interval     int
	WeekStart    int // 1=Monday .. 7=Sunday
	MaxPerPeriod int
}

// CadenceOverride carries a goal instance's per-user settings.
// A nil field inherits the template default; a non-nil field always wins,
// even when it holds a zero value.
type CadenceOverride struct {
	Type         *FrequencyType
	Interval     *int
	WeekStart    *int
	MaxPerPeriod *int
}

// ResolveCadence merges a per-user override over the template defaults.
func ResolveCadence(def Cadence, ov CadenceOverride) Cadence {
	eff := def
	if ov.Type != nil {
		eff.Type = *ov.Type
	}
	if ov.Interval != nil {
		eff.Interval = *ov.Interval
	}
	if ov.WeekStart != nil {
		eff.WeekStart = *ov.WeekStart
	}
	if ov.MaxPerPeriod != nil {
		eff.MaxPerPeriod = *ov.MaxPerPeriod
	}
	return eff
}
