package progression

import "math"

// NextLevelXP returns the XP required to advance from level to level+1.
// Strictly increasing, so Progress always terminates.
func NextLevelXP(level int) int {
	return int(math.Floor(50*float64(level) + math.Pow(float64(level), 1.8)))
}

// ProgressInfo breaks a cumulative XP total down into the current level.
type ProgressInfo struct {
	Level     int `json:"level"`
	PrevTotal int `json:"prev_total"` // cumulative XP at the start of the level
	NextTotal int `json:"next_total"` // cumulative XP needed for the next level
	Current   int `json:"current"`    // XP earned inside the current level
	Span      int `json:"span"`       // XP required to pass the current level
	Percent   int `json:"percent"`
}

// Progress computes the level reached for totalXP, starting at level 1.
// Negative input is clamped to 0.
func Progress(totalXP int) ProgressInfo {
	xp := totalXP
	if xp < 0 {
		xp = 0
	}

	level := 1
	prevTotal := 0
	span := NextLevelXP(level)

	for xp >= prevTotal+span {
		prevTotal += span
		level++
		span = NextLevelXP(level)
	}

	current := xp - prevTotal
	return ProgressInfo{
		Level:     level,
		PrevTotal: prevTotal,
		NextTotal: prevTotal + span,
		Current:   current,
		Span:      span,
		Percent:   int(math.Floor(float64(current) / float64(span) * 100)),
	}
}
