package progression

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextLevelXP(t *testing.T) {
	require.Equal(t, 51, NextLevelXP(1))
	require.Equal(t, 103, NextLevelXP(2))

	// strictly increasing
	prev := 0
	for level := 1; level <= 200; level++ {
		n := NextLevelXP(level)
		require.Greater(t, n, prev, "level %d", level)
		prev = n
	}
}

func TestProgressZero(t *testing.T) {
	p := Progress(0)
	require.Equal(t, 1, p.Level)
	require.Equal(t, 0, p.Current)
	require.Equal(t, 51, p.Span)
	require.Equal(t, 0, p.PrevTotal)
	require.Equal(t, 51, p.NextTotal)
	require.Equal(t, 0, p.Percent)
}

func TestProgressRollsOverAtSpan(t *testing.T) {
	p := Progress(51)
	require.Equal(t, 2, p.Level)
	require.Equal(t, 0, p.Current)
	require.Equal(t, 51, p.PrevTotal)
	require.Equal(t, 103, p.Span)
	require.Equal(t, 154, p.NextTotal)
}

func TestProgressJustBelowBoundary(t *testing.T) {
	p := Progress(50)
	require.Equal(t, 1, p.Level)
	require.Equal(t, 50, p.Current)
	require.Equal(t, 98, p.Percent)

	p = Progress(153)
	require.Equal(t, 2, p.Level)
	require.Equal(t, 102, p.Current)
	require.Equal(t, 99, p.Percent)
}

func TestProgressClampsNegative(t *testing.T) {
	require.Equal(t, Progress(0), Progress(-40))
}

func TestProgressLevelsAreContiguous(t *testing.T) {
	// walking the boundaries must hit every level exactly once
	total := 0
	for level := 1; level <= 50; level++ {
		p := Progress(total)
		require.Equal(t, level, p.Level)
		require.Equal(t, 0, p.Current)
		total += p.Span
	}
}
