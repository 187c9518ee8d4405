package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2025-03-01")
	assert.NoError(t, err)
	assert.Equal(t, "2025-03-01 00:00:00 +0000 UTC", d.String())

	_, err = ParseDay("01/03/2025")
	assert.Error(t, err)
	_, err = ParseDay("2025-13-40")
	assert.Error(t, err)
}

func TestDiffDaysExclusive(t *testing.T) {
	days, err := DiffDaysExclusive("2025-03-01", "2025-03-04")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), days)

	days, err = DiffDaysExclusive("2025-03-01", "2025-03-01")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), days)

	// Clamped, never negative.
	days, err = DiffDaysExclusive("2025-03-04", "2025-03-01")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), days)
}

func TestDiffDaysAcrossDSTBoundary(t *testing.T) {
	// Day counts must stay whole across DST shift windows.
	days, err := DiffDaysExclusive("2024-10-31", "2024-11-08")
	assert.NoError(t, err)
	assert.Equal(t, int64(8), days)
}

func TestEnumerateInclusive(t *testing.T) {
	days, err := EnumerateInclusive("2025-03-01", "2025-03-03")
	assert.NoError(t, err)
	assert.Equal(t, []string{"2025-03-01", "2025-03-02", "2025-03-03"}, days)

	days, err = EnumerateInclusive("2025-03-03", "2025-03-01")
	assert.NoError(t, err)
	assert.Empty(t, days)
}

func TestEnumerateMatchesDiff(t *testing.T) {
	start, end := "2025-02-26", "2025-03-05"
	endExclusive, err := NextDay(end)
	assert.NoError(t, err)
	days, err := DiffDaysExclusive(start, endExclusive)
	assert.NoError(t, err)
	listed, err := EnumerateInclusive(start, end)
	assert.NoError(t, err)
	assert.Equal(t, int(days), len(listed))
}

func TestNextPrevDay(t *testing.T) {
	next, err := NextDay("2025-02-28")
	assert.NoError(t, err)
	assert.Equal(t, "2025-03-01", next)

	prev, err := PrevDay("2025-03-01")
	assert.NoError(t, err)
	assert.Equal(t, "2025-02-28", prev)

	next, err = NextDay("2024-02-28")
	assert.NoError(t, err)
	assert.Equal(t, "2024-02-29", next)
}
