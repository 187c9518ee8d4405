package utils

import (
	"time"

	"github.com/SrZeh/get-useapp-sub002/src/config"
	"github.com/SrZeh/get-useapp-sub002/src/types"
)

// ParseDay reads a YYYY-MM-DD string as UTC midnight.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(config.DATE_FORMAT, s, time.UTC)
	if err != nil {
		return time.Time{}, types.NewValidationError("invalid date: " + s)
	}
	return t, nil
}

// DiffDaysExclusive returns the whole days between start (inclusive) and
// end (exclusive), clamped at zero.
func DiffDaysExclusive(start, endExclusive string) (int64, error) {
	a, err := ParseDay(start)
	if err != nil {
		return 0, err
	}
	b, err := ParseDay(endExclusive)
	if err != nil {
		return 0, err
	}
	days := RoundHalfAway(b.Sub(a).Hours() / 24)
	if days < 0 {
		return 0, nil
	}
	return days, nil
}

// EnumerateInclusive lists every calendar date from a to b inclusive,
// stepping one UTC day at a time. Returns an empty list when b precedes a.
func EnumerateInclusive(a, b string) ([]string, error) {
	from, err := ParseDay(a)
	if err != nil {
		return nil, err
	}
	to, err := ParseDay(b)
	if err != nil {
		return nil, err
	}
	days := make([]string, 0)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(config.DATE_FORMAT))
	}
	return days, nil
}

func NextDay(s string) (string, error) {
	t, err := ParseDay(s)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, 1).Format(config.DATE_FORMAT), nil
}

func PrevDay(s string) (string, error) {
	t, err := ParseDay(s)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, -1).Format(config.DATE_FORMAT), nil
}
