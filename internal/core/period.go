package core

import (
	"fmt"
	"time"
)

const (
	ThisWeek  Period = "this_week"
	LastWeek  Period = "last_week"
	ThisMonth Period = "this_month"
	LastMonth Period = "last_month"
	Custom    Period = "custom"
)

// Period is a symbolic time reference taken from a parsed chat query.
type Period string

// ResolvePeriod maps a period token to a concrete half-open [start, end)
// interval anchored to now. The caller always supplies now so resolution
// stays deterministic. Weeks start on Monday.
//
// Bounds are aligned to midnight in now's location: the open end for the
// "this_*" tokens is the start of tomorrow, so transactions recorded today
// at any time of day fall inside the interval. For custom the end date is
// inclusive of its whole calendar day.
func ResolvePeriod(p Period, customStart, customEnd Date, now time.Time) (time.Time, time.Time, error) {
	today := startOfDay(now)

	switch p {
	case ThisWeek:
		return startOfWeek(today), today.AddDate(0, 0, 1), nil
	case LastWeek:
		monday := startOfWeek(today)
		return monday.AddDate(0, 0, -7), monday, nil
	case ThisMonth:
		return startOfMonth(today), today.AddDate(0, 0, 1), nil
	case LastMonth:
		first := startOfMonth(today)
		// AddDate is safe here: day 1 exists in every month, so the
		// arithmetic is correct across year boundaries too.
		return first.AddDate(0, -1, 0), first, nil
	case Custom:
		if customStart.IsEmpty() || customEnd.IsEmpty() {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: custom period requires both start and end dates", ErrInvalidPeriod)
		}
		if customEnd.Before(customStart.Time) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end date before start date", ErrInvalidPeriod)
		}
		return customStart.Time, customEnd.AddDate(0, 0, 1), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown token %q", ErrInvalidPeriod, string(p))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday of t's week. time.Weekday counts Sunday
// as 0, so Sunday maps to six days after Monday.
func startOfWeek(t time.Time) time.Time {
	offset := int(t.Weekday()) - 1
	if offset < 0 {
		offset = 6
	}
	return t.AddDate(0, 0, -offset)
}
