package core

import (
	"errors"
	"testing"
	"time"
)

// Wednesday afternoon, mid-March 2024.
var wednesday = time.Date(2024, 3, 13, 15, 30, 45, 0, time.UTC)

func TestResolvePeriodTokens(t *testing.T) {
	cases := []struct {
		period Period
		start  time.Time
		end    time.Time
	}{
		{ThisWeek, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)},
		{LastWeek, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{ThisMonth, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)},
		{LastMonth, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		start, end, err := ResolvePeriod(tc.period, Date{}, Date{}, wednesday)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.period, err)
		}
		if !start.Equal(tc.start) || !end.Equal(tc.end) {
			t.Fatalf("%s: got [%v, %v), want [%v, %v)", tc.period, start, end, tc.start, tc.end)
		}
		if !start.Before(end) {
			t.Fatalf("%s: start not strictly before end", tc.period)
		}
		if end.Sub(start)%(24*time.Hour) != 0 {
			t.Fatalf("%s: interval is not a whole number of days", tc.period)
		}
	}
}

func TestResolvePeriodSundayBelongsToCurrentWeek(t *testing.T) {
	sunday := time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC)
	start, end, err := ResolvePeriod(ThisWeek, Date{}, Date{}, sunday)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !start.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected Monday 2024-03-11, got %v", start)
	}
	if !end.Equal(time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected end 2024-03-18, got %v", end)
	}
}

func TestResolvePeriodLastMonthAcrossYearBoundary(t *testing.T) {
	for day := 1; day <= 31; day++ {
		now := time.Date(2024, 1, day, 12, 0, 0, 0, time.UTC)
		start, end, err := ResolvePeriod(LastMonth, Date{}, Date{}, now)
		if err != nil {
			t.Fatalf("day %d: unexpected error %v", day, err)
		}
		if !start.Equal(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("day %d: expected Dec 1 2023, got %v", day, start)
		}
		if !end.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("day %d: expected Jan 1 2024, got %v", day, end)
		}
	}
}

func TestResolvePeriodCustom(t *testing.T) {
	start, end, err := ResolvePeriod(Custom, NewDate(2024, 1, 1), NewDate(2024, 1, 31), wednesday)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", start)
	}
	// End date is inclusive of its whole day.
	if !end.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %v", end)
	}
}

func TestResolvePeriodCustomSingleDay(t *testing.T) {
	start, end, err := ResolvePeriod(Custom, NewDate(2024, 6, 10), NewDate(2024, 6, 10), wednesday)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if end.Sub(start) != 24*time.Hour {
		t.Fatalf("expected one-day interval, got %v", end.Sub(start))
	}
}

func TestResolvePeriodErrors(t *testing.T) {
	cases := []struct {
		name       string
		period     Period
		start, end Date
	}{
		{"unknown token", Period("fortnight"), Date{}, Date{}},
		{"empty token", Period(""), Date{}, Date{}},
		{"custom missing start", Custom, Date{}, NewDate(2024, 1, 31)},
		{"custom missing end", Custom, NewDate(2024, 1, 1), Date{}},
		{"custom missing both", Custom, Date{}, Date{}},
		{"custom end before start", Custom, NewDate(2024, 2, 1), NewDate(2024, 1, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ResolvePeriod(tc.period, tc.start, tc.end, wednesday)
			if !errors.Is(err, ErrInvalidPeriod) {
				t.Fatalf("expected ErrInvalidPeriod, got %v", err)
			}
		})
	}
}
