package report

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePeriod(t *testing.T) {
	cases := []struct {
		name     string
		selector Period
		ref      time.Time
		start    time.Time
		end      time.Time
	}{
		{"current month leap february", PeriodCurrentMonth, day(2024, time.February, 15), day(2024, time.February, 1), day(2024, time.February, 29)},
		{"current month plain february", PeriodCurrentMonth, day(2026, time.February, 10), day(2026, time.February, 1), day(2026, time.February, 28)},
		{"prev month", PeriodPrevMonth, day(2026, time.March, 31), day(2026, time.February, 1), day(2026, time.February, 28)},
		{"prev month wraps into december", PeriodPrevMonth, day(2026, time.January, 5), day(2025, time.December, 1), day(2025, time.December, 31)},
		{"current quarter", PeriodCurrentQuarter, day(2026, time.May, 20), day(2026, time.April, 1), day(2026, time.June, 30)},
		{"prev quarter", PeriodPrevQuarter, day(2026, time.May, 20), day(2026, time.January, 1), day(2026, time.March, 31)},
		{"prev quarter wraps into last year", PeriodPrevQuarter, day(2024, time.January, 15), day(2023, time.October, 1), day(2023, time.December, 31)},
		{"current year", PeriodCurrentYear, day(2026, time.July, 4), day(2026, time.January, 1), day(2026, time.December, 31)},
		{"prev year", PeriodPrevYear, day(2026, time.July, 4), day(2025, time.January, 1), day(2025, time.December, 31)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := ResolvePeriod(tc.selector, tc.ref)
			if err != nil {
				t.Fatalf("ResolvePeriod: %v", err)
			}
			if !start.Equal(tc.start) {
				t.Errorf("start = %v, want %v", start, tc.start)
			}
			if !end.Equal(tc.end) {
				t.Errorf("end = %v, want %v", end, tc.end)
			}
		})
	}
}

func TestResolvePeriodUnknownSelector(t *testing.T) {
	_, _, err := ResolvePeriod(Period("last_week"), day(2026, time.May, 1))
	if !errors.Is(err, ErrUnknownPeriod) {
		t.Fatalf("err = %v, want ErrUnknownPeriod", err)
	}
}

func TestDayKeyOrdersAcrossTimeOfDay(t *testing.T) {
	late := time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC)
	early := time.Date(2026, time.April, 1, 0, 1, 0, 0, time.UTC)
	if dayKey(late) >= dayKey(early) {
		t.Errorf("dayKey(%v) = %d not below dayKey(%v) = %d", late, dayKey(late), early, dayKey(early))
	}
	sameDay := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	if dayKey(late) != dayKey(sameDay) {
		t.Errorf("same calendar day must share a key: %d vs %d", dayKey(late), dayKey(sameDay))
	}
}
