package report

import (
	"errors"
	"time"
)

// Period selects a reporting date range relative to a reference date.
type Period string

const (
	PeriodCurrentMonth   Period = "current_month"
	PeriodPrevMonth      Period = "prev_month"
	PeriodCurrentQuarter Period = "current_quarter"
	PeriodPrevQuarter    Period = "prev_quarter"
	PeriodCurrentYear    Period = "current_year"
	PeriodPrevYear       Period = "prev_year"
)

var ErrUnknownPeriod = errors.New("unknown period selector")

// ResolvePeriod maps a selector and a reference date to an inclusive date
// range. Quarters are the fixed blocks Jan–Mar, Apr–Jun, Jul–Sep, Oct–Dec;
// "previous" selectors wrap across year boundaries.
func ResolvePeriod(p Period, ref time.Time) (start, end time.Time, err error) {
	y, m, _ := ref.Date()
	loc := ref.Location()

	switch p {
	case PeriodCurrentMonth:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		end = time.Date(y, m+1, 0, 0, 0, 0, 0, loc)
	case PeriodPrevMonth:
		start = time.Date(y, m-1, 1, 0, 0, 0, 0, loc)
		end = time.Date(y, m, 0, 0, 0, 0, 0, loc)
	case PeriodCurrentQuarter:
		q := time.Month((int(m)-1)/3*3 + 1)
		start = time.Date(y, q, 1, 0, 0, 0, 0, loc)
		end = time.Date(y, q+3, 0, 0, 0, 0, 0, loc)
	case PeriodPrevQuarter:
		q := time.Month((int(m)-1)/3*3 + 1)
		start = time.Date(y, q-3, 1, 0, 0, 0, 0, loc)
		end = time.Date(y, q, 0, 0, 0, 0, 0, loc)
	case PeriodCurrentYear:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		end = time.Date(y, time.December, 31, 0, 0, 0, 0, loc)
	case PeriodPrevYear:
		start = time.Date(y-1, time.January, 1, 0, 0, 0, 0, loc)
		end = time.Date(y-1, time.December, 31, 0, 0, 0, 0, loc)
	default:
		return time.Time{}, time.Time{}, ErrUnknownPeriod
	}
	return start, end, nil
}

// dayKey flattens a timestamp to a comparable calendar-day number, so range
// checks work at date granularity regardless of time zone or time of day.
func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
