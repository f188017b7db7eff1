package task

import "time"

type Unit int

const (
	Day Unit = iota
	Week
	Month
	Year
)

// IsToday reports whether due falls on now's calendar date, in now's location.
func IsToday(due *time.Time, now time.Time) bool {
	if due == nil {
		return false
	}
	d := due.In(now.Location())
	y1, m1, d1 := d.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func IsFuture(due, now time.Time) bool {
	return due.After(now)
}

// AddCalendarStep adds one unit using calendar fields, preserving the time of
// day. Month-end overflow rolls forward (Jan 31 + 1 month is early March).
func AddCalendarStep(t time.Time, u Unit) time.Time {
	switch u {
	case Week:
		return t.AddDate(0, 0, 7)
	case Month:
		return t.AddDate(0, 1, 0)
	case Year:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// AddDays adds n fixed 24h periods.
func AddDays(t time.Time, n int) time.Time {
	return t.Add(time.Duration(n) * 24 * time.Hour)
}
