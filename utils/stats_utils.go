package utils

import "time"

// Statistics windows are anchored at UTC midnight so the counts do not
// depend on the server's local timezone.

// StartOfDayUTC returns midnight UTC of the day containing t
func StartOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfTrailingWeekUTC returns midnight UTC six days before t, so the
// window covers the trailing seven calendar days including today.
func StartOfTrailingWeekUTC(t time.Time) time.Time {
	return StartOfDayUTC(t.UTC().AddDate(0, 0, -6))
}

// StartOfMonthUTC returns midnight UTC on the first day of t's month
func StartOfMonthUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
