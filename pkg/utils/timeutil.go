// Package utils provides common helpers for tickerpulse: calendar-day
// handling, ticker normalization and decimal rounding.
package utils

import (
	"time"
)

// DateLayout is the calendar-day format used for every date key.
const DateLayout = "2006-01-02"

// unixEpochOrdinal is the proleptic Gregorian ordinal of 1970-01-01,
// counting 0001-01-01 as day 1.
const unixEpochOrdinal = 719163

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day in UTC.
func Today() time.Time {
	return DateOf(time.Now())
}

// DateKey formats the calendar day of t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDateKey parses a YYYY-MM-DD string into midnight UTC.
func ParseDateKey(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// DaysAgo returns the calendar day n days before day.
func DaysAgo(day time.Time, n int) time.Time {
	return DateOf(day).AddDate(0, 0, -n)
}

// Ordinal returns the proleptic Gregorian ordinal of t's calendar day,
// where 0001-01-01 is day 1.
func Ordinal(t time.Time) int64 {
	d := DateOf(t)
	days := d.Unix() / 86400
	if d.Unix()%86400 < 0 {
		days--
	}
	return days + unixEpochOrdinal
}
