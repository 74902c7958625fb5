package domain

import (
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses an FAA YYYYMMDD cell. Blank, non-numeric, and impossible
// dates (e.g. "00000000", "20230230") return nil.
func ParseDate(s string) *Date {
	s = strings.TrimSpace(s)
	if len(s) != 8 {
		return nil
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil
		}
	}
	t, err := time.Parse("20060102", s)
	if err != nil {
		return nil
	}
	d := DateOf(t)
	return &d
}

// Time returns midnight UTC on d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DatePtr converts an optional time to an optional date.
func DatePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := DateOf(t.UTC())
	return &d
}

var unixEpoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// EpochDays returns the number of days from 1970-01-01 to d, the Parquet
// DATE representation.
func (d Date) EpochDays() int32 {
	return int32(d.Time().Sub(unixEpoch) / (24 * time.Hour)) //nolint:gosec // registry dates fit
}

// DateFromEpochDays is the inverse of Date.EpochDays.
func DateFromEpochDays(days int32) Date {
	return DateOf(unixEpoch.AddDate(0, 0, int(days)))
}
