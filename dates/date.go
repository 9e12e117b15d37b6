// Package dates implements the calendar types and the date-range language
// used to select billing periods. A specifier is "YYYY", "YYYY.MM" or
// "YYYY.MM.DD"; an argument is a single specifier or two specifiers joined
// by "-" forming an inclusive range.
package dates

import (
	"fmt"
	"time"
)

// Date is a proleptic Gregorian calendar date. It is comparable and can be
// used as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate validates year/month/day and returns the corresponding Date.
func NewDate(year int, month time.Month, day int) (Date, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, fmt.Errorf("invalid date %04d-%02d-%02d", year, month, day)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// Today returns the current date in local time.
func Today() Date {
	now := time.Now()
	return Date{Year: now.Year(), Month: now.Month(), Day: now.Day()}
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days after d, crossing month and year
// boundaries as needed.
func (d Date) AddDays(n int) Date {
	t := d.Time().AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.Compare(other) > 0
}

// Compare returns -1, 0 or 1 depending on whether d is earlier than, equal
// to, or later than other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// String formats the date as "YYYY.MM.DD", the canonical ledger form.
func (d Date) String() string {
	return fmt.Sprintf("%04d.%02d.%02d", d.Year, d.Month, d.Day)
}

// LastDayOfMonth returns the final calendar day of the given month,
// accounting for leap years.
func LastDayOfMonth(year int, month time.Month) Date {
	if month == time.December {
		return Date{Year: year, Month: time.December, Day: 31}
	}
	first := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 0, -1)
	return Date{Year: last.Year(), Month: last.Month(), Day: last.Day()}
}

// Range is an inclusive span of dates. Construct ranges through the parsing
// functions in this package; they reject Start > End.
type Range struct {
	Start Date
	End   Date
}

// Contains reports whether date falls within the range, inclusive on both
// ends.
func (r Range) Contains(date Date) bool {
	return !date.Before(r.Start) && !date.After(r.End)
}

// String formats the range as "start-end".
func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}
