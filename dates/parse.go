package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseSpecifier parses a date specifier into the range it covers.
//
// Supported forms:
//   - "YYYY" covers the entire year
//   - "YYYY.MM" covers the entire month
//   - "YYYY.MM.DD" covers a single day
func ParseSpecifier(spec string) (Range, error) {
	parts := strings.Split(spec, ".")
	switch len(parts) {
	case 1:
		year, err := strconv.Atoi(parts[0])
		if err != nil {
			return Range{}, fmt.Errorf("invalid year %q", parts[0])
		}
		return Range{
			Start: Date{Year: year, Month: time.January, Day: 1},
			End:   Date{Year: year, Month: time.December, Day: 31},
		}, nil

	case 2:
		year, err := strconv.Atoi(parts[0])
		if err != nil {
			return Range{}, fmt.Errorf("invalid year %q", parts[0])
		}
		month, err := strconv.Atoi(parts[1])
		if err != nil {
			return Range{}, fmt.Errorf("invalid month %q", parts[1])
		}
		if month < 1 || month > 12 {
			return Range{}, fmt.Errorf("month %d out of range", month)
		}
		return Range{
			Start: Date{Year: year, Month: time.Month(month), Day: 1},
			End:   LastDayOfMonth(year, time.Month(month)),
		}, nil

	case 3:
		year, err := strconv.Atoi(parts[0])
		if err != nil {
			return Range{}, fmt.Errorf("invalid year %q", parts[0])
		}
		month, err := strconv.Atoi(parts[1])
		if err != nil {
			return Range{}, fmt.Errorf("invalid month %q", parts[1])
		}
		day, err := strconv.Atoi(parts[2])
		if err != nil {
			return Range{}, fmt.Errorf("invalid day %q", parts[2])
		}
		date, err := NewDate(year, time.Month(month), day)
		if err != nil {
			return Range{}, err
		}
		return Range{Start: date, End: date}, nil

	default:
		return Range{}, fmt.Errorf("invalid date specifier %q", spec)
	}
}

// ParseArg parses a date argument: either a single specifier, or two
// specifiers joined by "-" combined into one range spanning from the start
// of the left specifier to the end of the right one.
//
// The first "-" always splits the argument; specifiers themselves use "."
// as separator, so a dashed token is never read as a single specifier.
func ParseArg(arg string) (Range, error) {
	startSpec, endSpec, found := strings.Cut(arg, "-")
	if !found {
		return ParseSpecifier(arg)
	}

	startRange, err := ParseSpecifier(startSpec)
	if err != nil {
		return Range{}, err
	}
	endRange, err := ParseSpecifier(endSpec)
	if err != nil {
		return Range{}, err
	}

	r := Range{Start: startRange.Start, End: endRange.End}
	if r.Start.After(r.End) {
		return Range{}, fmt.Errorf("start date %s after end date %s", r.Start, r.End)
	}
	return r, nil
}
