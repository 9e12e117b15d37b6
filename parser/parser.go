// Package parser implements the line grammar of .cli ledger files.
//
// A ledger file is a sequence of date lines and entry lines. A date line
// sets the current date for the entry lines below it. Entry lines are
// "<time specs> = <description>" for billable hours,
// "$<amount> = <description>" / "-$<amount> = <description>" for fixed
// fees and discounts, and "- <text>" / "* <text>" for notes.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robinvdvleuten/clinvoice/dates"
)

// dateFormats are tried in order; the first full match wins.
var dateFormats = []string{"2006.01.02", "20060102", "2006-01-02"}

// ParseDate recognizes a date line. It reports false for anything that is
// not exactly a date in one of the supported formats.
func ParseDate(line string) (dates.Date, bool) {
	for _, format := range dateFormats {
		t, err := time.Parse(format, line)
		if err != nil {
			continue
		}
		return dates.Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, true
	}
	return dates.Date{}, false
}

// ParseLine parses a single trimmed, non-empty, non-comment ledger line
// into an Entry.
func ParseLine(line string) (Entry, error) {
	line = strings.TrimSpace(line)

	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
		rest := line[1:]
		// A leading "-" followed by content containing "=" is a signed
		// correction like "-2h = ..." or "-$10 = ...", not a note.
		if !(line[0] == '-' && strings.Contains(rest, "=")) {
			return Note{Text: strings.TrimSpace(rest)}, nil
		}
	}

	value, description, found := strings.Cut(line, "=")
	if !found {
		return nil, errors.New("entry must have exactly two parts: value and description")
	}
	value = strings.TrimSpace(value)
	description = strings.TrimSpace(description)

	switch {
	case strings.HasPrefix(value, "-$"):
		cost, err := parseCost(strings.TrimPrefix(value, "-$"))
		if err != nil {
			return nil, err
		}
		return FixedCost{Amount: -cost, Description: description}, nil

	case strings.HasPrefix(value, "$"):
		cost, err := parseCost(strings.TrimPrefix(value, "$"))
		if err != nil {
			return nil, err
		}
		return FixedCost{Amount: cost, Description: description}, nil

	default:
		var total float32
		for _, spec := range strings.Split(value, ",") {
			hours, err := parseTimeSpec(spec)
			if err != nil {
				return nil, err
			}
			total += hours
		}
		return Time{Hours: total, Description: description}, nil
	}
}

func parseCost(s string) (float32, error) {
	cost, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid cost format %q", s)
	}
	return float32(cost), nil
}

// parseTimeSpec parses one comma-separated time token into hours.
//
// Supported forms:
//   - "<number>h": literal hours, any sign, fractions allowed
//   - "<start>-<end>": clock range, each side "HH:MM" or a bare hour
//
// An end of "24" or "24:00" means end-of-day midnight and is the only case
// where the end may be numerically before the start; the duration then
// wraps forward by 24 hours. Any other negative duration is an error.
func parseTimeSpec(spec string) (float32, error) {
	spec = strings.TrimSpace(spec)

	if strings.HasSuffix(spec, "h") {
		hours, err := strconv.ParseFloat(strings.TrimRight(spec, "h"), 32)
		if err != nil {
			return 0, fmt.Errorf("invalid hour format %q", spec)
		}
		return float32(hours), nil
	}

	if strings.Contains(spec, "-") {
		parts := strings.Split(spec, "-")
		if len(parts) != 2 {
			return 0, errors.New("time range must have exactly two parts")
		}
		startRaw := strings.TrimSpace(parts[0])
		endRaw := strings.TrimSpace(parts[1])

		start, err := parseClock(startRaw)
		if err != nil {
			return 0, errors.New("invalid start time")
		}

		isMidnight := endRaw == "24" || endRaw == "24:00"

		var end int
		if !isMidnight {
			end, err = parseClock(endRaw)
			if err != nil {
				return 0, errors.New("invalid end time")
			}
		}

		minutes := end - start
		if minutes < 0 {
			if !isMidnight {
				return 0, errors.New("end time before start time")
			}
			minutes += 24 * 60
		}
		return float32(minutes) / 60, nil
	}

	return 0, fmt.Errorf("invalid time specification format %q", spec)
}

// parseClock parses "HH:MM" or a bare hour "HH" into minutes since
// midnight.
func parseClock(s string) (int, error) {
	hourStr, minuteStr, found := strings.Cut(s, ":")
	if !found {
		minuteStr = "00"
	}

	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return hour*60 + minute, nil
}
