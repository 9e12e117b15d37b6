// Package heatmap draws a calendar heatmap of worked hours on the
// terminal. Weeks run Monday-first in columns; cell intensity scales
// with the hours worked that day relative to the busiest day.
package heatmap

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/exp/slices"
	"golang.org/x/term"

	"github.com/robinvdvleuten/clinvoice/dates"
	"github.com/robinvdvleuten/clinvoice/loader"
	"github.com/robinvdvleuten/clinvoice/output"
	"github.com/robinvdvleuten/clinvoice/parser"
)

const (
	cell         = " ◀▶"
	cellWidth    = 3
	gutterWidth  = 5
	defaultWidth = 80
)

// Heatmap renders worked hours as a terminal calendar grid.
type Heatmap struct {
	width  int
	styles *output.Styles
}

// Option configures a Heatmap.
type Option func(*Heatmap)

// WithWidth fixes the terminal width instead of detecting it.
func WithWidth(width int) Option {
	return func(h *Heatmap) {
		h.width = width
	}
}

// WithStyles overrides the output styles used for cells.
func WithStyles(styles *output.Styles) Option {
	return func(h *Heatmap) {
		h.styles = styles
	}
}

// New creates a new Heatmap with the given options.
func New(opts ...Option) *Heatmap {
	h := &Heatmap{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Render writes the heatmap for the given time data to w. Days without
// time entries render as dark cells; days outside the data's date range
// stay blank. When the data spans more weeks than fit the terminal,
// the oldest weeks are dropped.
func (h *Heatmap) Render(w io.Writer, td *loader.TimeData) error {
	styles := h.styles
	if styles == nil {
		styles = output.NewStyles(w)
	}

	dailyHours := collectDailyHours(td)
	if len(dailyHours) == 0 {
		return nil
	}

	days := make([]dates.Date, 0, len(dailyHours))
	for date := range dailyHours {
		days = append(days, date)
	}
	slices.SortFunc(days, func(a, b dates.Date) int { return a.Compare(b) })
	start, end := days[0], days[len(days)-1]

	var maxHours float64
	for _, hours := range dailyHours {
		maxHours = max(maxHours, hours)
	}

	// Column per week, anchored on its Monday.
	monday := start
	for monday.Time().Weekday() != time.Monday {
		monday = monday.AddDays(-1)
	}
	var mondays []dates.Date
	for !monday.After(end) {
		mondays = append(mondays, monday)
		monday = monday.AddDays(7)
	}

	if maxWeeks := (h.terminalWidth() - gutterWidth) / cellWidth; len(mondays) > maxWeeks {
		mondays = mondays[len(mondays)-maxWeeks:]
	}

	fmt.Fprint(w, "     ")
	for _, monday := range mondays {
		fmt.Fprintf(w, "%2d ", monday.Day)
	}
	fmt.Fprintln(w)

	for dayOfWeek := 0; dayOfWeek < 7; dayOfWeek++ {
		fmt.Fprint(w, dayLabel(dayOfWeek))
		for _, monday := range mondays {
			day := monday.AddDays(dayOfWeek)
			if day.Before(start) || day.After(end) {
				fmt.Fprint(w, "   ")
				continue
			}
			r, g, b := uint8(20), uint8(20), uint8(20)
			if hours := dailyHours[day]; hours > 0 {
				g = uint8(hours/maxHours*230) + 25
				r, b = 0, 0
			}
			fmt.Fprint(w, styles.Heat(cell, r, g, b))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprint(w, "     ")
	var lastMonth time.Month
	for _, monday := range mondays {
		if monday.Month != lastMonth {
			fmt.Fprint(w, monday.Month.String()[:3])
			lastMonth = monday.Month
		} else {
			fmt.Fprint(w, "   ")
		}
	}
	fmt.Fprintln(w)

	return nil
}

func (h *Heatmap) terminalWidth() int {
	if h.width > 0 {
		return h.width
	}
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > gutterWidth+cellWidth {
		return width
	}
	return defaultWidth
}

func collectDailyHours(td *loader.TimeData) map[dates.Date]float64 {
	dailyHours := make(map[dates.Date]float64)
	for date, entries := range td.Entries {
		for _, entry := range entries {
			if t, ok := entry.(parser.Time); ok {
				dailyHours[date] += float64(t.Hours)
			}
		}
	}
	return dailyHours
}

func dayLabel(dayOfWeek int) string {
	switch dayOfWeek {
	case 0:
		return "Mon "
	case 2:
		return "Wed "
	case 4:
		return "Fri "
	case 6:
		return "Sun "
	default:
		return "    "
	}
}
