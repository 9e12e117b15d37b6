// Package loader walks a directory of .cli ledger files and produces a
// date-indexed collection of parsed entries.
//
// Per-line faults are never fatal: malformed lines are logged with their
// file path and 1-based line number and skipped, so one typo never hides
// the rest of a timesheet. Only a missing or unreadable directory aborts
// the load.
package loader

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/clinvoice/dates"
	"github.com/robinvdvleuten/clinvoice/parser"
)

// TimeData maps each date to the entries recorded for it, preserving
// insertion order per date. Dates accumulate across all scanned files;
// files are visited in name order, so cross-file entry order is stable.
type TimeData struct {
	Entries map[dates.Date][]parser.Entry

	// Warnings counts the lines that failed to parse and were skipped.
	Warnings int
}

// Dates returns all dates with entries, sorted ascending.
func (td *TimeData) Dates() []dates.Date {
	ds := make([]dates.Date, 0, len(td.Entries))
	for d := range td.Entries {
		ds = append(ds, d)
	}
	slices.SortFunc(ds, func(a, b dates.Date) int { return a.Compare(b) })
	return ds
}

// Loader reads ledger files from a directory. Configure it with functional
// options passed to New:
//
//	loader := New(WithExtension(".timesheet"))
type Loader struct {
	// Extension selects which files count as ledger files. Defaults to
	// ".cli".
	Extension string
}

// Option configures how ledger files are loaded.
type Option func(*Loader)

// WithExtension overrides the ledger file extension (including the dot).
func WithExtension(ext string) Option {
	return func(l *Loader) {
		l.Extension = ext
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{Extension: ".cli"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load scans every ledger file in dir and returns the entries whose dates
// the selector covers. Entries outside the selected period are silently
// dropped; lines that fail to parse are logged and skipped.
func (l *Loader) Load(ctx context.Context, dir string, selector *dates.Selector) (*TimeData, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger directory %s: %w", dir, err)
	}

	td := &TimeData{Entries: make(map[dates.Date][]parser.Entry)}

	// os.ReadDir sorts by filename, keeping cross-file entry order
	// independent of the filesystem's iteration order.
	for _, dirEntry := range dirEntries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !dirEntry.Type().IsRegular() || filepath.Ext(dirEntry.Name()) != l.Extension {
			continue
		}

		path := filepath.Join(dir, dirEntry.Name())
		if err := l.loadFile(path, selector, td); err != nil {
			return nil, err
		}
	}

	return td, nil
}

// loadFile scans one ledger file line by line, maintaining the current
// date set by the most recent date line.
func (l *Loader) loadFile(path string, selector *dates.Selector, td *TimeData) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var currentDate dates.Date
	haveDate := false

	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())

		// Full-line comments only; "#" or "//" after content on the same
		// line belongs to the entry and is preserved literally.
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if date, ok := parser.ParseDate(line); ok {
			currentDate = date
			haveDate = true
			continue
		}

		if !haveDate {
			log.Warnf("%s:%d: expected date in YYYY.MM.DD, YYYYMMDD or YYYY-MM-DD format, but found %q", path, lineNo, line)
			td.Warnings++
			continue
		}

		entry, err := parser.ParseLine(line)
		if err != nil {
			log.Warnf("%s:%d: %s, but found %q", path, lineNo, err, line)
			td.Warnings++
			continue
		}

		if selector.Selected(currentDate) {
			td.Entries[currentDate] = append(td.Entries[currentDate], entry)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}
