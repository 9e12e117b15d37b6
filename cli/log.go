package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-runewidth"
	log "github.com/sirupsen/logrus"

	"github.com/robinvdvleuten/clinvoice/dates"
	"github.com/robinvdvleuten/clinvoice/invoice"
	"github.com/robinvdvleuten/clinvoice/loader"
	"github.com/robinvdvleuten/clinvoice/output"
	"github.com/robinvdvleuten/clinvoice/parser"
	"github.com/robinvdvleuten/clinvoice/telemetry"
)

type LogCmd struct {
	Format string   `help:"Log format: every entry, or totals per day, month or year." enum:"full,day,month,year" default:"full" short:"f"`
	Watch  bool     `help:"Keep running and re-render when ledger files change." short:"w"`
	Dates  []string `help:"Date filters (YYYY, YYYY.MM, YYYY.MM.DD or ranges joined with '-')." arg:"" optional:""`
}

func (cmd *LogCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, collector, cleanup, err := globals.setup(context.Background())
	if err != nil {
		return err
	}
	defer cleanup()
	defer reportTelemetry(ctx.Stderr, collector)

	selector, err := dates.NewSelector(cmd.Dates)
	if err != nil {
		return err
	}

	styles := output.NewStyles(ctx.Stdout, globals.styleOptions()...)

	render := func(renderCtx context.Context) error {
		timer := telemetry.Start(renderCtx, "log")

		loadTimer := timer.Child("Load ledger files")
		td, err := loader.New().Load(renderCtx, globals.Directory, selector)
		loadTimer.End()
		if err != nil {
			timer.End()
			return err
		}

		writeTimer := timer.Child("Write summary")
		writeLog(ctx.Stdout, td, cmd.Format, styles)
		writeTimer.End()
		timer.End()
		return nil
	}

	if err := render(runCtx); err != nil {
		return err
	}

	if !cmd.Watch {
		return nil
	}
	return cmd.watch(runCtx, ctx, globals, render)
}

// watch blocks until interrupted, re-rendering the summary whenever a
// file in the ledger directory changes.
func (cmd *LogCmd) watch(runCtx context.Context, ctx *kong.Context, globals *Globals, render func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(globals.Directory); err != nil {
		return fmt.Errorf("failed to watch %s: %w", globals.Directory, err)
	}

	printInfof(ctx.Stderr, "Watching %s for changes", pathStyle.Render(globals.Directory))

	watchCtx, stop := signal.NotifyContext(runCtx, os.Interrupt)
	defer stop()

	// Editors write files in multiple steps; coalesce bursts of events.
	const debounceDelay = 100 * time.Millisecond
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-watchCtx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				fmt.Fprintln(ctx.Stdout)
				if err := render(watchCtx); err != nil {
					log.Errorf("reload failed: %v", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("file watcher error: %v", err)
		}
	}
}

// writeLog renders the loaded entries in the requested format.
func writeLog(w io.Writer, td *loader.TimeData, format string, styles *output.Styles) {
	switch format {
	case "day":
		writeDays(w, td, styles)
	case "month":
		writePeriodTotals(w, td, styles, func(d dates.Date) string {
			return fmt.Sprintf("%04d.%02d", d.Year, d.Month)
		})
	case "year":
		writePeriodTotals(w, td, styles, func(d dates.Date) string {
			return fmt.Sprintf("%04d", d.Year)
		})
	default:
		writeFull(w, td, styles)
	}
}

func writeFull(w io.Writer, td *loader.TimeData, styles *output.Styles) {
	for _, date := range td.Dates() {
		for _, entry := range td.Entries[date] {
			switch e := entry.(type) {
			case parser.Time:
				fmt.Fprintf(w, "%s  %s  %s\n",
					styles.Date(date.String()),
					styles.Hours(runewidth.FillLeft(invoice.FormatHours(e.Hours), 5)),
					e.Description)
			case parser.FixedCost:
				fmt.Fprintf(w, "%s  %s  %s\n",
					styles.Date(date.String()),
					styles.Amount(runewidth.FillLeft(formatAmount(e.Amount), 5)),
					e.Description)
			case parser.Note:
				fmt.Fprintf(w, "%s  %s  %s\n",
					styles.Date(date.String()),
					runewidth.FillLeft("", 5),
					styles.Dim(e.Text))
			}
		}
	}
}

func writeDays(w io.Writer, td *loader.TimeData, styles *output.Styles) {
	for _, date := range td.Dates() {
		var hours float32
		var descriptions []string
		for _, entry := range td.Entries[date] {
			switch e := entry.(type) {
			case parser.Time:
				hours += e.Hours
				if e.Description != "" {
					descriptions = append(descriptions, e.Description)
				}
			case parser.Note:
				descriptions = append(descriptions, e.Text)
			}
		}
		fmt.Fprintf(w, "%s  %s  %s\n",
			styles.Date(date.String()),
			styles.Hours(runewidth.FillLeft(invoice.FormatHours(hours), 5)),
			strings.Join(descriptions, "; "))
	}
}

func writePeriodTotals(w io.Writer, td *loader.TimeData, styles *output.Styles, key func(dates.Date) string) {
	totals := make(map[string]float32)
	var keys []string
	for _, date := range td.Dates() {
		k := key(date)
		if _, seen := totals[k]; !seen {
			keys = append(keys, k)
			totals[k] = 0
		}
		for _, entry := range td.Entries[date] {
			if e, ok := entry.(parser.Time); ok {
				totals[k] += e.Hours
			}
		}
	}
	// td.Dates() is sorted, so keys arrive in chronological order.
	for _, k := range keys {
		fmt.Fprintf(w, "%s  %s\n", styles.Date(k), styles.Hours(invoice.FormatHours(totals[k])))
	}
}

func formatAmount(amount float32) string {
	if amount < 0 {
		return "-$" + strconv.FormatFloat(float64(-amount), 'g', -1, 32)
	}
	return "$" + strconv.FormatFloat(float64(amount), 'g', -1, 32)
}
