package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/robinvdvleuten/clinvoice/telemetry"
	"github.com/robinvdvleuten/clinvoice/tracing"
)

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Directory   string `help:"Directory containing ledger files." short:"d" default:"."`
	Config      string `help:"Path to a clinvoice.toml configuration file." short:"c"`
	Color       string `help:"Colorize output." enum:"auto,always,never" default:"auto"`
	TraceLevel  string `help:"Diagnostic verbosity." enum:"error,warn,info,debug,trace" default:"warn"`
	TraceOutput string `help:"Write diagnostics to this file instead of stderr ('-' for stderr)." default:"-"`
	Telemetry   bool   `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Log      LogCmd      `cmd:"" help:"Show logged hours from the ledger files."`
	Generate GenerateCmd `cmd:"" help:"Generate an invoice for the selected period."`
	Heatmap  HeatmapCmd  `cmd:"" help:"Draw a calendar heatmap of worked hours."`
}

// setup applies the global flags: diagnostics, color handling and the
// optional telemetry collector. The returned cleanup must run on exit.
func (g *Globals) setup(parent context.Context) (context.Context, *telemetry.Collector, func(), error) {
	switch g.Color {
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	closer, err := tracing.Init(g.TraceLevel, g.TraceOutput, g.Color != "never")
	if err != nil {
		return nil, nil, nil, err
	}

	cleanup := func() {
		if closer != nil {
			_ = closer.Close()
		}
	}

	ctx := parent
	var collector *telemetry.Collector
	if g.Telemetry {
		collector = telemetry.NewCollector()
		ctx = telemetry.WithCollector(ctx, collector)
	}

	return ctx, collector, cleanup, nil
}

// styleOptions translates --color into termenv output options.
func (g *Globals) styleOptions() []termenv.OutputOption {
	switch g.Color {
	case "always":
		return []termenv.OutputOption{termenv.WithProfile(termenv.TrueColor)}
	case "never":
		return []termenv.OutputOption{termenv.WithProfile(termenv.Ascii)}
	default:
		return nil
	}
}

func reportTelemetry(w io.Writer, collector *telemetry.Collector) {
	if collector == nil {
		return
	}
	_, _ = io.WriteString(w, "\n")
	collector.Report(w, nil)
}
