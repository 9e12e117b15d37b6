package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/clinvoice/dates"
	"github.com/robinvdvleuten/clinvoice/heatmap"
	"github.com/robinvdvleuten/clinvoice/loader"
	"github.com/robinvdvleuten/clinvoice/output"
	"github.com/robinvdvleuten/clinvoice/telemetry"
)

type HeatmapCmd struct {
	Dates []string `help:"Date filters (YYYY, YYYY.MM, YYYY.MM.DD or ranges joined with '-')." arg:"" optional:""`
}

func (cmd *HeatmapCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, collector, cleanup, err := globals.setup(context.Background())
	if err != nil {
		return err
	}
	defer cleanup()
	defer reportTelemetry(ctx.Stderr, collector)

	timer := telemetry.Start(runCtx, "heatmap")
	defer timer.End()

	selector, err := dates.NewSelector(cmd.Dates)
	if err != nil {
		return err
	}

	td, err := loader.New().Load(runCtx, globals.Directory, selector)
	if err != nil {
		return err
	}

	styles := output.NewStyles(ctx.Stdout, globals.styleOptions()...)
	return heatmap.New(heatmap.WithStyles(styles)).Render(ctx.Stdout, td)
}
