package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/clinvoice/config"
	"github.com/robinvdvleuten/clinvoice/dates"
	"github.com/robinvdvleuten/clinvoice/index"
	"github.com/robinvdvleuten/clinvoice/invoice"
	"github.com/robinvdvleuten/clinvoice/loader"
	"github.com/robinvdvleuten/clinvoice/render"
	"github.com/robinvdvleuten/clinvoice/telemetry"
)

type GenerateCmd struct {
	Generator string   `help:"Generator profile from the configuration ([generator.<name>])." short:"g"`
	Output    string   `help:"Path of the rendered invoice (overrides the generator's output)." short:"o"`
	Sequence  uint32   `help:"Force this invoice sequence number instead of looking one up." short:"s"`
	Force     bool     `help:"Overwrite an existing output file without confirmation."`
	Dates     []string `help:"Date filters bounding the billing period." arg:"" optional:""`
}

func (cmd *GenerateCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, collector, cleanup, err := globals.setup(context.Background())
	if err != nil {
		return err
	}
	defer cleanup()
	defer reportTelemetry(ctx.Stderr, collector)

	timer := telemetry.Start(runCtx, "generate")
	defer timer.End()

	cfg, err := config.Load(globals.Config, globals.Directory)
	if err != nil {
		return err
	}

	generator, err := cmd.generatorConfig(cfg)
	if err != nil {
		return err
	}

	selector, err := dates.NewSelector(cmd.Dates)
	if err != nil {
		return err
	}

	loadTimer := timer.Child("Load ledger files")
	td, err := loader.New().Load(runCtx, globals.Directory, selector)
	loadTimer.End()
	if err != nil {
		return err
	}

	totals := invoice.Compute(td, invoice.Config{
		HourlyRate:         cfg.Float64Or("contract.hourly_rate", 0),
		CapHoursPerDay:     float32(cfg.Float64Or("contract.cap_hours_per_day", 0)),
		CapHoursPerInvoice: float32(cfg.Float64Or("contract.cap_hours_per_invoice", 0)),
		TaxPercent:         cfg.Float64Or("contract.tax_percent", 0),
		PaymentDays:        cfg.IntOr("contract.payment_days", 14),
		Today:              dates.Today(),
	})

	sequence, err := cmd.assignSequence(cfg, globals.Directory)
	if err != nil {
		return err
	}

	if _, err := os.Stat(generator.output); err == nil && !cmd.Force {
		overwrite, err := promptYesNo(fmt.Sprintf("File %q already exists. Overwrite it?", generator.output))
		if err != nil {
			return err
		}
		if !overwrite {
			printError(ctx.Stderr, fmt.Sprintf("not overwriting %s", generator.output))
			return NewCommandError(1)
		}
	}

	renderTimer := timer.Child("Render template")
	err = cmd.renderOutput(generator, render.Vars(totals, sequence, cfg.Flatten()))
	renderTimer.End()
	if err != nil {
		return err
	}

	if generator.build != "" {
		buildTimer := timer.Child("Run build command")
		err = render.RunBuild(runCtx, generator.build, generator.output, globals.Directory)
		buildTimer.End()
		if err != nil {
			return err
		}
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Generated invoice #%d: %s", sequence, pathStyle.Render(generator.output)))
	if td.Warnings > 0 {
		printInfof(ctx.Stderr, "%d ledger line(s) could not be parsed and were skipped", td.Warnings)
	}

	return nil
}

// generatorConfig resolves the generator profile: the --generator flag,
// falling back to the [generator] default from the configuration.
type generatorConfig struct {
	name     string
	template string
	output   string
	escape   string
	build    string
}

func (cmd *GenerateCmd) generatorConfig(cfg *config.Config) (generatorConfig, error) {
	name := cmd.Generator
	if name == "" {
		name = cfg.StringOr("generator.default", "")
	}
	if name == "" {
		return generatorConfig{}, fmt.Errorf("no generator specified; pass --generator or set generator.default in %s", cfg.Path())
	}

	prefix := "generator." + name
	if !cfg.Has(prefix + ".template") {
		return generatorConfig{}, fmt.Errorf("generator %q has no template configured", name)
	}

	generator := generatorConfig{
		name:     name,
		template: cfg.String(prefix + ".template"),
		output:   cmd.Output,
		escape:   cfg.StringOr(prefix+".escape", "none"),
		build:    cfg.StringOr(prefix+".build", ""),
	}
	if generator.output == "" {
		generator.output = cfg.StringOr(prefix+".output", "")
	}
	if generator.output == "" {
		return generatorConfig{}, fmt.Errorf("generator %q has no output path; pass --output or set %s.output", name, prefix)
	}
	return generator, nil
}

// assignSequence locks the sequence index, resolves the invoice number
// for the requested dates and persists the index before releasing the
// lock. An explicit --sequence force-assigns instead of looking up.
func (cmd *GenerateCmd) assignSequence(cfg *config.Config, directory string) (uint32, error) {
	path := cfg.StringOr("invoice.index", filepath.Join(directory, "clinvoice.index"))

	idx, err := index.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = idx.Close() }()

	var sequence uint32
	if cmd.Sequence > 0 {
		sequence = idx.AddSequence(cmd.Sequence, cmd.Dates)
	} else {
		sequence = idx.FindSequence(cmd.Dates)
	}

	if err := idx.Save(); err != nil {
		return 0, err
	}
	return sequence, nil
}

func (cmd *GenerateCmd) renderOutput(generator generatorConfig, vars map[string]interface{}) error {
	file, err := os.Create(generator.output)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", generator.output, err)
	}

	renderer := render.New(render.WithEscape(generator.escape))
	if err := renderer.Render(generator.template, vars, file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
