// Package render turns computed invoice totals into output documents via
// user-supplied text templates, and optionally runs a post-processing
// build command (e.g. a LaTeX toolchain) on the written file.
//
// Display rounding happens here and only here: amounts are carried as
// float64 throughout aggregation and reduced to two decimals at the
// template boundary via the money function.
package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/clinvoice/invoice"
)

// Renderer executes invoice templates. Configure it with functional
// options passed to New:
//
//	renderer := New(WithEscape("latex"))
type Renderer struct {
	// Escape names the escaping applied by the template's esc function:
	// "latex", "markdown" or "none".
	Escape string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithEscape selects the escaping bound to the template's esc function.
func WithEscape(escape string) Option {
	return func(r *Renderer) {
		r.Escape = escape
	}
}

// New creates a new Renderer with the given options.
func New(opts ...Option) *Renderer {
	r := &Renderer{Escape: "none"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render parses the template file and executes it with vars into w.
func (r *Renderer) Render(templatePath string, vars map[string]interface{}, w io.Writer) error {
	esc, err := escapeFunc(r.Escape)
	if err != nil {
		return err
	}

	tmpl, err := template.New(filepath.Base(templatePath)).
		Funcs(template.FuncMap{
			"money":    Money,
			"hours":    Hours,
			"markdown": MarkdownEscape,
			"latex":    LatexEscape,
			"esc":      esc,
		}).
		ParseFiles(templatePath)
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", templatePath, err)
	}

	if err := tmpl.Execute(w, vars); err != nil {
		return fmt.Errorf("failed to render template %s: %w", templatePath, err)
	}
	return nil
}

func escapeFunc(name string) (func(string) string, error) {
	switch name {
	case "", "none":
		return func(s string) string { return s }, nil
	case "markdown":
		return MarkdownEscape, nil
	case "latex":
		return LatexEscape, nil
	default:
		return nil, fmt.Errorf("unknown escape mode %q", name)
	}
}

// Money formats an amount with exactly two decimals.
func Money(v interface{}) string {
	return toDecimal(v).StringFixed(2)
}

// Hours formats an hour count in its shortest form.
func Hours(v interface{}) string {
	switch h := v.(type) {
	case float32:
		return invoice.FormatHours(h)
	case float64:
		return invoice.FormatHours(float32(h))
	default:
		return fmt.Sprint(v)
	}
}

func toDecimal(v interface{}) decimal.Decimal {
	switch a := v.(type) {
	case float64:
		return decimal.NewFromFloat(a)
	case float32:
		return decimal.NewFromFloat32(a)
	case int:
		return decimal.NewFromInt(int64(a))
	case int64:
		return decimal.NewFromInt(a)
	default:
		d, _ := decimal.NewFromString(fmt.Sprint(v))
		return d
	}
}

// Vars assembles the template variable map from the invoice totals, the
// assigned sequence number and the flattened configuration. Configuration
// keys are exposed with underscores ("contract_hourly_rate") so templates
// can address them as fields.
func Vars(totals invoice.Totals, sequence uint32, config map[string]interface{}) map[string]interface{} {
	vars := make(map[string]interface{}, len(config)+24)

	for key, value := range config {
		vars[strings.ReplaceAll(key, ".", "_")] = value
	}

	days := make([]map[string]interface{}, len(totals.Days))
	for i, day := range totals.Days {
		days[i] = map[string]interface{}{
			"index":        day.Index,
			"date":         day.Date.String(),
			"hours":        day.Hours,
			"worked_hours": day.WorkedHours,
			"cost":         day.Cost,
			"description":  day.Description,
		}
	}

	vars["sequence"] = sequence
	vars["days"] = days
	vars["period_start"] = totals.PeriodStart.String()
	vars["period_end"] = totals.PeriodEnd.String()
	vars["due_date"] = totals.DueDate.String()
	vars["total_hours"] = totals.TotalHoursBilled
	vars["total_hours_worked"] = totals.TotalHoursWorked
	vars["total_hours_counted"] = totals.TotalHoursCounted
	vars["total_hours_billed"] = totals.TotalHoursBilled
	vars["counted_amount"] = totals.CountedAmount
	vars["billed_amount"] = totals.BilledAmount
	vars["total_fixed_fees"] = totals.TotalFixedFees
	vars["total_discounts"] = totals.TotalDiscounts
	vars["overage_hours"] = totals.OverageHours
	vars["overage_discount"] = totals.OverageDiscount
	vars["subtotal_amount"] = totals.SubtotalAmount
	vars["tax_amount"] = totals.TaxAmount
	vars["total_amount"] = totals.TotalAmount

	return vars
}
