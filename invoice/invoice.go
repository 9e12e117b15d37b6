// Package invoice aggregates parsed ledger entries into billable figures.
//
// Aggregation is a total function: it has no error states and operates on
// whatever entries survived parsing. Hour sums use float32, amounts use
// float64, and no rounding happens here; display rounding is the
// renderer's concern.
package invoice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robinvdvleuten/clinvoice/dates"
	"github.com/robinvdvleuten/clinvoice/loader"
	"github.com/robinvdvleuten/clinvoice/parser"
)

// Config carries the externally supplied billing parameters. Today is
// injected rather than read from the clock so that due dates and empty
// periods are reproducible under test.
type Config struct {
	HourlyRate float64

	// CapHoursPerDay limits billed hours per day; 0 disables the cap.
	CapHoursPerDay float32

	// CapHoursPerInvoice limits counted hours per invoice; 0 disables
	// the cap.
	CapHoursPerInvoice float32

	TaxPercent  float64
	PaymentDays int
	Today       dates.Date
}

// DayRow is one invoice line: a day's billed hours, cost and combined
// description.
type DayRow struct {
	Index       int
	Date        dates.Date
	Hours       float32
	WorkedHours float32
	Cost        float64
	Description string
}

// Totals is the immutable result of aggregating a ledger over a billing
// period. It is recomputed fresh each run and never mutated afterwards.
type Totals struct {
	Days []DayRow

	// TotalHoursWorked is the uncapped sum of all time entries.
	TotalHoursWorked float32

	// TotalHoursCounted is the sum of day hours after the per-day cap.
	TotalHoursCounted float32

	// TotalHoursBilled is TotalHoursCounted minus the invoice overage.
	TotalHoursBilled float32

	CountedAmount   float64
	BilledAmount    float64
	TotalFixedFees  float64
	TotalDiscounts  float64
	OverageHours    float32
	OverageDiscount float64
	SubtotalAmount  float64
	TaxAmount       float64
	TotalAmount     float64

	PeriodStart dates.Date
	PeriodEnd   dates.Date
	DueDate     dates.Date
}

// Compute walks the ledger chronologically and derives the invoice
// figures under the capping, overage and tax rules in cfg.
func Compute(td *loader.TimeData, cfg Config) Totals {
	totals := Totals{}
	days := td.Dates()

	for i, date := range days {
		var dayHours float32
		var descriptions []string

		for _, entry := range td.Entries[date] {
			switch e := entry.(type) {
			case parser.Time:
				dayHours += e.Hours
				descriptions = append(descriptions, e.Description)
			case parser.FixedCost:
				if e.Amount >= 0 {
					totals.TotalFixedFees += float64(e.Amount)
				} else {
					totals.TotalDiscounts += float64(e.Amount)
				}
				descriptions = append(descriptions, e.Description)
			case parser.Note:
				descriptions = append(descriptions, e.Text)
			}
		}

		totals.TotalHoursWorked += dayHours

		description := strings.Join(descriptions, "; ")
		billedHours := dayHours
		if cfg.CapHoursPerDay > 0 && dayHours > cfg.CapHoursPerDay {
			billedHours = cfg.CapHoursPerDay
			description = fmt.Sprintf("%s (%s worked, %s billed)",
				description, FormatHours(dayHours), FormatHours(billedHours))
		}

		totals.TotalHoursCounted += billedHours
		totals.Days = append(totals.Days, DayRow{
			Index:       i + 1,
			Date:        date,
			Hours:       billedHours,
			WorkedHours: dayHours,
			Cost:        float64(billedHours) * cfg.HourlyRate,
			Description: description,
		})
	}

	totals.CountedAmount = float64(totals.TotalHoursCounted) * cfg.HourlyRate

	if cfg.CapHoursPerInvoice > 0 && totals.TotalHoursCounted > cfg.CapHoursPerInvoice {
		totals.OverageHours = totals.TotalHoursCounted - cfg.CapHoursPerInvoice
		totals.OverageDiscount = -(float64(totals.OverageHours) * cfg.HourlyRate)
	}

	totals.TotalHoursBilled = totals.TotalHoursCounted - totals.OverageHours
	totals.BilledAmount = float64(totals.TotalHoursBilled) * cfg.HourlyRate

	totals.SubtotalAmount = totals.BilledAmount + totals.TotalFixedFees + totals.TotalDiscounts
	totals.TaxAmount = totals.SubtotalAmount * cfg.TaxPercent / 100
	totals.TotalAmount = totals.SubtotalAmount + totals.TaxAmount

	if len(days) > 0 {
		totals.PeriodStart = days[0]
		totals.PeriodEnd = days[len(days)-1]
	} else {
		totals.PeriodStart = cfg.Today
		totals.PeriodEnd = cfg.Today
	}
	totals.DueDate = cfg.Today.AddDays(cfg.PaymentDays)

	return totals
}

// FormatHours renders an hour count in its shortest float32 form, e.g.
// "8", "7.5".
func FormatHours(hours float32) string {
	return strconv.FormatFloat(float64(hours), 'g', -1, 32)
}
