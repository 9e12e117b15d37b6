package parser

// Entry is a single parsed ledger line. It is a closed sum type: the only
// implementations are Time, FixedCost and Note. Entries carry no date; the
// loader associates them with the current date line positionally.
type Entry interface {
	// Kind returns the entry kind name for display and logging.
	Kind() string

	entry()
}

// Time is a signed number of billable hours. Negative values are
// corrections to prior entries on the same invoice.
type Time struct {
	Hours       float32
	Description string
}

var _ Entry = Time{}

func (Time) Kind() string { return "time" }
func (Time) entry()       {}

// FixedCost is a flat amount independent of the hourly rate. Positive
// amounts are fees, negative amounts are discounts.
type FixedCost struct {
	Amount      float32
	Description string
}

var _ Entry = FixedCost{}

func (FixedCost) Kind() string { return "fixed-cost" }
func (FixedCost) entry()       {}

// Note is a non-billable annotation that still appears on the invoice's
// day description.
type Note struct {
	Text string
}

var _ Entry = Note{}

func (Note) Kind() string { return "note" }
func (Note) entry()       {}
