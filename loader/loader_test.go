package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/clinvoice/dates"
	"github.com/robinvdvleuten/clinvoice/parser"
)

func writeLedger(t *testing.T, dir, name, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
	assert.NoError(t, err)
}

func selectAll(t *testing.T) *dates.Selector {
	t.Helper()
	s, err := dates.NewSelector(nil)
	assert.NoError(t, err)
	return s
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeLedger(t, dir, "a.cli", `
2025.01.01
8h = Project Alpha
-2h = Discount
$50 = Fixed Fee
-$10 = Fixed Discount
- This is a note
* Another note
`)
	writeLedger(t, dir, "b.cli", `
2025.01.02
4h = Project Beta
`)
	writeLedger(t, dir, "c.cli", `
2025.02.01
6h = Project Gamma
`)
	writeLedger(t, dir, "ignored.txt", "2025.03.01\n1h = Not a ledger file\n")

	td, err := New().Load(context.Background(), dir, selectAll(t))
	assert.NoError(t, err)
	assert.Equal(t, 3, len(td.Entries))
	assert.Equal(t, 0, td.Warnings)

	jan1 := dates.Date{Year: 2025, Month: time.January, Day: 1}
	entries := td.Entries[jan1]
	assert.Equal(t, 6, len(entries))
	assert.Equal(t, parser.Time{Hours: 8, Description: "Project Alpha"}, entries[0].(parser.Time))
	assert.Equal(t, parser.Time{Hours: -2, Description: "Discount"}, entries[1].(parser.Time))
	assert.Equal(t, parser.FixedCost{Amount: 50, Description: "Fixed Fee"}, entries[2].(parser.FixedCost))
	assert.Equal(t, parser.FixedCost{Amount: -10, Description: "Fixed Discount"}, entries[3].(parser.FixedCost))
	assert.Equal(t, parser.Note{Text: "This is a note"}, entries[4].(parser.Note))
	assert.Equal(t, parser.Note{Text: "Another note"}, entries[5].(parser.Note))

	jan2 := dates.Date{Year: 2025, Month: time.January, Day: 2}
	assert.Equal(t, 1, len(td.Entries[jan2]))

	assert.Equal(t, []dates.Date{
		jan1,
		jan2,
		{Year: 2025, Month: time.February, Day: 1},
	}, td.Dates())
}

func TestLoaderCommentFiltering(t *testing.T) {
	dir := t.TempDir()
	writeLedger(t, dir, "comments.cli", `
# full line comment
2025.01.01
// also a full line comment
8h = Project Alpha # inline comment stays in the description
-2h = Discount // this one too
    # indented comment
    // indented comment
`)

	td, err := New().Load(context.Background(), dir, selectAll(t))
	assert.NoError(t, err)
	assert.Equal(t, 0, td.Warnings)

	entries := td.Entries[dates.Date{Year: 2025, Month: time.January, Day: 1}]
	assert.Equal(t, 2, len(entries))
	assert.Equal(t, "Project Alpha # inline comment stays in the description", entries[0].(parser.Time).Description)
	assert.Equal(t, "Discount // this one too", entries[1].(parser.Time).Description)
}

func TestLoaderDateSelection(t *testing.T) {
	dir := t.TempDir()
	writeLedger(t, dir, "a.cli", "2025.01.01\n8h = Alpha\n")
	writeLedger(t, dir, "b.cli", "2025.01.02\n4h = Beta\n")
	writeLedger(t, dir, "c.cli", "2025.02.01\n6h = Gamma\n")

	selector, err := dates.NewSelector([]string{"2025.01"})
	assert.NoError(t, err)

	td, err := New().Load(context.Background(), dir, selector)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(td.Entries))

	_, ok := td.Entries[dates.Date{Year: 2025, Month: time.February, Day: 1}]
	assert.False(t, ok, "february should be filtered out")
}

func TestLoaderMalformedLines(t *testing.T) {
	dir := t.TempDir()
	writeLedger(t, dir, "broken.cli", `
8h = entry before any date line
2025.01.01
invalid = Description
8h = Good entry
`)

	td, err := New().Load(context.Background(), dir, selectAll(t))
	assert.NoError(t, err, "per-line faults must not abort the load")
	assert.Equal(t, 2, td.Warnings)

	entries := td.Entries[dates.Date{Year: 2025, Month: time.January, Day: 1}]
	assert.Equal(t, 1, len(entries))
	assert.Equal(t, "Good entry", entries[0].(parser.Time).Description)
}

func TestLoaderDateAppearsMidFile(t *testing.T) {
	dir := t.TempDir()
	writeLedger(t, dir, "multi.cli", `
2025.01.01
2h = Morning
2025.01.02
3h = Next day
`)

	td, err := New().Load(context.Background(), dir, selectAll(t))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(td.Entries))
	assert.Equal(t, "Next day", td.Entries[dates.Date{Year: 2025, Month: time.January, Day: 2}][0].(parser.Time).Description)
}

func TestLoaderSameDateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeLedger(t, dir, "a.cli", "2025.01.01\n2h = From a\n")
	writeLedger(t, dir, "b.cli", "2025.01.01\n3h = From b\n")

	td, err := New().Load(context.Background(), dir, selectAll(t))
	assert.NoError(t, err)

	entries := td.Entries[dates.Date{Year: 2025, Month: time.January, Day: 1}]
	assert.Equal(t, 2, len(entries))
	assert.Equal(t, "From a", entries[0].(parser.Time).Description)
	assert.Equal(t, "From b", entries[1].(parser.Time).Description)
}

func TestLoaderCustomExtension(t *testing.T) {
	dir := t.TempDir()
	writeLedger(t, dir, "a.timesheet", "2025.01.01\n2h = Custom\n")
	writeLedger(t, dir, "b.cli", "2025.01.01\n3h = Default\n")

	td, err := New(WithExtension(".timesheet")).Load(context.Background(), dir, selectAll(t))
	assert.NoError(t, err)

	entries := td.Entries[dates.Date{Year: 2025, Month: time.January, Day: 1}]
	assert.Equal(t, 1, len(entries))
	assert.Equal(t, "Custom", entries[0].(parser.Time).Description)
}

func TestLoaderEmptyDirectory(t *testing.T) {
	td, err := New().Load(context.Background(), t.TempDir(), selectAll(t))
	assert.NoError(t, err)
	assert.Equal(t, 0, len(td.Entries))
}

func TestLoaderMissingDirectory(t *testing.T) {
	_, err := New().Load(context.Background(), "/non/existent/path", selectAll(t))
	assert.Error(t, err)
}
