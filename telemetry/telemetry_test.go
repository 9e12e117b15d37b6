package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestStartWithoutCollector(t *testing.T) {
	timer := Start(context.Background(), "Generate")
	timer.Child("Load").End()
	timer.End()
	// No collector in context means no-op timers; nothing to assert
	// beyond not panicking.
}

func TestCollectorReport(t *testing.T) {
	collector := NewCollector()
	ctx := WithCollector(context.Background(), collector)

	root := Start(ctx, "Generate")
	load := root.Child("Load")
	load.Child("Parse timesheet.cli").End()
	load.End()
	root.Child("Aggregate").End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, 4, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "Generate: "))
	assert.True(t, strings.HasPrefix(lines[1], "├─ Load: "))
	assert.True(t, strings.HasPrefix(lines[2], "│  └─ Parse timesheet.cli: "))
	assert.True(t, strings.HasPrefix(lines[3], "└─ Aggregate: "))
}

func TestCollectorReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewCollector().Report(&buf, nil)
	assert.Equal(t, "", buf.String())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0ms", formatDuration(0))
	assert.Equal(t, "42ms", formatDuration(42*time.Millisecond))
	assert.Equal(t, "999ms", formatDuration(999*time.Millisecond))
	assert.Equal(t, "1.50s", formatDuration(1500*time.Millisecond))
}
