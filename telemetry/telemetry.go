// Package telemetry measures how long the stages of an invoice run take.
// Timers nest, so a report shows the load, aggregate and render phases
// with their sub-steps as a tree.
//
// Collectors travel through context so instrumented code needs no extra
// parameters; without a collector in the context every timer is a no-op.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/clinvoice/output"
)

type contextKey struct{}

// WithCollector returns a context carrying the collector.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// Start begins timing a stage using the collector in ctx, if any.
func Start(ctx context.Context, name string) Timer {
	if c, ok := ctx.Value(contextKey{}).(*Collector); ok && c != nil {
		return c.start(name)
	}
	return noopTimer{}
}

// Timer tracks one stage. Child opens a nested stage under it.
type Timer interface {
	End()
	Child(name string) Timer
}

// Collector records nested stage timings.
type Collector struct {
	mu   sync.Mutex
	root *span
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

type span struct {
	name     string
	start    time.Time
	end      time.Time
	parent   *span
	children []*span
}

func (c *Collector) start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &span{name: name, start: time.Now()}
	if c.root == nil {
		c.root = s
	} else {
		s.parent = c.root
		c.root.children = append(c.root.children, s)
	}
	return &spanTimer{collector: c, span: s}
}

type spanTimer struct {
	collector *Collector
	span      *span
}

func (t *spanTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()
	t.span.end = time.Now()
}

func (t *spanTimer) Child(name string) Timer {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	s := &span{name: name, start: time.Now(), parent: t.span}
	t.span.children = append(t.span.children, s)
	return &spanTimer{collector: t.collector, span: s}
}

type noopTimer struct{}

func (noopTimer) End()                    {}
func (noopTimer) Child(name string) Timer { return noopTimer{} }

// Report writes the timing tree to w. A nil styles renders plain text.
func (c *Collector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root == nil {
		return
	}

	name := c.root.name
	if styles != nil {
		name = styles.Keyword(name)
	}
	fmt.Fprintf(w, "%s: %s\n", name, formatDuration(c.root.duration()))

	for i, child := range c.root.children {
		writeSpan(w, child, "", i == len(c.root.children)-1, styles)
	}
}

func writeSpan(w io.Writer, s *span, prefix string, last bool, styles *output.Styles) {
	branch, extension := "├─ ", "│  "
	if last {
		branch, extension = "└─ ", "   "
	}

	duration := s.duration()
	timing := formatDuration(duration)
	if styles != nil {
		slow := duration >= 100*time.Millisecond
		if slow {
			timing = styles.Warning(timing)
		} else {
			timing = styles.Dim(timing)
		}
		fmt.Fprintf(w, "%s%s: %s\n", styles.Dim(prefix+branch), s.name, timing)
	} else {
		fmt.Fprintf(w, "%s%s%s: %s\n", prefix, branch, s.name, timing)
	}

	for i, child := range s.children {
		writeSpan(w, child, prefix+extension, i == len(s.children)-1, styles)
	}
}

func (s *span) duration() time.Duration {
	end := s.end
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(s.start)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
