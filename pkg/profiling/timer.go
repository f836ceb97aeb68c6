// Package profiling records nested timing spans for a single command run.
package profiling

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Stopper ends a timed span.
type Stopper interface {
	Stop()
}

type span struct {
	name     string
	start    time.Time
	duration time.Duration
	children []*span
	timings  *Timings
}

func (s *span) Stop() {
	s.timings.end(s)
}

// Timings is a tree of spans rooted at the moment it was created.
type Timings struct {
	mu    sync.Mutex
	root  *span
	stack []*span
}

// NewTimings starts a new recording.
func NewTimings() *Timings {
	t := &Timings{}
	t.root = &span{name: "total", start: time.Now(), timings: t}
	t.stack = []*span{t.root}
	return t
}

// Start opens a span nested in the innermost open span. A nil Timings
// records nothing.
func (t *Timings) Start(name string) Stopper {
	if t == nil {
		return noopStopper{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	parent := t.stack[len(t.stack)-1]
	s := &span{name: name, start: time.Now(), timings: t}
	parent.children = append(parent.children, s)
	t.stack = append(t.stack, s)
	return s
}

func (t *Timings) end(s *span) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s.duration = time.Since(s.start)
	// Spans stopped out of order close everything opened after them.
	for i := len(t.stack) - 1; i > 0; i-- {
		if t.stack[i] == s {
			t.stack = t.stack[:i]
			return
		}
	}
}

// Summarize writes the span tree with each span's share of the total.
func (t *Timings) Summarize(w io.Writer) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	total := time.Since(t.root.start)
	fmt.Fprintf(w, "timings (%v total)\n", total.Round(100*time.Microsecond))
	for _, child := range t.root.children {
		printSpan(w, child, 1, total)
	}
}

func printSpan(w io.Writer, s *span, depth int, total time.Duration) {
	share := 0.0
	if total > 0 {
		share = float64(s.duration) / float64(total) * 100
	}
	duration := "running"
	if s.duration > 0 {
		duration = s.duration.Round(100 * time.Microsecond).String()
	}
	fmt.Fprintf(w, "%s- %s (%s, %.1f%%)\n", strings.Repeat("  ", depth), s.name, duration, share)
	for _, child := range s.children {
		printSpan(w, child, depth+1, total)
	}
}

type noopStopper struct{}

func (noopStopper) Stop() {}

type contextKey struct{}

// WithTimings attaches t to ctx.
func WithTimings(ctx context.Context, t *Timings) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext returns the Timings attached to ctx, or nil.
func FromContext(ctx context.Context) *Timings {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(contextKey{}).(*Timings)
	return t
}

// Start opens a span on the Timings attached to ctx, if any.
func Start(ctx context.Context, name string) Stopper {
	return FromContext(ctx).Start(name)
}
