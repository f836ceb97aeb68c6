package logging

import (
	"context"
	"io"
	"os"
	"sync"
)

// output is where pretty and structured lines go when no command writer
// is attached. The CLI points it at io.Discard under --json so stderr
// carries nothing but the final error.
type output struct {
	mu sync.RWMutex
	w  io.Writer
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.w.Write(p)
}

func (o *output) swap(w io.Writer) io.Writer {
	o.mu.Lock()
	defer o.mu.Unlock()
	prev := o.w
	o.w = w
	return prev
}

var globalOutput = &output{w: os.Stderr}

// SetGlobalOutput redirects global log output to w and returns the writer
// it replaces.
func SetGlobalOutput(w io.Writer) io.Writer {
	if w == nil {
		w = io.Discard
	}
	return globalOutput.swap(w)
}

// GetGlobalOutput returns the global log output. Loggers hold on to it, so
// later SetGlobalOutput calls reach them.
func GetGlobalOutput() io.Writer {
	return globalOutput
}

type writerKey struct{}

// WithWriter attaches the writer a command prints pretty lines to.
func WithWriter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, writerKey{}, w)
}

// GetWriter returns the writer attached by WithWriter, or the global output.
func GetWriter(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(writerKey{}).(io.Writer); ok && w != nil {
		return w
	}
	return globalOutput
}
