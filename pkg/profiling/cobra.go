package profiling

import (
	"context"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
)

// CobraProfiler wires --timing and --cpu-profile into a command tree.
type CobraProfiler struct {
	cpuProfilePath string
	timing         bool

	cpuProfileFile *os.File
	timings        *Timings
}

func NewCobraProfiler() *CobraProfiler {
	return &CobraProfiler{}
}

// AddFlags registers the profiling flags as persistent flags of cmd.
func (p *CobraProfiler) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&p.cpuProfilePath, "cpu-profile", "", "Write a CPU profile to this file")
	cmd.PersistentFlags().BoolVar(&p.timing, "timing", false, "Print a timing breakdown to stderr on exit")
}

// PreRun starts profiling and attaches the timing recorder to the command's
// context. Call it from PersistentPreRunE.
func (p *CobraProfiler) PreRun(cmd *cobra.Command) error {
	if p.timing {
		p.timings = NewTimings()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(WithTimings(ctx, p.timings))
	}

	if p.cpuProfilePath != "" {
		f, err := os.Create(p.cpuProfilePath)
		if err != nil {
			return fmt.Errorf("create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("start CPU profile: %w", err)
		}
		p.cpuProfileFile = f
	}
	return nil
}

// PostRun stops profiling and prints the timing summary. It is safe to call
// when PreRun never ran.
func (p *CobraProfiler) PostRun(cmd *cobra.Command) {
	if p.cpuProfileFile != nil {
		pprof.StopCPUProfile()
		p.cpuProfileFile.Close()
		p.cpuProfileFile = nil
		fmt.Fprintf(cmd.ErrOrStderr(), "CPU profile written to %s\n", p.cpuProfilePath)
	}
	if p.timings != nil {
		p.timings.Summarize(cmd.ErrOrStderr())
		p.timings = nil
	}
}
