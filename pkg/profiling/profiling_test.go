package profiling

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimings_Nesting(t *testing.T) {
	timings := NewTimings()

	outer := timings.Start("load")
	inner := timings.Start("parse")
	inner.Stop()
	outer.Stop()
	timings.Start("plan").Stop()

	var buf bytes.Buffer
	timings.Summarize(&buf)
	out := buf.String()

	assert.Contains(t, out, "timings (")
	assert.Contains(t, out, "  - load (")
	assert.Contains(t, out, "    - parse (")
	assert.Contains(t, out, "  - plan (")
}

func TestTimings_OutOfOrderStop(t *testing.T) {
	timings := NewTimings()

	outer := timings.Start("outer")
	timings.Start("left open")
	outer.Stop()
	timings.Start("sibling").Stop()

	require.Len(t, timings.root.children, 2)
	assert.Equal(t, "sibling", timings.root.children[1].name)
}

func TestNilTimings(t *testing.T) {
	var timings *Timings
	assert.NotPanics(t, func() {
		timings.Start("x").Stop()
		timings.Summarize(&bytes.Buffer{})
		Start(context.Background(), "y").Stop()
	})
	assert.Nil(t, FromContext(context.Background()))
}

func TestCobraProfiler(t *testing.T) {
	p := NewCobraProfiler()
	var ran bool
	cmd := &cobra.Command{
		Use: "test",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return p.PreRun(cmd)
		},
		Run: func(cmd *cobra.Command, args []string) {
			ran = FromContext(cmd.Context()) != nil
			Start(cmd.Context(), "work").Stop()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			p.PostRun(cmd)
		},
	}
	p.AddFlags(cmd)

	profile := filepath.Join(t.TempDir(), "cpu.out")
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--timing", "--cpu-profile", profile})
	require.NoError(t, cmd.Execute())

	assert.True(t, ran)
	assert.FileExists(t, profile)
	assert.Contains(t, stderr.String(), "CPU profile written to "+profile)
	assert.Contains(t, stderr.String(), "- work (")
}
