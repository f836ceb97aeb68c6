package command

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/hookcfg/errors"
)

func TestValidateGitRef(t *testing.T) {
	testCases := []struct {
		ref     string
		wantErr bool
	}{
		{"main", false},
		{"origin/main", false},
		{"feature/add-button", false},
		{"v1.2.3", false},
		{"HEAD~1", false},
		{"HEAD^", false},
		{"1111111111111111111111111111111111111111", false},
		{"", true},
		{"main; rm -rf /", true},
		{"my branch", true},
		{"--upload-pack=evil", true},
		{"main..HEAD", true},
	}

	for _, tc := range testCases {
		t.Run(tc.ref, func(t *testing.T) {
			err := validateGitRef(tc.ref)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSafeBuilder_Validate(t *testing.T) {
	sb := NewSafeBuilder()

	for _, hookType := range []string{"pre-commit", "commit-msg", "pre-push", "post-checkout"} {
		assert.NoError(t, sb.Validate("hookType", hookType), hookType)
	}
	for _, hookType := range []string{"manual", "commit", "pre-commit; rm -rf /", ""} {
		assert.Error(t, sb.Validate("hookType", hookType), hookType)
	}

	err := sb.Validate("unknownType", "value")
	assert.ErrorContains(t, err, "no validator")
}

func TestSafeBuilder_Build(t *testing.T) {
	sb := NewSafeBuilder()

	cmd, err := sb.Build(context.Background(), "git", "ls-files", "-z")
	require.NoError(t, err)
	assert.Equal(t, "git ls-files -z", cmd.String())
	assert.Equal(t, DefaultTimeout, cmd.timeout)

	_, err = sb.Build(context.Background(), "")
	assert.Error(t, err)
}

func TestCommand_WithTimeout(t *testing.T) {
	cmd, err := NewSafeBuilder().Build(context.Background(), "sleep", "1")
	require.NoError(t, err)

	assert.Equal(t, time.Second, cmd.WithTimeout(time.Second).timeout)
	assert.Equal(t, MaxTimeout, cmd.WithTimeout(20*time.Minute).timeout)
}

func TestCommand_Timeout(t *testing.T) {
	cmd, err := NewSafeBuilder().Build(context.Background(), "sleep", "10")
	require.NoError(t, err)

	start := time.Now()
	_, err = cmd.WithTimeout(100 * time.Millisecond).Output()
	assert.True(t, errors.Is(err, errors.ErrCodeCommandFailed))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCommand_Output(t *testing.T) {
	sb := NewSafeBuilder()

	t.Run("captures stdout", func(t *testing.T) {
		cmd, err := sb.Build(context.Background(), "sh", "-c", "pwd")
		require.NoError(t, err)

		dir := t.TempDir()
		out, err := cmd.InDir(dir).Output()
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(strings.TrimSpace(string(out)), filepath.Base(dir)))
	})

	t.Run("wraps failures", func(t *testing.T) {
		cmd, err := sb.Build(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
		require.NoError(t, err)

		_, err = cmd.Output()
		require.True(t, errors.Is(err, errors.ErrCodeCommandFailed), "got %v", err)
		hookErr, _ := errors.As(err)
		assert.Equal(t, 3, hookErr.Details["exitCode"])
		assert.Equal(t, "boom", hookErr.Details["stderr"])
	})
}

func TestCustomExecutor(t *testing.T) {
	var calls []string
	fake := ExecutorFunc(func(ctx context.Context, name string, args ...string) *exec.Cmd {
		calls = append(calls, strings.Join(append([]string{name}, args...), " "))
		return exec.CommandContext(ctx, "sh", "-c", "printf stub")
	})

	cmd, err := NewSafeBuilderWithExecutor(fake).Build(context.Background(), "git", "rev-parse", "HEAD")
	require.NoError(t, err)
	out, err := cmd.Output()
	require.NoError(t, err)

	assert.Equal(t, "stub", string(out))
	assert.Equal(t, []string{"git rev-parse HEAD"}, calls)
}
