package errors

import (
	"fmt"
	"os/exec"
	"strings"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *HookError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *HookError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// ValidationFailed summarises a list of validation messages into one error.
func ValidationFailed(path string, messages []string) *HookError {
	return New(ErrCodeConfigValidation,
		fmt.Sprintf("%d validation error(s):\n%s", len(messages), strings.Join(messages, "\n"))).
		WithDetail("path", path).
		WithDetail("count", len(messages))
}

// PinPolicyViolated creates an error for manifests that break the pin policy
func PinPolicyViolated(count int) *HookError {
	return New(ErrCodePinPolicy, fmt.Sprintf("%d pin policy violation(s)", count)).
		WithDetail("count", count)
}

// NotARepository creates an error for paths outside a git work tree
func NotARepository(dir string) *HookError {
	return New(ErrCodeNotARepository, fmt.Sprintf("not a git repository: %s", dir)).
		WithDetail("dir", dir)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *HookError {
	hookErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		hookErr = hookErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return hookErr
}
