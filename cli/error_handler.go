package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/hookcfg/errors"
	"github.com/grovetools/hookcfg/theme"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates an error handler writing to stderr.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// hints suggest a next step for error codes users can act on.
var hints = map[errors.ErrorCode]string{
	errors.ErrCodeConfigNotFound:  "Create .pre-commit-config.yaml or pass --manifest.",
	errors.ErrCodeConfigInvalid:   "Check the file for YAML syntax errors.",
	errors.ErrCodeSchemaInvalid:   "Run 'hookcfg schema' to see the expected structure.",
	errors.ErrCodePinPolicy:       "Pin revisions to release tags, or relax the pins section of .hookcfg.yml.",
	errors.ErrCodeCommitMessage:   "Use a header like 'feat(scope): add something'.",
	errors.ErrCodeGitNotInstalled: "Install git and make sure it is on PATH.",
	errors.ErrCodeNotARepository:  "Run the command inside a git work tree.",
}

// Handle prints err with a hint for its code and returns it unchanged.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	t := theme.DefaultTheme

	message := err.Error()
	hookErr, isHookErr := errors.As(err)
	if isHookErr {
		message = hookErr.Message
		if hookErr.Cause != nil {
			message += ": " + hookErr.Cause.Error()
		}
	}
	fmt.Fprintf(h.Out, "%s %s\n", t.Error.Render(theme.IconError), message)

	if hint, ok := hints[errors.GetCode(err)]; ok {
		fmt.Fprintln(h.Out, t.Muted.Render(hint))
	}
	if code := errors.GetCode(err); code == errors.ErrCodeCommandFailed && isHookErr {
		if stderr, ok := hookErr.Details["stderr"]; ok {
			fmt.Fprintln(h.Out, t.Muted.Render(fmt.Sprint(stderr)))
		}
	}

	if h.Verbose && isHookErr {
		fmt.Fprintf(h.Out, "\nError details:\n%s\n", hookErr.ToJSON())
	}
	return err
}

// ExitCode maps an error to the process exit status: 1 for findings such
// as invalid manifests or commit messages, 2 for usage and environment
// problems.
func ExitCode(err error) int {
	switch errors.GetCode(err) {
	case "":
		if err == nil {
			return 0
		}
		return 1
	case errors.ErrCodeInvalidInput, errors.ErrCodeGitNotInstalled,
		errors.ErrCodeNotARepository, errors.ErrCodeInternal:
		return 2
	default:
		return 1
	}
}
