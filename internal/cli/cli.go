package cli

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError marks errors caused by bad command line input.
func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// Run executes the command line in args. Command output goes to outW, logs
// and diagnostics to errW. Every returned error is an *ExitError.
func Run(ctx context.Context, outW, errW io.Writer, args []string) error {
	root := newRootCmd(outW, errW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Cobra reports bad arguments and unknown commands as plain errors.
	if isUsage(err) {
		return usageError(err)
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

func isUsage(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "accepts ", "requires at least", "invalid argument", "flag needs an argument"} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
