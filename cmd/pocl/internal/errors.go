// Package internal holds CLI-only plumbing shared across cmd/pocl's
// subcommands: exit codes and error wrapping.
package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcflow-labs/pocl/internal/core"
)

const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitTimeout     = 3
	ExitCancelled   = 4
	ExitConfigError = 10
	ExitNoSolution  = 20
)

// CLIError is a CLI-specific error carrying the process exit code it
// should produce.
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error { return e.Cause }

// WrapError constructs a CLIError wrapping an existing error.
func WrapError(code int, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Cause: err}
}

// HandleError prints err to cmd's error output and returns the process
// exit code it maps to.
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.Canceled) {
		cmd.PrintErrln("search cancelled")
		return ExitCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		cmd.PrintErrln("search timed out")
		return ExitTimeout
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		cmd.PrintErrln("Error:", cliErr.Message)
		if cliErr.Cause != nil {
			cmd.PrintErrln("Cause:", cliErr.Cause)
		}
		return cliErr.Code
	}

	var pe *core.PlanningError
	if errors.As(err, &pe) {
		cmd.PrintErrln("Error:", pe.Error())
		if pe.Kind == core.ErrKindNoSolution {
			return ExitNoSolution
		}
		return ExitError
	}

	cmd.PrintErrln("Error:", err)
	return ExitError
}
