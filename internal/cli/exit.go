package cli

import (
	"context"
	"errors"

	gserrors "github.com/matzehuels/gitstat/pkg/errors"
)

// ExitInterrupted is the shell convention for termination by SIGINT.
const ExitInterrupted = 130

// reportedError marks an error whose user-facing view was already printed.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case gserrors.IsAborted(err), errors.Is(err, context.Canceled):
		return ExitInterrupted
	}
	return 1
}

// Message returns the text main should print for err, or "" when nothing
// should be printed: the command already showed it, or the user interrupted.
func Message(err error) string {
	var re *reportedError
	if err == nil || errors.As(err, &re) || ExitCode(err) == ExitInterrupted {
		return ""
	}
	return gserrors.UserMessage(err)
}
