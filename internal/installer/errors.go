package installer

import (
	"errors"
	"fmt"

	"reef-installer/internal/runner"
)

// Exit codes used when a failure carries no exit status of its own.
const (
	ExitFailure     = 1
	ExitInterrupted = runner.ExitInterrupted
)

// StepError terminates a pipeline. It names the step that failed and the exit
// code the process should end with.
type StepError struct {
	Step     string
	Index    int // 1-based position of the step in the pipeline
	Cause    error
	ExitCode int
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Index, e.Step, e.Cause)
}

func (e *StepError) Unwrap() error {
	return e.Cause
}

// ExitCodeError attaches the exit status of a failed command to an error.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("%v (exit code %d)", e.Err, e.Code)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// withExitCode wraps err with an exit status to propagate.
func withExitCode(code int, err error) error {
	return &ExitCodeError{Code: code, Err: err}
}

// warning marks a step outcome as non-fatal.
type warning struct {
	err error
}

func (w *warning) Error() string { return w.err.Error() }
func (w *warning) Unwrap() error { return w.err }

// Warning marks err as non-fatal: the pipeline logs it and moves on.
// A nil err stays nil.
func Warning(err error) error {
	if err == nil {
		return nil
	}
	return &warning{err: err}
}

// IsWarning reports whether err was marked with Warning.
func IsWarning(err error) bool {
	var w *warning
	return errors.As(err, &w)
}

// ExitCode maps err to a process exit status: 0 for nil, the code of a
// StepError or ExitCodeError in the chain, else ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var stepErr *StepError
	if errors.As(err, &stepErr) && stepErr.ExitCode != 0 {
		return stepErr.ExitCode
	}
	var codeErr *ExitCodeError
	if errors.As(err, &codeErr) && codeErr.Code != 0 {
		return codeErr.Code
	}
	return ExitFailure
}
