package driver

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrClosed is returned by any operation attempted after Close has completed.
	ErrClosed = errors.New("driver closed")

	// ErrNotStarted is returned by operations that require a running session.
	ErrNotStarted = errors.New("driver not started")
)

// StartupError indicates the engine process exited before signaling
// readiness, or the READY sentinel was not observed within the startup
// timeout.
type StartupError struct {
	// Stderr holds whatever the engine wrote to its standard error stream
	// before the failure, when available.
	Stderr string
	Err    error
}

func (e *StartupError) Error() string {
	msg := fmt.Sprintf("engine startup failed: %v", e.Err)
	if e.Stderr != "" {
		msg += fmt.Sprintf(" (stderr: %s)", e.Stderr)
	}
	return msg
}

func (e *StartupError) Unwrap() error { return e.Err }

// ProtocolError carries an engine-reported error response, or an
// element-not-found condition where the contract requires raising rather
// than returning a falsy value.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("engine error: %s", e.Message)
}

// TimeoutError indicates no response was observed within the per-command
// timeout. Unlike ProtocolError it signals indeterminate state: the engine
// may still complete the operation after the controller has given up.
type TimeoutError struct {
	Action  string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %q timed out after %s", e.Action, e.Timeout)
}

// GenerationError indicates a non-zero exit from a one-shot script
// execution outside the persistent session (the PDF fallback path).
type GenerationError struct {
	ExitCode int
	Stderr   string
}

func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("engine script exited with code %d", e.ExitCode)
	if e.Stderr != "" {
		msg += fmt.Sprintf(": %s", e.Stderr)
	}
	return msg
}
