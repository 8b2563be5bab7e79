package stdio

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotStarted indicates Send was called before Start or after Cleanup.
var ErrNotStarted = errors.New("subprocess not started")

// SpawnError indicates the child process could not be launched.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates no reply line arrived in time.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no reply from subprocess within %v", e.Duration)
}

// Timeout reports true, matching net.Error.
func (e *TimeoutError) Timeout() bool { return true }

// ClosedError indicates the child's streams are closed, usually because it exited.
type ClosedError struct {
	PID int
	Err error
}

func (e *ClosedError) Error() string {
	return fmt.Sprintf("subprocess channel closed (pid %d): %v", e.PID, e.Err)
}

func (e *ClosedError) Unwrap() error {
	return e.Err
}

// ProtocolError indicates the child replied with a line that is not JSON.
type ProtocolError struct {
	Line string
	Err  error
}

func (e *ProtocolError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid JSON reply from subprocess: %q", e.Line)
	}
	return fmt.Sprintf("invalid JSON reply from subprocess: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
