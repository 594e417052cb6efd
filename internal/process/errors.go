package process

import (
	"fmt"
	"syscall"

	"github.com/giantswarm/applaunch/internal/sentinel"
)

const (
	// ErrEmptyCommand is returned by Launch when the command string contains
	// no executable token.
	ErrEmptyCommand = sentinel.Error("command must not be empty")

	// ErrSpawn wraps the operating system error returned when the process
	// could not be created (e.g., executable not found, permission denied).
	ErrSpawn = sentinel.Error("spawn process")

	// ErrAlreadyLaunched is returned when Launch is called more than once.
	ErrAlreadyLaunched = sentinel.Error("process already launched")

	// ErrNotLaunched is returned by Dispose and SetURL before Launch succeeded.
	ErrNotLaunched = sentinel.Error("process not launched")

	// ErrAlreadyDisposed is returned by every Dispose call after the first,
	// regardless of how the first one ended.
	ErrAlreadyDisposed = sentinel.Error("process already disposed")

	// ErrNotReady is returned by URL before the orchestrator assigned one.
	ErrNotReady = sentinel.Error("process URL not resolved yet")

	// ErrURLAlreadySet is returned by SetURL on the second assignment.
	ErrURLAlreadySet = sentinel.Error("process URL already set")

	// ErrSignal is returned when the termination signal could not be
	// delivered for a reason other than the process being gone already.
	ErrSignal = sentinel.Error("deliver termination signal")

	// ErrKilled is returned by Dispose when the process ignored SIGTERM for
	// the whole stop timeout and had to be killed.
	ErrKilled = sentinel.Error("process killed after stop timeout")
)

// ExitError reports a process that exited with a non-zero status, or was
// terminated by a signal other than the SIGTERM sent by Dispose. A process
// killed after ignoring SIGTERM carries Signal SIGKILL.
type ExitError struct {
	Name   string
	PID    int
	Code   int            // -1 when the process was terminated by a signal
	Signal syscall.Signal // zero unless terminated by a signal
}

func (e *ExitError) Error() string {
	if e.Signal != 0 {
		return fmt.Sprintf("process %s (pid %d) terminated by signal %s", e.Name, e.PID, e.Signal)
	}
	return fmt.Sprintf("process %s (pid %d) exited with code %d", e.Name, e.PID, e.Code)
}
