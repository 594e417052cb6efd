package applaunch

import (
	"github.com/giantswarm/applaunch/internal/core"
	"github.com/giantswarm/applaunch/internal/process"
	"github.com/giantswarm/applaunch/internal/readiness"
)

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain comparison.
const (
	// ErrEmptyCommand is returned by Run when the resolved command contains
	// no executable.
	ErrEmptyCommand = process.ErrEmptyCommand

	// ErrSpawn is returned by Run when the operating system could not create
	// the process. The OS error is kept in the chain.
	ErrSpawn = process.ErrSpawn

	// ErrNotReady is returned by Process.URL before the URL was resolved.
	ErrNotReady = process.ErrNotReady

	// ErrAlreadyDisposed is returned by every Dispose call after the first.
	ErrAlreadyDisposed = process.ErrAlreadyDisposed

	// ErrNotLaunched is returned by Dispose on a process that never started.
	ErrNotLaunched = process.ErrNotLaunched

	// ErrAlreadyLaunched is returned when a process is launched twice.
	ErrAlreadyLaunched = process.ErrAlreadyLaunched

	// ErrURLAlreadySet is returned when a process URL is assigned twice.
	ErrURLAlreadySet = process.ErrURLAlreadySet

	// ErrSignal is returned by Dispose when SIGTERM could not be delivered to
	// a process that is still running.
	ErrSignal = process.ErrSignal

	// ErrKilled is returned by Dispose when the process ignored SIGTERM for
	// the stop timeout and was killed.
	ErrKilled = process.ErrKilled

	// ErrRetriesExhausted is returned by WaitForPort when every attempt in
	// the retry budget failed. Its message is "retries limit reached".
	ErrRetriesExhausted = readiness.ErrRetriesExhausted

	// ErrTimeout is returned by WaitForPort when the overall timeout elapsed
	// before a connection succeeded.
	ErrTimeout = readiness.ErrTimeout

	// ErrInvalidPort is returned by WaitForPort for a port outside 1-65535.
	ErrInvalidPort = readiness.ErrInvalidPort

	// ErrProcessExited is returned by Run when the application exited while
	// its port was being awaited.
	ErrProcessExited = readiness.ErrProcessExited

	// ErrInvalidURL is returned by Run when the resolved URL is not absolute,
	// has no host, or has no usable port.
	ErrInvalidURL = core.ErrInvalidURL

	// ErrMissingCommand is returned by Run when the launcher has no Command.
	ErrMissingCommand = core.ErrMissingCommand

	// ErrMissingURL is returned by Run when the launcher has no URL.
	ErrMissingURL = core.ErrMissingURL
)

// ExitError reports a process that exited with a non-zero status or was
// terminated by a signal other than the SIGTERM sent by Dispose. Use errors.As to inspect
// the exit code.
type ExitError = process.ExitError
