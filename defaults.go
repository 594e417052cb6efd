package applaunch

import (
	"github.com/giantswarm/applaunch/internal/process"
	"github.com/giantswarm/applaunch/internal/readiness"
)

// Default configuration values. These constants are exported so callers can
// reference the defaults when building options relative to them (e.g.,
// 3 * DefaultWaitTimeout on slow CI).
const (
	// DefaultWaitTimeout is the overall deadline of WaitForPort, and also the
	// connect timeout of each attempt.
	DefaultWaitTimeout = readiness.DefaultTimeout

	// DefaultRetryInterval is the delay between two connection attempts.
	DefaultRetryInterval = readiness.DefaultRetryInterval

	// DefaultMaxRetries is the number of failed connection attempts after
	// which WaitForPort gives up with ErrRetriesExhausted.
	DefaultMaxRetries = readiness.DefaultMaxRetries

	// DefaultStopTimeout is how long Dispose waits after SIGTERM before it
	// kills the process.
	DefaultStopTimeout = process.DefaultStopTimeout
)
