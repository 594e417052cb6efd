package applaunch

import (
	"context"
	"fmt"
	"time"

	"github.com/giantswarm/applaunch/internal/readiness"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("applaunch: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("applaunch: %s must not be empty", name))
	}
}

// WaitOption configures a readiness wait, either directly through
// WaitForPort or for a launch through WithWaitOptions.
//
// The With* functions panic on invalid input (non-positive durations,
// negative retry counts). Option values are typically constants, so an
// invalid value indicates a programmer error rather than a runtime condition.
type WaitOption func(*readiness.PortOptions)

// WithTimeout sets the overall deadline of the wait. It is also the connect
// timeout of each attempt. The deadline starts once per wait and races the
// retry loop: it fires even in the middle of a retry interval.
//
// Default: 10 seconds.
//
// Panics if d <= 0.
func WithTimeout(d time.Duration) WaitOption {
	requirePositive("wait timeout", d)
	return func(o *readiness.PortOptions) {
		o.Timeout = d
	}
}

// WithRetryInterval sets the delay between two connection attempts.
//
// Default: 500 milliseconds.
//
// Panics if d <= 0.
func WithRetryInterval(d time.Duration) WaitOption {
	requirePositive("retry interval", d)
	return func(o *readiness.PortOptions) {
		o.RetryInterval = d
	}
}

// WithMaxRetries sets the number of failed connection attempts after which
// the wait gives up with ErrRetriesExhausted. Zero fails immediately without
// attempting a connection.
//
// Default: 5.
//
// Panics if n < 0.
func WithMaxRetries(n int) WaitOption {
	if n < 0 {
		panic(fmt.Sprintf("applaunch: max retries must not be negative, got %d", n))
	}
	return func(o *readiness.PortOptions) {
		o.MaxRetries = n
	}
}

// RunOption configures a single Launcher.Run call.
type RunOption func(*runConfig)

// runConfig holds the per-run settings collected from RunOptions.
type runConfig struct {
	dir         string
	logDir      string
	stopTimeout time.Duration
	wait        readiness.PortOptions

	// env is a func(context.Context, C) (map[string]string, error) for the
	// launcher's context type C. Run checks the type.
	env any
}

func defaultRunConfig() runConfig {
	return runConfig{
		stopTimeout: DefaultStopTimeout,
		wait:        readiness.DefaultPortOptions(),
	}
}

// WithDir sets the working directory of the process. By default the process
// inherits the working directory of the caller.
//
// Panics if dir is empty.
func WithDir(dir string) RunOption {
	requireNonEmpty("working directory", dir)
	return func(c *runConfig) {
		c.dir = dir
	}
}

// WithRunEnv adds the innermost environment layer. Its variables win over
// the launcher's own Env and over every launcher in the Extends chain. The
// context type C must match the launcher's; Run returns an error otherwise.
//
// Panics if fn is nil.
func WithRunEnv[C any](fn func(ctx context.Context, c C) (map[string]string, error)) RunOption {
	if fn == nil {
		panic("applaunch: run env function must not be nil")
	}
	return func(c *runConfig) {
		c.env = fn
	}
}

// WithLogDir writes the process stdout and stderr to
// <dir>/<name>-<id>-stdout.log and -stderr.log. The directory is created if
// needed.
//
// Panics if dir is empty.
func WithLogDir(dir string) RunOption {
	requireNonEmpty("log directory", dir)
	return func(c *runConfig) {
		c.logDir = dir
	}
}

// WithWaitOptions customizes the readiness wait performed by Run.
func WithWaitOptions(opts ...WaitOption) RunOption {
	return func(c *runConfig) {
		for _, opt := range opts {
			opt(&c.wait)
		}
	}
}

// WithStopTimeout sets how long Dispose waits after SIGTERM before it kills
// the process.
//
// Default: 10 seconds.
//
// Panics if d <= 0.
func WithStopTimeout(d time.Duration) RunOption {
	requirePositive("stop timeout", d)
	return func(c *runConfig) {
		c.stopTimeout = d
	}
}
