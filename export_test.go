package applaunch

import (
	"time"

	"github.com/giantswarm/applaunch/internal/readiness"
)

// RunConfigSnapshot holds a copy of runConfig fields for test assertions.
// Exported only via export_test.go so that the _test package can verify
// option closures actually mutate the config without accessing internals.
type RunConfigSnapshot struct {
	Dir           string
	LogDir        string
	StopTimeout   time.Duration
	Timeout       time.Duration
	RetryInterval time.Duration
	MaxRetries    int
	HasRunEnv     bool
}

// ApplyRunOptionsForTesting creates a default runConfig, applies the given
// options and returns a snapshot of the result.
func ApplyRunOptionsForTesting(opts ...RunOption) RunConfigSnapshot {
	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return RunConfigSnapshot{
		Dir:           cfg.dir,
		LogDir:        cfg.logDir,
		StopTimeout:   cfg.stopTimeout,
		Timeout:       cfg.wait.Timeout,
		RetryInterval: cfg.wait.RetryInterval,
		MaxRetries:    cfg.wait.MaxRetries,
		HasRunEnv:     cfg.env != nil,
	}
}

// ApplyWaitOptionsForTesting applies wait options to the default wait
// settings and returns timeout, retry interval and max retries.
func ApplyWaitOptionsForTesting(opts ...WaitOption) (time.Duration, time.Duration, int) {
	o := readiness.DefaultPortOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o.Timeout, o.RetryInterval, o.MaxRetries
}
