package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/giantswarm/applaunch"
)

// waitFlags holds the readiness flags shared by run and wait-port.
type waitFlags struct {
	timeout    time.Duration
	interval   time.Duration
	maxRetries int
}

func (f *waitFlags) register(fs *pflag.FlagSet) {
	fs.DurationVar(&f.timeout, "timeout", applaunch.DefaultWaitTimeout, "Overall readiness deadline")
	fs.DurationVar(&f.interval, "interval", applaunch.DefaultRetryInterval, "Delay between connection attempts")
	fs.IntVar(&f.maxRetries, "max-retries", applaunch.DefaultMaxRetries, "Failed connection attempts before giving up")
}

// options validates the flags and converts them. The With* options panic on
// invalid values, so user input is checked here first.
func (f *waitFlags) options() ([]applaunch.WaitOption, error) {
	var errs []error
	if f.timeout <= 0 {
		errs = append(errs, fmt.Errorf("--timeout must be positive, got %v", f.timeout))
	}
	if f.interval <= 0 {
		errs = append(errs, fmt.Errorf("--interval must be positive, got %v", f.interval))
	}
	if f.maxRetries < 0 {
		errs = append(errs, fmt.Errorf("--max-retries must not be negative, got %d", f.maxRetries))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return []applaunch.WaitOption{
		applaunch.WithTimeout(f.timeout),
		applaunch.WithRetryInterval(f.interval),
		applaunch.WithMaxRetries(f.maxRetries),
	}, nil
}

// parseEnv converts KEY=VALUE pairs into a map. Later pairs win.
func parseEnv(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env %q: expected KEY=VALUE", pair)
		}
		env[key] = value
	}
	return env, nil
}
