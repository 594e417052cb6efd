package readiness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/giantswarm/applaunch/internal/sentinel"
)

// Sentinel errors returned by WaitReady. Callers can match these with
// errors.Is through wrapped error chains.
const (
	// ErrTimeout indicates the overall timeout elapsed before the check
	// succeeded.
	ErrTimeout = sentinel.Error("timeout")

	// ErrRetriesExhausted indicates the attempt budget was used up before
	// the check succeeded.
	ErrRetriesExhausted = sentinel.Error("retries limit reached")

	// ErrProcessExited indicates the process exited before becoming ready.
	ErrProcessExited = sentinel.Error("process exited before becoming ready")

	// ErrIntervalNotPositive indicates a non-positive retry interval.
	ErrIntervalNotPositive = sentinel.Error("retry interval must be positive")

	// ErrTimeoutNotPositive indicates a non-positive timeout.
	ErrTimeoutNotPositive = sentinel.Error("timeout must be positive")

	// ErrNegativeRetries indicates a negative attempt budget.
	ErrNegativeRetries = sentinel.Error("max retries must not be negative")
)

// ReadinessCheck performs one readiness attempt. The context is canceled when
// the overall wait settles (timeout, caller cancellation or process exit), so
// a slow attempt that lost the race returns promptly. The attempt parameter is
// 1-based. A nil return means ready; any error means not ready yet and is
// kept as the last error for diagnostics.
type ReadinessCheck func(ctx context.Context, attempt int) error

// WaitReadyConfig configures the wait behavior.
type WaitReadyConfig struct {
	Interval      time.Duration   // Delay between attempts
	Timeout       time.Duration   // Overall deadline, started once per call
	MaxAttempts   int             // Attempt budget; 0 means unlimited
	Name          string          // Subject of error messages (e.g., "port 8080")
	Logger        *slog.Logger    // Optional logger (defaults to slog.Default())
	ProcessExited <-chan struct{} // If non-nil, abort as soon as it closes
}

func (c WaitReadyConfig) validate() error {
	if c.Name == "" {
		return errors.New("wait ready: name must not be empty")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("wait for %s: %w", c.Name, ErrIntervalNotPositive)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("wait for %s: %w", c.Name, ErrTimeoutNotPositive)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("wait for %s: %w", c.Name, ErrNegativeRetries)
	}
	return nil
}

// WaitReady runs check until it succeeds, the attempt budget is exhausted,
// the timeout elapses, the process exits or ctx is canceled, whichever comes
// first.
//
// The retry loop and the deadline race inside the poller's select: the
// deadline does not wait for the current interval to elapse, and the attempt
// in flight is canceled through its context. A process exit cancels the same
// context, so an application that crashes mid-wait is reported immediately.
func WaitReady(ctx context.Context, cfg WaitReadyConfig, check ReadinessCheck) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	pollCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if cfg.ProcessExited != nil {
		settled := make(chan struct{})
		defer close(settled)
		go func() {
			select {
			case <-cfg.ProcessExited:
				cancel(ErrProcessExited)
			case <-settled:
			}
		}()
	}

	// attempt and lastErr are only touched by the condition function, which
	// the poller invokes sequentially, and read after the poller returned.
	attempt := 0
	var lastErr error
	err := wait.PollUntilContextTimeout(pollCtx, cfg.Interval, cfg.Timeout, true,
		func(attemptCtx context.Context) (bool, error) {
			if cfg.ProcessExited != nil {
				select {
				case <-cfg.ProcessExited:
					return false, ErrProcessExited
				default:
				}
			}

			attempt++
			checkErr := check(attemptCtx, attempt)
			if checkErr == nil {
				log.Debug("wait succeeded", "name", cfg.Name, "attempt", attempt)
				return true, nil
			}
			if attemptCtx.Err() != nil {
				// The wait already settled; the poller reports why.
				return false, nil
			}
			lastErr = checkErr
			log.Debug("readiness attempt failed", "name", cfg.Name, "attempt", attempt, "error", checkErr)
			if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
				return false, ErrRetriesExhausted
			}
			return false, nil
		})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrRetriesExhausted):
		return fmt.Errorf("wait for %s: %w after %d attempts: %w", cfg.Name, ErrRetriesExhausted, attempt, lastErr)
	case errors.Is(err, ErrProcessExited), errors.Is(context.Cause(pollCtx), ErrProcessExited):
		return fmt.Errorf("wait for %s: %w", cfg.Name, ErrProcessExited)
	case ctx.Err() != nil:
		return fmt.Errorf("wait for %s: %w", cfg.Name, context.Cause(ctx))
	case wait.Interrupted(err):
		if lastErr != nil {
			return fmt.Errorf("wait for %s: %w after %s: %w", cfg.Name, ErrTimeout, cfg.Timeout, lastErr)
		}
		return fmt.Errorf("wait for %s: %w after %s", cfg.Name, ErrTimeout, cfg.Timeout)
	default:
		return fmt.Errorf("wait for %s: %w", cfg.Name, err)
	}
}
