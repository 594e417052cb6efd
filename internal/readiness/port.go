package readiness

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/giantswarm/applaunch/internal/sentinel"
)

// ErrInvalidPort indicates a port outside 1-65535.
const ErrInvalidPort = sentinel.Error("port out of range")

// Defaults for WaitForPort.
const (
	DefaultTimeout       = 10 * time.Second
	DefaultRetryInterval = 500 * time.Millisecond
	DefaultMaxRetries    = 5
	DefaultHost          = "localhost"
)

// PortOptions configures WaitForPort. Timeout, RetryInterval and MaxRetries
// are independent: a short Timeout can pre-empt the retry budget and a small
// retry budget can run out long before Timeout.
type PortOptions struct {
	// Timeout is the overall deadline and also the per-attempt connect
	// timeout.
	Timeout time.Duration

	// RetryInterval is the delay between connection attempts.
	RetryInterval time.Duration

	// MaxRetries is the number of failed attempts after which the wait gives
	// up with ErrRetriesExhausted. Zero fails immediately without dialing.
	MaxRetries int

	// Host defaults to "localhost".
	Host string

	// ProcessExited, if non-nil, aborts the wait with ErrProcessExited when
	// it closes.
	ProcessExited <-chan struct{}

	// Logger (optional, defaults to slog.Default())
	Logger *slog.Logger
}

// DefaultPortOptions returns the options WaitForPort uses when the caller
// overrides nothing: 10s timeout, 500ms retry interval, 5 retries.
func DefaultPortOptions() PortOptions {
	return PortOptions{
		Timeout:       DefaultTimeout,
		RetryInterval: DefaultRetryInterval,
		MaxRetries:    DefaultMaxRetries,
		Host:          DefaultHost,
	}
}

// WaitForPort returns once a TCP connection to host:port succeeds. Each
// probe connection is closed immediately.
func WaitForPort(ctx context.Context, port int, opts PortOptions) error {
	name := fmt.Sprintf("port %d", port)
	if port <= 0 || port > 65535 {
		return fmt.Errorf("wait for %s: %w", name, ErrInvalidPort)
	}
	if opts.MaxRetries == 0 {
		return fmt.Errorf("wait for %s: %w after 0 attempts", name, ErrRetriesExhausted)
	}

	host := opts.Host
	if host == "" {
		host = DefaultHost
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := &net.Dialer{Timeout: opts.Timeout}

	return WaitReady(ctx, WaitReadyConfig{
		Interval:      opts.RetryInterval,
		Timeout:       opts.Timeout,
		MaxAttempts:   opts.MaxRetries,
		Name:          name,
		Logger:        opts.Logger,
		ProcessExited: opts.ProcessExited,
	}, func(checkCtx context.Context, _ int) error {
		conn, err := dialer.DialContext(checkCtx, "tcp", addr)
		if err != nil {
			return err
		}
		_ = conn.Close() // best-effort close of the probe connection
		return nil
	})
}
