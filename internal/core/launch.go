package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/giantswarm/applaunch/internal/process"
	"github.com/giantswarm/applaunch/internal/readiness"
)

// URLFunc resolves the application URL once the process has been spawned.
// It receives the live handle, so it can read the PID or ID.
type URLFunc func(ctx context.Context, h *process.Handle) (string, error)

// LaunchConfig holds everything one launch needs once the launcher
// definition has been resolved to a command line and an environment.
type LaunchConfig struct {
	Process process.Config
	URL     URLFunc
	Wait    readiness.PortOptions
}

func (c LaunchConfig) validate() error {
	var errs []error

	if c.URL == nil {
		errs = append(errs, ErrMissingURL)
	}
	if c.Wait.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("wait timeout must be greater than 0, got %s", c.Wait.Timeout))
	}
	if c.Wait.RetryInterval <= 0 {
		errs = append(errs, fmt.Errorf("wait retry interval must be greater than 0, got %s", c.Wait.RetryInterval))
	}
	if c.Wait.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("wait max retries must not be negative, got %d", c.Wait.MaxRetries))
	}

	return errors.Join(errs...)
}

// Launch spawns the process, assigns its URL and waits until the URL's port
// accepts connections. On success the returned handle is running and ready.
//
// Nothing is spawned when the configuration is invalid. Once spawned, any
// failure disposes the process before returning; the returned error then
// carries both the cause and the dispose outcome.
func Launch(ctx context.Context, cfg LaunchConfig) (*process.Handle, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid launch config: %w", err)
	}
	if cfg.Process.Logger == nil {
		cfg.Process.Logger = Logger()
	}

	h := process.New(cfg.Process)
	if err := h.Launch(ctx); err != nil {
		return nil, err
	}
	log := cfg.Process.Logger.With("process", h.Name(), "id", h.ID())

	raw, err := cfg.URL(ctx, h)
	if err != nil {
		return nil, disposeAfter(h, fmt.Errorf("resolve %s url: %w", h.Name(), err))
	}
	u, port, err := ParseURL(raw)
	if err != nil {
		return nil, disposeAfter(h, err)
	}
	if err := h.SetURL(u); err != nil {
		return nil, disposeAfter(h, err)
	}

	wait := cfg.Wait
	wait.ProcessExited = h.Exited()
	if wait.Logger == nil {
		wait.Logger = log
	}
	if err := readiness.WaitForPort(ctx, port, wait); err != nil {
		return nil, disposeAfter(h, fmt.Errorf("%s not ready: %w", h.Name(), err))
	}

	log.Info("process ready", "pid", h.PID(), "url", u.String())
	return h, nil
}

// disposeAfter disposes h after a failed launch step and joins the dispose
// outcome with cause.
func disposeAfter(h *process.Handle, cause error) error {
	if err := h.Dispose(); err != nil {
		return errors.Join(cause, fmt.Errorf("dispose after failed launch: %w", err))
	}
	return cause
}

// ParseURL parses an application URL and returns it with the port to probe.
// The URL must be absolute and have a host. Without an explicit port the
// scheme's well-known port is used (e.g., 80 for http).
func ParseURL(raw string) (*url.URL, int, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("%w %q: %w", ErrInvalidURL, raw, err)
	}
	if !u.IsAbs() || u.Hostname() == "" {
		return nil, 0, fmt.Errorf("%w %q: must be absolute with a host", ErrInvalidURL, raw)
	}

	portStr := u.Port()
	if portStr == "" {
		port, err := net.LookupPort("tcp", u.Scheme)
		if err != nil {
			return nil, 0, fmt.Errorf("%w %q: no port and no default for scheme %q: %w", ErrInvalidURL, raw, u.Scheme, err)
		}
		return u, port, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return nil, 0, fmt.Errorf("%w %q: port %q out of range", ErrInvalidURL, raw, portStr)
	}
	return u, port, nil
}
