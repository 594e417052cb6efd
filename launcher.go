package applaunch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"testing"

	"github.com/giantswarm/applaunch/internal/core"
	"github.com/giantswarm/applaunch/internal/process"
)

// Compile-time interface satisfaction check.
var _ Process = (*processWrapper)(nil)

// Definition describes how to launch an application. C is the type of the
// launcher context, a value computed once per run and passed to every other
// function.
type Definition[C any] struct {
	// Extends inherits the environment of another launcher. The base
	// launcher's Env (and, recursively, its own base's) is evaluated with
	// this launcher's context and merged beneath this launcher's Env. When
	// Context is nil, the nearest base Context is used.
	Extends *Launcher[C]

	// Debug echoes the process stdout and stderr to the caller's.
	Debug bool

	// Name identifies the process in logs, errors and log file names.
	// Defaults to the base name of the executable.
	Name string

	// Context computes the launcher context. Optional; the zero value of C
	// is used when no launcher in the chain defines it.
	Context func(ctx context.Context) (C, error)

	// Env returns environment variables for the process. Optional.
	Env func(ctx context.Context, c C) (map[string]string, error)

	// Command returns the command line: an executable followed by
	// whitespace-separated arguments. Quotes are not interpreted. Required.
	Command func(ctx context.Context, c C, env map[string]string) (string, error)

	// URL returns the application URL once the process has been spawned.
	// Run waits until the URL's port accepts connections. A URL without an
	// explicit port uses its scheme's default port. Required.
	URL func(ctx context.Context, in URLInput[C]) (string, error)
}

// URLInput is passed to Definition.URL.
type URLInput[C any] struct {
	Context C
	Env     map[string]string

	// Process is the live, not yet ready process.
	Process Process
}

// Launcher runs applications from a Definition. A Launcher is immutable and
// safe for concurrent use; every Run spawns a new process.
type Launcher[C any] struct {
	def Definition[C]
}

// Define returns a Launcher for def. Define performs no I/O; a missing
// Command or URL is reported by Run.
func Define[C any](def Definition[C]) *Launcher[C] {
	return &Launcher[C]{def: def}
}

// Run launches the application and returns it once its URL's port accepts
// connections.
//
// The context bounds context resolution, environment resolution, command
// resolution and the readiness wait. It does not bound the process lifetime;
// call Dispose. If Run fails after the process was spawned, the process is
// disposed before Run returns.
//
//nolint:ireturn // Returns Process interface by design for testability (mockable).
func (l *Launcher[C]) Run(ctx context.Context, opts ...RunOption) (Process, error) {
	rc := defaultRunConfig()
	for _, opt := range opts {
		opt(&rc)
	}

	if l.def.Command == nil {
		return nil, fmt.Errorf("run %s: %w", l.name(), ErrMissingCommand)
	}
	if l.def.URL == nil {
		return nil, fmt.Errorf("run %s: %w", l.name(), ErrMissingURL)
	}

	launcherCtx, err := l.resolveContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("run %s: resolve context: %w", l.name(), err)
	}

	layers, err := l.envLayers(launcherCtx, rc.env)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", l.name(), err)
	}
	env, err := core.ResolveEnv(ctx, layers...)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", l.name(), err)
	}

	command, err := l.def.Command(ctx, launcherCtx, env)
	if err != nil {
		return nil, fmt.Errorf("run %s: resolve command: %w", l.name(), err)
	}

	cfg := core.LaunchConfig{
		Process: process.Config{
			Name:        l.def.Name,
			Command:     command,
			Env:         env,
			Dir:         rc.dir,
			LogDir:      rc.logDir,
			StopTimeout: rc.stopTimeout,
		},
		URL: func(ctx context.Context, h *process.Handle) (string, error) {
			return l.def.URL(ctx, URLInput[C]{
				Context: launcherCtx,
				Env:     env,
				Process: &processWrapper{h: h},
			})
		},
		Wait: rc.wait,
	}
	if l.def.Debug {
		cfg.Process.Stdout = os.Stdout
		cfg.Process.Stderr = os.Stderr
	}

	h, err := core.Launch(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", l.name(), err)
	}
	return &processWrapper{h: h}, nil
}

// RunTB calls Run with a context canceled when the test ends and registers
// Dispose with tb.Cleanup. It fails the test immediately if Run fails. A
// Dispose failure at cleanup is reported with tb.Errorf, unless the test
// already disposed the process itself.
//
//nolint:ireturn // Returns Process interface by design for testability (mockable).
func (l *Launcher[C]) RunTB(tb testing.TB, opts ...RunOption) Process {
	tb.Helper()

	p, err := l.Run(tb.Context(), opts...)
	if err != nil {
		tb.Fatalf("launch application: %v", err)
	}
	tb.Cleanup(func() {
		if err := p.Dispose(); err != nil && !errors.Is(err, ErrAlreadyDisposed) {
			tb.Errorf("dispose application: %v", err)
		}
	})
	return p
}

func (l *Launcher[C]) name() string {
	if l.def.Name != "" {
		return l.def.Name
	}
	return "application"
}

// resolveContext calls the nearest Context in the Extends chain.
func (l *Launcher[C]) resolveContext(ctx context.Context) (C, error) {
	for cur := l; cur != nil; cur = cur.def.Extends {
		if cur.def.Context != nil {
			return cur.def.Context(ctx)
		}
	}
	var zero C
	return zero, nil
}

// envLayers returns the environment layers from the outermost base to the
// per-run layer, all bound to the launcher context c.
func (l *Launcher[C]) envLayers(c C, runEnv any) ([]core.EnvLayer, error) {
	var chain []*Launcher[C]
	for cur := l; cur != nil; cur = cur.def.Extends {
		chain = append(chain, cur)
	}

	layers := make([]core.EnvLayer, 0, len(chain)+1)
	for i := len(chain) - 1; i >= 0; i-- {
		layers = append(layers, bindEnv(chain[i].def.Env, c))
	}

	if runEnv != nil {
		fn, ok := runEnv.(func(context.Context, C) (map[string]string, error))
		if !ok {
			var zero C
			return nil, fmt.Errorf("run env expects launcher context %T, got %T", zero, runEnv)
		}
		layers = append(layers, bindEnv(fn, c))
	}
	return layers, nil
}

func bindEnv[C any](fn func(context.Context, C) (map[string]string, error), c C) core.EnvLayer {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context) (map[string]string, error) {
		return fn(ctx, c)
	}
}

// processWrapper wraps process.Handle to implement the Process interface.
//
// The handle is stored as a named (unexported) field rather than embedded to
// prevent callers from using type assertions to reach Launch or SetURL.
type processWrapper struct {
	h *process.Handle
}

// ID implements Process.
func (w *processWrapper) ID() string { return w.h.ID() }

// PID implements Process.
func (w *processWrapper) PID() int { return w.h.PID() }

// URL implements Process.
func (w *processWrapper) URL() (*url.URL, error) { return w.h.URL() }

// Exited implements Process.
func (w *processWrapper) Exited() <-chan struct{} { return w.h.Exited() }

// Err implements Process.
func (w *processWrapper) Err() error { return w.h.Err() }

// Dispose implements Process.
func (w *processWrapper) Dispose() error { return w.h.Dispose() }

// Close implements Process.
func (w *processWrapper) Close() error { return w.h.Close() }
