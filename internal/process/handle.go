package process

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// outputWaitDelay bounds how long Wait keeps copying stdout/stderr after the
// process exited. Grandchildren that inherited the pipes would otherwise keep
// Wait, and therefore Exited, blocked forever.
const outputWaitDelay = 2 * time.Second

// Config holds the configuration for a single application process.
type Config struct {
	// Name identifies the process in logs and errors. Defaults to the base
	// name of the executable.
	Name string

	// Command is a whitespace-delimited command line: executable followed by
	// arguments. Required; validated by Launch.
	Command string

	// Env is overlaid on the parent environment; these keys win.
	Env map[string]string

	// Dir is the working directory. Empty means the parent's directory.
	Dir string

	// LogDir, if set, receives <name>-<id>-stdout.log and -stderr.log files.
	LogDir string

	// Stdout and Stderr, if set, receive a copy of the process output
	// (debug mode echoes to the parent's streams).
	Stdout io.Writer
	Stderr io.Writer

	// StopTimeout is how long Dispose waits after SIGTERM before sending
	// SIGKILL. Zero uses DefaultStopTimeout.
	StopTimeout time.Duration

	// Logger (optional, defaults to slog.Default())
	Logger *slog.Logger
}

// Handle owns exactly one operating system process from spawn to confirmed
// termination.
//
// Handle is safe for concurrent use. Concurrent Dispose calls perform one
// teardown; the others return ErrAlreadyDisposed.
type Handle struct {
	id     string
	name   string
	config Config
	log    *slog.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	url      *url.URL
	disposed bool
	termSent bool // Dispose delivered SIGTERM; death by it is not an error
	logFiles LogFiles

	// exited is closed by the single cmd.Wait goroutine after waitErr is
	// written, so readers that received from exited may read waitErr.
	exited  chan struct{}
	waitErr error
}

// New creates a Handle. New performs no I/O; the process is spawned by Launch.
func New(cfg Config) *Handle {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	name := cfg.Name
	if name == "" {
		name = "app"
		if fields := strings.Fields(cfg.Command); len(fields) > 0 {
			name = filepath.Base(fields[0])
		}
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultStopTimeout
	}
	id := uuid.NewString()
	return &Handle{
		id:     id,
		name:   name,
		config: cfg,
		log:    log.With("process", name, "id", id),
		exited: make(chan struct{}),
	}
}

// ID returns the unique identifier of this handle.
func (h *Handle) ID() string {
	return h.id
}

// Name returns the process name used in logs and errors.
func (h *Handle) Name() string {
	return h.name
}

// Launch parses the command, spawns the process and returns once the
// operating system reported either a successful start or a spawn failure.
// The context is only consulted before spawning; the process lifetime is
// bound to Dispose, not to ctx.
func (h *Handle) Launch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("launch %s: %w", h.name, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cmd != nil {
		return fmt.Errorf("launch %s: %w", h.name, ErrAlreadyLaunched)
	}

	bin, args, err := ParseCommand(h.config.Command)
	if err != nil {
		return fmt.Errorf("launch %s: %w", h.name, err)
	}

	cmd := exec.Command(bin, args...)
	cmd.Env = MergeEnv(os.Environ(), h.config.Env)
	cmd.Dir = h.config.Dir
	cmd.WaitDelay = outputWaitDelay
	configureSysProcAttr(cmd)

	if h.config.LogDir != "" {
		files, err := NewLogFiles(h.config.LogDir, h.name+"-"+h.id[:8])
		if err != nil {
			return fmt.Errorf("create %s logs: %w", h.name, err)
		}
		h.logFiles = files
	}
	cmd.Stdout, cmd.Stderr = outputs(h.logFiles, h.config.Stdout, h.config.Stderr)

	if err := cmd.Start(); err != nil {
		h.logFiles.Close()
		return fmt.Errorf("launch %s: %w: %w", h.name, ErrSpawn, err)
	}
	h.cmd = cmd

	// cmd.Wait must be called exactly once per started process. Dispose,
	// Err and readiness waits all observe the result through exited.
	go func() {
		err := cmd.Wait()
		h.waitErr = err
		close(h.exited)
	}()

	h.log.Info("process launched", "pid", cmd.Process.Pid, "command", h.config.Command)
	return nil
}

// PID returns the operating system process ID, or 0 before Launch.
func (h *Handle) PID() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cmd == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// URL returns the resolved application URL. It returns ErrNotReady until the
// launcher assigned one, which happens before the readiness wait starts.
func (h *Handle) URL() (*url.URL, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.url == nil {
		return nil, fmt.Errorf("%s url: %w", h.name, ErrNotReady)
	}
	u := *h.url
	return &u, nil
}

// SetURL assigns the resolved application URL. It may be called once, after
// a successful Launch.
func (h *Handle) SetURL(u *url.URL) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cmd == nil {
		return fmt.Errorf("set %s url: %w", h.name, ErrNotLaunched)
	}
	if h.url != nil {
		return fmt.Errorf("set %s url: %w", h.name, ErrURLAlreadySet)
	}
	cp := *u
	h.url = &cp
	return nil
}

// Exited returns a channel closed when the process has exited. It is safe to
// select on from any number of goroutines, including before Launch (the
// channel then never closes).
func (h *Handle) Exited() <-chan struct{} {
	return h.exited
}

// Err reports how the process ended: nil while it is running, if it exited
// with status 0 or if it died from the SIGTERM sent by Dispose. A non-zero
// status or any other signal, including the SIGKILL sent after the stop
// timeout, yields an *ExitError.
func (h *Handle) Err() error {
	select {
	case <-h.exited:
	default:
		return nil
	}

	h.mu.Lock()
	termSent := h.termSent
	h.mu.Unlock()
	if termSent {
		return h.exitStatus(syscall.SIGTERM)
	}
	return h.exitStatus()
}

func (h *Handle) setTermSent(sent bool) {
	h.mu.Lock()
	h.termSent = sent
	h.mu.Unlock()
}

// Dispose terminates the process gracefully and waits for its exit.
//
// A process that already exited with status 0 is not an error. One that
// already exited non-zero yields an *ExitError. Otherwise SIGTERM is sent and
// the exit is awaited: status 0 or death by that SIGTERM resolve cleanly, any
// other status yields an *ExitError. A process still running after the stop
// timeout is killed and ErrKilled is returned.
//
// Dispose may be called once; later calls return ErrAlreadyDisposed.
func (h *Handle) Dispose() error {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return fmt.Errorf("dispose %s: %w", h.name, ErrAlreadyDisposed)
	}
	if h.cmd == nil {
		h.mu.Unlock()
		return fmt.Errorf("dispose %s: %w", h.name, ErrNotLaunched)
	}
	h.disposed = true
	cmd := h.cmd
	h.mu.Unlock()

	defer h.logFiles.Close()

	err := h.stop(cmd, h.config.StopTimeout)
	if err != nil {
		h.log.Warn("process dispose failed", "pid", cmd.Process.Pid, "error", err)
		return err
	}
	h.log.Info("process disposed", "pid", cmd.Process.Pid)
	return nil
}

// Close implements io.Closer by calling Dispose, so a Handle can be released
// with defer.
func (h *Handle) Close() error {
	return h.Dispose()
}
