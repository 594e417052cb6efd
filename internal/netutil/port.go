package netutil

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gofrs/flock"
)

// maxPortRetries is the maximum number of attempts to find a port not already
// in the registry. This guards against pathological cases.
const maxPortRetries = 20

// RandomPort asks the kernel for a vacant TCP port on the loopback interface
// and returns it after closing the listener. Another process may grab the
// port before the caller binds it; use a PortRegistry when several launchers
// allocate ports concurrently.
func RandomPort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("get random port: %w", err)
	}
	tcpAddr, ok := l.Addr().(*net.TCPAddr)
	if !ok {
		_ = l.Close()
		return 0, fmt.Errorf("get random port: unexpected address type: %T", l.Addr())
	}
	if err := l.Close(); err != nil {
		return 0, fmt.Errorf("get random port: close listener: %w", err)
	}
	return tcpAddr.Port, nil
}

// PortRegistry tracks ports reserved for launched applications to prevent
// the TOCTOU race where two concurrent allocations receive the same port from
// the kernel (because the first caller closed its listener before the
// application bound it).
//
// With a lock directory, every reservation also holds an exclusive file lock
// named <port>.lock, which extends the guarantee to other processes using
// the same directory, e.g. the package test binaries of one `go test ./...`.
type PortRegistry struct {
	mu      sync.Mutex
	ports   map[int]*flock.Flock // nil lock when lockDir is empty
	lockDir string
	log     *slog.Logger
}

// NewPortRegistry creates a new PortRegistry ready for use.
// If logger is nil, slog.Default() is used as a fallback. An empty lockDir
// keeps reservations process-local.
func NewPortRegistry(logger *slog.Logger, lockDir string) *PortRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortRegistry{
		ports:   make(map[int]*flock.Flock),
		lockDir: lockDir,
		log:     logger,
	}
}

// reserve attempts to register a port in the registry.
// Returns true if the port was successfully reserved, false if already taken
// here or, with a lock directory, by another process.
func (r *PortRegistry) reserve(port int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ports[port]; ok {
		return false
	}
	var fl *flock.Flock
	if r.lockDir != "" {
		fl = flock.New(filepath.Join(r.lockDir, strconv.Itoa(port)+".lock"))
		locked, err := fl.TryLock()
		if err != nil {
			r.log.Debug("port lock failed", "port", port, "path", fl.Path(), "error", err)
			return false
		}
		if !locked {
			r.log.Debug("port locked by another process", "port", port)
			return false
		}
	}
	r.ports[port] = fl
	return true
}

// Release removes a port from the registry, allowing it to be reused.
// The lock file is intentionally left on disk: removing it could invalidate
// a lock concurrently acquired by another process.
func (r *PortRegistry) Release(port int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fl, ok := r.ports[port]
	if !ok {
		return
	}
	delete(r.ports, port)
	if fl != nil {
		if err := fl.Close(); err != nil {
			r.log.Debug("release port lock", "port", port, "path", fl.Path(), "error", err)
		}
	}
}

// getFreePortFromKernel asks the kernel for a free port, skipping any ports
// already in the registry. On success it returns an open [net.TCPListener] that
// the caller must close when the port is no longer needed to be held open. The
// port is also registered in the registry; the caller must call [PortRegistry.Release]
// separately to free it from the registry.
func (r *PortRegistry) getFreePortFromKernel() (*net.TCPListener, int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, 0, fmt.Errorf("resolve tcp address: %w", err)
	}

	for range maxPortRetries {
		l, err := net.ListenTCP("tcp", addr)
		if err != nil {
			return nil, 0, fmt.Errorf("listen on tcp address: %w", err)
		}
		tcpAddr, ok := l.Addr().(*net.TCPAddr)
		if !ok {
			_ = l.Close()
			return nil, 0, fmt.Errorf("unexpected address type: %T", l.Addr())
		}
		if r.reserve(tcpAddr.Port) {
			return l, tcpAddr.Port, nil
		}
		r.log.Debug("port already reserved, retrying", "port", tcpAddr.Port)
		_ = l.Close()
	}
	return nil, 0, fmt.Errorf("allocate unique port: exhausted %d attempts", maxPortRetries)
}

// Allocate reserves one free port. Callers must call Release when the
// application using it has been disposed.
func (r *PortRegistry) Allocate() (int, error) {
	ports, err := r.AllocateN(1)
	if err != nil {
		return 0, err
	}
	return ports[0], nil
}

// AllocateN reserves n distinct free ports.
//
// All listeners are held open simultaneously before any is closed,
// guaranteeing the kernel assigns different ports. On failure every port
// reserved so far is released.
func (r *PortRegistry) AllocateN(n int) ([]int, error) {
	if n <= 0 {
		return nil, fmt.Errorf("allocate ports: count must be positive, got %d", n)
	}

	listeners := make([]*net.TCPListener, 0, n)
	ports := make([]int, 0, n)
	closeAll := func() error {
		var errs []error
		for i, l := range listeners {
			if err := l.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close listener on port %d: %w", ports[i], err))
			}
		}
		return errors.Join(errs...)
	}

	for i := range n {
		l, p, err := r.getFreePortFromKernel()
		if err != nil {
			// Close the listeners BEFORE releasing the ports from the
			// registry, so no other caller is handed a port still bound here.
			if closeErr := closeAll(); closeErr != nil {
				r.log.Warn("close listeners after failed allocation", "error", closeErr)
			}
			for _, port := range ports {
				r.Release(port)
			}
			return nil, fmt.Errorf("allocate port %d of %d: %w", i+1, n, err)
		}
		listeners = append(listeners, l)
		ports = append(ports, p)
	}

	if err := closeAll(); err != nil {
		r.log.Warn("close listeners after port allocation", "error", err)
	}
	return ports, nil
}
