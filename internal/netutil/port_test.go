package netutil

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"syscall"
	"testing"

	"golang.org/x/sync/errgroup"
)

// isPortVacant reports whether port can be bound on the loopback interface.
func isPortVacant(t *testing.T, port int) bool {
	t.Helper()

	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) || errors.Is(err, syscall.EADDRNOTAVAIL) {
			return false
		}
		t.Fatalf("listen on port %d: %v", port, err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close listener on port %d: %v", port, err)
	}
	return true
}

func TestRandomPort(t *testing.T) {
	t.Parallel()

	port, err := RandomPort()
	if err != nil {
		t.Fatalf("RandomPort() error: %v", err)
	}
	if port <= 0 || port > 65535 {
		t.Fatalf("RandomPort() = %d, want a valid TCP port", port)
	}
	if !isPortVacant(t, port) {
		t.Errorf("port %d should be vacant after RandomPort returns", port)
	}
}

func TestNewPortRegistry(t *testing.T) {
	t.Parallel()

	r := NewPortRegistry(nil, "")
	if r == nil {
		t.Fatal("expected non-nil registry")
	}
	if r.log == nil {
		t.Fatal("expected nil logger to fall back to slog.Default()")
	}
	if !r.reserve(8080) {
		t.Fatal("expected reserve to succeed on new registry")
	}
	r.Release(8080)
}

func TestPortRegistry_reserve(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		setup  func(r *PortRegistry)
		port   int
		wantOK bool
	}{
		"reserve new port": {
			setup:  func(_ *PortRegistry) {},
			port:   8080,
			wantOK: true,
		},
		"reserve duplicate port": {
			setup: func(r *PortRegistry) {
				r.reserve(9090)
			},
			port:   9090,
			wantOK: false,
		},
		"reserve different ports": {
			setup: func(r *PortRegistry) {
				r.reserve(8080)
			},
			port:   9090,
			wantOK: true,
		},
		"reserve after release": {
			setup: func(r *PortRegistry) {
				r.reserve(8080)
				r.Release(8080)
			},
			port:   8080,
			wantOK: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := NewPortRegistry(nil, "")
			tc.setup(r)

			if got := r.reserve(tc.port); got != tc.wantOK {
				t.Errorf("reserve(%d) = %v, want %v", tc.port, got, tc.wantOK)
			}
			if r.reserve(tc.port) {
				t.Errorf("port %d should be reserved, but second reserve succeeded", tc.port)
			}
		})
	}
}

func TestPortRegistry_ReleaseUnknownPort(t *testing.T) {
	t.Parallel()

	r := NewPortRegistry(nil, t.TempDir())
	r.Release(4242) // must not panic
	if !r.reserve(4242) {
		t.Fatal("reserve after releasing an unknown port should succeed")
	}
	r.Release(4242)
}

func TestPortRegistry_LockDirAcrossRegistries(t *testing.T) {
	t.Parallel()

	// Two registries sharing a lock directory behave like two test binaries:
	// each lock is a separate open file description, so flock conflicts.
	dir := t.TempDir()
	a := NewPortRegistry(nil, dir)
	b := NewPortRegistry(nil, dir)

	if !a.reserve(20001) {
		t.Fatal("first registry should reserve the port")
	}
	if b.reserve(20001) {
		t.Fatal("second registry must not reserve a port locked by the first")
	}

	a.Release(20001)
	if !b.reserve(20001) {
		t.Fatal("second registry should reserve the port after the first released it")
	}
	b.Release(20001)
}

func TestPortRegistry_ConcurrentDuplicateReserve(t *testing.T) {
	t.Parallel()

	r := NewPortRegistry(nil, t.TempDir())
	const goroutines = 100
	const targetPort = 12345

	var wg sync.WaitGroup
	successes := make(chan bool, goroutines)

	for range goroutines {
		wg.Go(func() {
			successes <- r.reserve(targetPort)
		})
	}

	wg.Wait()
	close(successes)

	successCount := 0
	for ok := range successes {
		if ok {
			successCount++
		}
	}
	if successCount != 1 {
		t.Errorf("expected exactly 1 successful reserve, got %d", successCount)
	}
}

func TestPortRegistry_AllocateN(t *testing.T) {
	t.Parallel()

	r := NewPortRegistry(nil, "")

	ports, err := r.AllocateN(3)
	if err != nil {
		t.Fatalf("AllocateN(3) error: %v", err)
	}
	if len(ports) != 3 {
		t.Fatalf("AllocateN(3) returned %d ports", len(ports))
	}

	seen := make(map[int]bool)
	for _, p := range ports {
		if p == 0 {
			t.Error("allocated port should be non-zero")
		}
		if seen[p] {
			t.Errorf("port %d allocated twice", p)
		}
		seen[p] = true
		if r.reserve(p) {
			t.Errorf("port %d should already be registered", p)
		}
		if !isPortVacant(t, p) {
			t.Errorf("port %d should be free for the application to bind", p)
		}
		r.Release(p)
	}
}

func TestPortRegistry_AllocateNInvalidCount(t *testing.T) {
	t.Parallel()

	r := NewPortRegistry(nil, "")
	for _, n := range []int{0, -1} {
		if _, err := r.AllocateN(n); err == nil {
			t.Errorf("AllocateN(%d) should fail", n)
		}
	}
}

func TestPortRegistry_ConcurrentAllocate(t *testing.T) {
	t.Parallel()

	r := NewPortRegistry(nil, t.TempDir())
	const allocations = 20

	ports := make([]int, allocations)
	var g errgroup.Group
	for i := range allocations {
		g.Go(func() error {
			p, err := r.Allocate()
			ports[i] = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}

	seen := make(map[int]bool)
	for _, p := range ports {
		if seen[p] {
			t.Errorf("port %d allocated twice", p)
		}
		seen[p] = true
		r.Release(p)
	}
}
