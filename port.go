package applaunch

import (
	"context"

	"github.com/giantswarm/applaunch/internal/core"
	"github.com/giantswarm/applaunch/internal/fileutil"
	"github.com/giantswarm/applaunch/internal/netutil"
	"github.com/giantswarm/applaunch/internal/readiness"
)

// WaitForPort returns nil once a TCP connection to localhost:port succeeds.
// Each probe connection is closed immediately.
//
// It returns ErrRetriesExhausted (message "retries limit reached") when the
// retry budget ran out, ErrTimeout when the overall timeout elapsed first,
// and the context's error when ctx is canceled. Retries and timeout race
// independently; see WithTimeout, WithRetryInterval and WithMaxRetries.
func WaitForPort(ctx context.Context, port int, opts ...WaitOption) error {
	o := readiness.DefaultPortOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.Logger = core.Logger()
	return readiness.WaitForPort(ctx, port, o)
}

// RandomPort returns a TCP port that was vacant on the loopback interface
// when RandomPort returned. Another process may take it before the
// application binds it; use a PortRegistry when tests allocate ports in
// parallel.
func RandomPort() (int, error) {
	return netutil.RandomPort()
}

// PortRegistry hands out distinct vacant ports and keeps them reserved until
// released, so concurrent launches never receive the same port.
//
// Reservations are also recorded as exclusive file locks in a directory
// shared by every PortRegistry that uses it, which extends the guarantee to
// other test binaries, e.g. the packages of one `go test ./...` run.
type PortRegistry struct {
	r *netutil.PortRegistry
}

// NewPortRegistry returns a PortRegistry that locks ports in lockDir. An
// empty lockDir uses a shared directory under the system temp directory.
// The directory is created if needed.
func NewPortRegistry(lockDir string) (*PortRegistry, error) {
	if lockDir == "" {
		dir, err := fileutil.TempSubdir("ports")
		if err != nil {
			return nil, err
		}
		lockDir = dir
	} else if err := fileutil.EnsureDir(lockDir); err != nil {
		return nil, err
	}
	return &PortRegistry{r: netutil.NewPortRegistry(core.Logger(), lockDir)}, nil
}

// Allocate reserves one vacant port.
func (p *PortRegistry) Allocate() (int, error) {
	return p.r.Allocate()
}

// AllocateN reserves n distinct vacant ports.
func (p *PortRegistry) AllocateN(n int) ([]int, error) {
	return p.r.AllocateN(n)
}

// Release frees a reserved port. Releasing a port that is not reserved is a
// no-op.
func (p *PortRegistry) Release(port int) {
	p.r.Release(port)
}
