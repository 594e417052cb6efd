package core

import (
	"context"
	"fmt"
	"maps"

	"golang.org/x/sync/errgroup"
)

// EnvLayer resolves one layer of environment overrides. A nil layer
// contributes nothing.
type EnvLayer func(ctx context.Context) (map[string]string, error)

// MergeEnv merges layers in order into a new map. Later layers win on key
// collisions. Nil layers are skipped.
func MergeEnv(layers ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, layer := range layers {
		maps.Copy(merged, layer)
	}
	return merged
}

// ResolveEnv runs every layer concurrently and merges the results in layer
// order. Layers only depend on the already-resolved launcher context, so
// their evaluation order does not affect the result. The first error cancels
// the context passed to the remaining layers.
func ResolveEnv(ctx context.Context, layers ...EnvLayer) (map[string]string, error) {
	results := make([]map[string]string, len(layers))

	g, gctx := errgroup.WithContext(ctx)
	for i, layer := range layers {
		if layer == nil {
			continue
		}
		g.Go(func() error {
			env, err := layer(gctx)
			if err != nil {
				return fmt.Errorf("resolve env layer %d: %w", i, err)
			}
			results[i] = env
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return MergeEnv(results...), nil
}
