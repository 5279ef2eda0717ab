package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Builder creates an independent simulator for one seed.
type Builder func(seed uint64) (*Simulator, error)

// Ensemble runs one simulator per seed, concurrently. Each run owns its space.
type Ensemble struct {
	build     Builder
	numRuns   int
	seedStart uint64
	limit     int
}

func NewEnsemble(build Builder, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// SetLimit bounds the number of concurrent runs. Zero or less means no limit.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run returns the results in seed order. The first error cancels the other
// runs.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			seed := e.seedStart + uint64(i)
			sim, err := e.build(seed)
			if err != nil {
				return err
			}
			runCfg := cfg
			runCfg.Seed = seed
			results[i], err = sim.Run(ctx, runCfg)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
