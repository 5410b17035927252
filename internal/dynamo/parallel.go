package dynamo

import (
	"context"
	"runtime"
	"sync"
)

// RunFactory builds an independent simulator and initial state for one
// ensemble member.
type RunFactory func(seed int64) (*Simulator, State, error)

type Ensemble struct {
	factory   RunFactory
	numRuns   int
	seedStart int64
	workers   int
}

// NewEnsemble prepares numRuns runs seeded seedStart, seedStart+1, ...
func NewEnsemble(factory RunFactory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart, workers: runtime.GOMAXPROCS(0)}
}

// Run executes the runs on a bounded number of goroutines. Results are in
// seed order; the first error wins.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	sem := make(chan struct{}, max(1, e.workers))
	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			seed := e.seedStart + int64(idx)
			s, x0, err := e.factory(seed)
			if err != nil {
				errs[idx] = err
				return
			}
			runCfg := cfg
			runCfg.Seed = seed
			results[idx], errs[idx] = s.Run(ctx, x0, runCfg)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// ParallelFor splits [0, n) into chunks of at least minChunk and runs fn on
// them concurrently.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	workers := runtime.GOMAXPROCS(0)
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
