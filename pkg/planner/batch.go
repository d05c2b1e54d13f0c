package planner

import (
	"context"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/exp/slices"
)

type BatchResult struct {
	Index   int     `json:"index" yaml:"index"`
	Request Request `json:"request" yaml:"request"`
	Result  *Result `json:"result,omitempty" yaml:"result,omitempty"`
	Err     error   `json:"-" yaml:"-"`
	Error   string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// PlanBatch plans every request concurrently, each on its own search state.
// Results come back in request order.
func (p *Planner) PlanBatch(ctx context.Context, requests []Request, workers int) []BatchResult {
	if workers <= 0 {
		workers = 1
	}

	batch := pool.NewWithResults[BatchResult]()
	batch.WithMaxGoroutines(workers)

	for i, request := range requests {
		batch.Go(func() BatchResult {
			result, err := p.Plan(ctx, &request)

			planned := BatchResult{
				Index:   i,
				Request: request,
				Result:  result,
				Err:     err,
			}
			if err != nil {
				planned.Error = err.Error()
			}
			return planned
		})
	}

	results := batch.Wait()
	slices.SortFunc(results, func(a, b BatchResult) int {
		return a.Index - b.Index
	})
	return results
}
