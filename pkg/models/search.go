package models

import (
	"context"
	"math"

	"github.com/demandcast/demandcast/pkg/accuracy"
)

// evalResult couples one candidate's in-sample predictions with its score.
type evalResult struct {
	predictions []float64
	metrics     accuracy.Metrics
}

// searchBest runs a family's grid search. Candidates are evaluated in order;
// an eval error means the candidate failed to fit and is skipped, never
// fatal. The winner is the first candidate with the lowest defined MAPE.
//
// ok is false when no candidate produced a defined MAPE; the caller then
// falls back to its family default or reports a family failure. A non-nil
// error is returned only for context cancellation.
func searchBest[C any](ctx context.Context, candidates []C, eval func(C) (evalResult, error)) (best C, res evalResult, ok bool, err error) {
	bestMAPE := math.Inf(1)

	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			var zero C
			return zero, evalResult{}, false, err
		}

		r, err := eval(cand)
		if err != nil {
			continue
		}
		if accuracy.Defined(r.metrics.MAPE) && r.metrics.MAPE < bestMAPE {
			bestMAPE = r.metrics.MAPE
			best, res, ok = cand, r, true
		}
	}

	if !ok {
		var zero C
		return zero, evalResult{}, false, nil
	}
	return best, res, true, nil
}
