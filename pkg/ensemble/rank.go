package ensemble

import (
	"sort"

	"github.com/demandcast/demandcast/pkg/accuracy"
	"github.com/demandcast/demandcast/pkg/models"
)

// Rank returns the results ordered by MAPE ascending. Results without a
// defined MAPE sort after every scored result. The sort is stable, so equal
// scores and unscored results keep their registry order. The input slice is
// not modified.
func Rank(results []*models.FitResult) []*models.FitResult {
	ranked := make([]*models.FitResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Metrics.MAPE, ranked[j].Metrics.MAPE
		switch {
		case accuracy.Defined(a) && accuracy.Defined(b):
			return a < b
		case accuracy.Defined(a):
			return true
		default:
			return false
		}
	})
	return ranked
}

// Top returns the first n ranked results, fewer when the ensemble is
// smaller. n <= 0 yields an empty slice.
func Top(ranked []*models.FitResult, n int) []*models.FitResult {
	if n <= 0 {
		return []*models.FitResult{}
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]*models.FitResult, n)
	copy(out, ranked[:n])
	return out
}
