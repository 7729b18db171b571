// Package fitcache provides result cache implementations for the forecasting
// engine. Entries are content-addressed by the series fingerprint, so a
// re-upload of identical demand data reuses the earlier evaluation instead of
// re-fitting every family. The engine core stays cache-free; callers decide
// when to consult and when to fill the cache.
package fitcache

import (
	"context"

	"github.com/demandcast/demandcast/pkg/forecast"
	"github.com/demandcast/demandcast/pkg/metrics"
	"github.com/demandcast/demandcast/pkg/models"
)

// Key identifies one cached forecast: the series fingerprint plus the
// requested family and horizon. Ensemble entries are keyed by the
// fingerprint alone.
type Key struct {
	SeriesHash uint64
	Family     string
	Horizon    int
}

// Store is the cache contract shared by the memory and Redis backends.
// Lookups report (value, found, error); a missing entry is not an error.
type Store interface {
	PutEnsemble(ctx context.Context, seriesHash uint64, results []*models.FitResult) error
	GetEnsemble(ctx context.Context, seriesHash uint64) ([]*models.FitResult, bool, error)
	PutForecast(ctx context.Context, key Key, result forecast.Result) error
	GetForecast(ctx context.Context, key Key) (forecast.Result, bool, error)
	Close() error
}

// Entry kinds reported on the cache hit and miss counters.
const (
	kindEnsemble = "ensemble"
	kindForecast = "forecast"
)

// recordLookup reports one cache lookup outcome. m may be nil.
func recordLookup(m *metrics.Metrics, kind string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.RecordCacheHit(kind)
	} else {
		m.RecordCacheMiss(kind)
	}
}
