// Package ensemble evaluates every forecasting family against one demand
// series and ranks the outcomes by accuracy.
//
// The Runner fits families concurrently with a bounded worker pool. Each
// family writes into its own slot, indexed by registry order, so results are
// deterministic regardless of scheduling: the same series always produces
// the same ranking. Families that fail to fit are logged and dropped from
// the ranking rather than failing the evaluation.
package ensemble

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/demandcast/demandcast/pkg/metrics"
	"github.com/demandcast/demandcast/pkg/models"
)

// Runner evaluates the full family catalog against demand series.
type Runner struct {
	registry *models.Registry
	workers  int
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New creates a Runner. A workers value <= 0 runs one worker per family.
// logger may be nil; metrics may be nil to disable instrumentation.
func New(registry *models.Registry, workers int, logger *slog.Logger, m *metrics.Metrics) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 || workers > registry.Len() {
		workers = registry.Len()
	}
	return &Runner{
		registry: registry,
		workers:  workers,
		logger:   logger,
		metrics:  m,
	}
}

// Evaluate fits every registered family against series and returns the
// surviving results ranked by MAPE ascending, undefined scores last. The
// returned slice is empty when every family failed. The only error is
// context cancellation.
func (r *Runner) Evaluate(ctx context.Context, series []float64) ([]*models.FitResult, error) {
	start := time.Now()
	families := r.registry.Families()

	r.logger.Debug("evaluating model families",
		"families", len(families),
		"observations", len(series),
		"workers", r.workers,
	)

	slots := make([]*models.FitResult, len(families))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				slots[idx] = r.fitFamily(ctx, families[idx], series)
			}
		}()
	}

	for idx := range families {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]*models.FitResult, 0, len(slots))
	for _, res := range slots {
		if res != nil {
			results = append(results, res)
		}
	}
	ranked := Rank(results)

	duration := time.Since(start)
	if r.metrics != nil {
		r.metrics.RecordEvaluation(duration.Seconds())
	}

	r.logger.Info("ensemble evaluation complete",
		"families", len(families),
		"fitted", len(ranked),
		"observations", len(series),
		"duration_ms", duration.Milliseconds(),
	)

	return ranked, nil
}

// fitFamily runs one family's fit and returns nil when the family cannot
// produce a result.
func (r *Runner) fitFamily(ctx context.Context, family string, series []float64) *models.FitResult {
	model, ok := r.registry.Lookup(family)
	if !ok {
		r.logger.Warn("family missing from registry", "family", family)
		return nil
	}

	start := time.Now()
	res, err := model.Fit(ctx, series)
	duration := time.Since(start)

	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordFamilyFailure(family)
		}
		r.logger.Warn("family failed to fit",
			"family", family,
			"error", err,
			"duration_ms", duration.Milliseconds(),
		)
		return nil
	}

	if r.metrics != nil {
		r.metrics.RecordFit(family, duration.Seconds())
	}
	r.logger.Debug("family fitted",
		"family", family,
		"mape", res.Metrics.MAPE,
		"duration_ms", duration.Milliseconds(),
	)
	return res
}
