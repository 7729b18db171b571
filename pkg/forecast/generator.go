// Package forecast regenerates multi-period demand projections from a single
// chosen family. The generator re-runs the family's hyperparameter search on
// every call, so a forecast never depends on an earlier ensemble evaluation.
// It never fails the caller: an unknown family name or a fitter error
// degrades to a flat forecast at the historical mean with the failure reason
// attached to the result.
package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/demandcast/demandcast/pkg/metrics"
	"github.com/demandcast/demandcast/pkg/models"
)

// Generator produces forecasts from the family registry.
type Generator struct {
	registry *models.Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New builds a Generator. logger may be nil, in which case slog.Default() is
// used; metrics may be nil to disable instrumentation.
func New(registry *models.Registry, logger *slog.Logger, m *metrics.Metrics) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{registry: registry, logger: logger, metrics: m}
}

// Generate projects horizon future values of series using the named family.
// The family re-derives its best configuration from series alone. Any
// failure, including an unknown family name, yields the flat-mean fallback
// with the reason recorded on the result; Generate itself never errors.
// A horizon of 0 yields an empty projection.
func (g *Generator) Generate(ctx context.Context, family string, series []float64, horizon int) *Result {
	if g.metrics != nil {
		g.metrics.RecordForecast(family)
	}

	model, ok := g.registry.Lookup(family)
	if !ok {
		return g.fallback(family, series, horizon, models.Description{},
			fmt.Sprintf("unknown family %q", family))
	}
	desc, _ := g.registry.Describe(family)

	start := time.Now()
	values, err := model.Project(ctx, series, horizon)
	if err != nil {
		return g.fallback(family, series, horizon, desc, err.Error())
	}
	if want := max(horizon, 0); len(values) != want {
		return g.fallback(family, series, horizon, desc,
			fmt.Sprintf("forecast: expected %d values, got %d", want, len(values)))
	}

	g.logger.Info("forecast generated",
		"family", family,
		"horizon", horizon,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Result{
		Family:      family,
		Values:      values,
		Horizon:     horizon,
		Description: desc,
	}
}

// fallback builds the flat-mean result substituted when a family cannot
// produce a forecast.
func (g *Generator) fallback(family string, series []float64, horizon int, desc models.Description, reason string) *Result {
	if g.metrics != nil {
		g.metrics.RecordFallback()
	}
	g.logger.Warn("forecast fell back to historical mean",
		"family", family,
		"reason", reason,
	)
	return &Result{
		Family:      family,
		Values:      flatMean(series, max(horizon, 0)),
		Horizon:     horizon,
		Description: desc,
		Fallback:    true,
		Reason:      reason,
	}
}

// flatMean returns n copies of the arithmetic mean of series. An empty
// series yields NaN values; the mean is reported raw, not rounded.
func flatMean(series []float64, n int) []float64 {
	var sum float64
	for _, v := range series {
		sum += v
	}
	m := sum / float64(len(series))
	out := make([]float64, n)
	for i := range out {
		out[i] = m
	}
	return out
}
