// Package metrics provides Prometheus instrumentation for the model
// selection pipeline.
//
// It tracks how long family fits and full ensemble evaluations take, which
// families fail to fit, forecast requests and fallbacks, and cache traffic.
// Metrics are registered with promauto and exposed wherever the embedding
// process serves its /metrics endpoint.
//
// Metrics exposed:
//   - demandcast_family_fit_seconds: Histogram of per-family fit duration
//   - demandcast_family_fit_failures_total: Counter of family fit failures
//   - demandcast_ensemble_evaluate_seconds: Histogram of full evaluation duration
//   - demandcast_ensemble_evaluations_total: Counter of ensemble evaluations
//   - demandcast_forecast_requests_total: Counter of forecasts by family
//   - demandcast_forecast_fallbacks_total: Counter of fallback forecasts served
//   - demandcast_cache_hits_total: Counter of cache hits by entry kind
//   - demandcast_cache_misses_total: Counter of cache misses by entry kind
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the selection pipeline.
type Metrics struct {
	FamilyFitSeconds       *prometheus.HistogramVec
	FamilyFitFailuresTotal *prometheus.CounterVec
	EvaluateSeconds        prometheus.Histogram
	EvaluationsTotal       prometheus.Counter
	ForecastRequestsTotal  *prometheus.CounterVec
	ForecastFallbacksTotal prometheus.Counter
	CacheHitsTotal         *prometheus.CounterVec
	CacheMissesTotal       *prometheus.CounterVec
}

// New creates and registers all metrics with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all metrics against the given registerer. Tests pass a
// fresh registry so repeated construction does not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FamilyFitSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "demandcast_family_fit_seconds",
			Help:    "Time spent fitting one model family",
			Buckets: prometheus.DefBuckets,
		}, []string{"family"}),

		FamilyFitFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "demandcast_family_fit_failures_total",
			Help: "Total number of family fits that produced no result",
		}, []string{"family"}),

		EvaluateSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "demandcast_ensemble_evaluate_seconds",
			Help:    "Time spent evaluating the full model ensemble",
			Buckets: prometheus.DefBuckets,
		}),

		EvaluationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "demandcast_ensemble_evaluations_total",
			Help: "Total number of ensemble evaluations",
		}),

		ForecastRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "demandcast_forecast_requests_total",
			Help: "Total number of forecasts generated by family",
		}, []string{"family"}),

		ForecastFallbacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "demandcast_forecast_fallbacks_total",
			Help: "Total number of forecasts served by the historical-mean fallback",
		}),

		CacheHitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "demandcast_cache_hits_total",
			Help: "Total number of cache hits by entry kind",
		}, []string{"kind"}),

		CacheMissesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "demandcast_cache_misses_total",
			Help: "Total number of cache misses by entry kind",
		}, []string{"kind"}),
	}
}

// RecordFit records the time spent fitting one family.
func (m *Metrics) RecordFit(family string, seconds float64) {
	m.FamilyFitSeconds.WithLabelValues(family).Observe(seconds)
}

// RecordFamilyFailure increments the failure counter for a family.
func (m *Metrics) RecordFamilyFailure(family string) {
	m.FamilyFitFailuresTotal.WithLabelValues(family).Inc()
}

// RecordEvaluation records one full ensemble evaluation.
func (m *Metrics) RecordEvaluation(seconds float64) {
	m.EvaluateSeconds.Observe(seconds)
	m.EvaluationsTotal.Inc()
}

// RecordForecast increments the forecast counter for a family.
func (m *Metrics) RecordForecast(family string) {
	m.ForecastRequestsTotal.WithLabelValues(family).Inc()
}

// RecordFallback increments the fallback forecast counter.
func (m *Metrics) RecordFallback() {
	m.ForecastFallbacksTotal.Inc()
}

// RecordCacheHit increments the cache hit counter for an entry kind.
func (m *Metrics) RecordCacheHit(kind string) {
	m.CacheHitsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheMiss increments the cache miss counter for an entry kind.
func (m *Metrics) RecordCacheMiss(kind string) {
	m.CacheMissesTotal.WithLabelValues(kind).Inc()
}
