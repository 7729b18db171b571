// Package models implements the six demand-forecasting families and the
// registry that catalogs them: simple moving average, simple exponential
// smoothing, Holt-Winters triple exponential smoothing, ARIMA, linear
// regression, and random forest.
//
// Every family implements the Model interface. Fit runs the family's bounded
// hyperparameter search against a demand series and returns the candidate
// with the lowest MAPE; Project re-derives the configuration the same way and
// forecasts future periods. Models hold no state between calls, so a single
// instance is safe for concurrent use across series.
package models

import (
	"context"
	"encoding/json"
	"math"

	"github.com/demandcast/demandcast/pkg/accuracy"
)

// Model is the interface implemented by every forecasting family.
type Model interface {
	// Name returns the family display name used by the registry and in
	// reported results.
	Name() string

	// Fit searches the family's hyperparameter grid over series and returns
	// the best-scoring candidate. Candidates that fail to fit are skipped;
	// Fit returns an error only when the family as a whole cannot produce a
	// result. The context is checked between candidates so callers can bound
	// slow searches.
	Fit(ctx context.Context, series []float64) (*FitResult, error)

	// Project re-derives the family's best configuration for series and
	// forecasts horizon future values. A horizon <= 0 yields an empty slice.
	Project(ctx context.Context, series []float64, horizon int) ([]float64, error)
}

// Params records the hyperparameters chosen by a family's search.
// Each family populates its own keys (window, alpha, order, ...), matching
// the parameter glossary in its Description.
type Params map[string]any

// FitResult is the outcome of one family's Fit: the winning configuration,
// its in-sample predictions, and the accuracy metrics used for ranking.
// Results are never mutated after creation.
type FitResult struct {
	// Family is the display name of the family that produced this result.
	Family string `json:"family"`

	// Predictions holds one in-sample prediction per input observation.
	// Leading entries are NaN for methods that need a warm-up window.
	Predictions []float64 `json:"predictions"`

	// Metrics scores Predictions against the input series.
	Metrics accuracy.Metrics `json:"metrics"`

	// Params holds the hyperparameters chosen by the search.
	Params Params `json:"parameters"`

	// Description is the family's static catalog entry.
	Description Description `json:"description"`
}

// fitResultJSON mirrors FitResult with pointer predictions so non-finite
// entries round-trip through JSON as null.
type fitResultJSON struct {
	Family      string           `json:"family"`
	Predictions []*float64       `json:"predictions"`
	Metrics     accuracy.Metrics `json:"metrics"`
	Params      Params           `json:"parameters"`
	Description Description      `json:"description"`
}

// MarshalJSON encodes non-finite predictions as null.
func (r FitResult) MarshalJSON() ([]byte, error) {
	preds := make([]*float64, len(r.Predictions))
	for i := range r.Predictions {
		if v := r.Predictions[i]; !math.IsNaN(v) && !math.IsInf(v, 0) {
			preds[i] = &v
		}
	}
	return json.Marshal(fitResultJSON{
		Family:      r.Family,
		Predictions: preds,
		Metrics:     r.Metrics,
		Params:      r.Params,
		Description: r.Description,
	})
}

// UnmarshalJSON decodes null predictions back to NaN.
func (r *FitResult) UnmarshalJSON(data []byte) error {
	var aux fitResultJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Family = aux.Family
	r.Predictions = make([]float64, len(aux.Predictions))
	for i, p := range aux.Predictions {
		if p == nil {
			r.Predictions[i] = math.NaN()
		} else {
			r.Predictions[i] = *p
		}
	}
	r.Metrics = aux.Metrics
	r.Params = aux.Params
	r.Description = aux.Description
	return nil
}

// mean returns the arithmetic mean of values, NaN for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// repeat returns a slice of n copies of v.
func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
