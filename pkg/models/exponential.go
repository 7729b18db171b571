package models

import (
	"context"
	"fmt"

	"github.com/demandcast/demandcast/pkg/accuracy"
)

const sesDefaultAlpha = 0.3

// sesAlphas is the smoothing factor grid, coarse steps across (0, 1).
var sesAlphas = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}

// ExponentialSmoothingModel applies single exponential smoothing with a
// grid-searched smoothing factor.
//
// The in-sample prediction for period t is the smoothed level after period
// t-1:
//
//	ŷ_0 = y_0
//	ŷ_t = α*y_{t-1} + (1-α)*ŷ_{t-1}
//
// Fit searches α over {0.1, 0.2, ..., 0.9} and keeps the value with the
// lowest defined MAPE, defaulting to α = 0.3 when the search finds no usable
// candidate. Project re-fits with the selected α; the multi-step forecast is
// flat at the final smoothed level.
type ExponentialSmoothingModel struct{}

// NewExponentialSmoothingModel creates a simple exponential smoothing model.
func NewExponentialSmoothingModel() *ExponentialSmoothingModel {
	return &ExponentialSmoothingModel{}
}

// Name returns the family display name.
func (m *ExponentialSmoothingModel) Name() string {
	return FamilySES
}

// Fit searches the smoothing factor grid and returns the best candidate.
func (m *ExponentialSmoothingModel) Fit(ctx context.Context, series []float64) (*FitResult, error) {
	alpha, res, err := m.searchAlpha(ctx, series)
	if err != nil {
		return nil, err
	}
	return &FitResult{
		Family:      m.Name(),
		Predictions: res.predictions,
		Metrics:     res.metrics,
		Params:      Params{"alpha": alpha},
		Description: describe(m.Name()),
	}, nil
}

// Project re-fits with the selected smoothing factor and repeats the final
// smoothed level horizon times.
func (m *ExponentialSmoothingModel) Project(ctx context.Context, series []float64, horizon int) ([]float64, error) {
	if horizon <= 0 {
		return []float64{}, nil
	}
	alpha, res, err := m.searchAlpha(ctx, series)
	if err != nil {
		return nil, err
	}

	// Advance the level one more step so the forecast reflects the last
	// observation, then hold it flat.
	n := len(series)
	level := alpha*series[n-1] + (1-alpha)*res.predictions[n-1]
	return repeat(level, horizon), nil
}

func (m *ExponentialSmoothingModel) searchAlpha(ctx context.Context, series []float64) (float64, evalResult, error) {
	if len(series) == 0 {
		return 0, evalResult{}, fmt.Errorf("ses: series is empty")
	}

	eval := func(alpha float64) (evalResult, error) {
		preds := sesFitted(series, alpha)
		metrics, err := accuracy.Calculate(series, preds)
		if err != nil {
			return evalResult{}, err
		}
		return evalResult{predictions: preds, metrics: metrics}, nil
	}

	alpha, res, ok, err := searchBest(ctx, sesAlphas, eval)
	if err != nil {
		return 0, evalResult{}, fmt.Errorf("ses: %w", err)
	}
	if !ok {
		res, err = eval(sesDefaultAlpha)
		if err != nil {
			return 0, evalResult{}, fmt.Errorf("ses: %w", err)
		}
		alpha = sesDefaultAlpha
	}
	return alpha, res, nil
}

// sesFitted computes the smoothing recurrence over the whole series.
func sesFitted(series []float64, alpha float64) []float64 {
	fitted := make([]float64, len(series))
	fitted[0] = series[0]
	for i := 1; i < len(series); i++ {
		fitted[i] = alpha*series[i-1] + (1-alpha)*fitted[i-1]
	}
	return fitted
}
