package models

import (
	"context"

	"github.com/demandcast/demandcast/pkg/accuracy"
)

// LinearModel fits an ordinary least squares line against the observation
// index, capturing a straight trend with no seasonal structure.
//
// There is no hyperparameter search: the slope and intercept have a closed
// form. Project extrapolates the fitted line past the end of the series.
type LinearModel struct{}

// NewLinearModel creates a linear regression model.
func NewLinearModel() *LinearModel {
	return &LinearModel{}
}

// Name returns the family display name.
func (m *LinearModel) Name() string {
	return FamilyLinear
}

// Fit computes the least squares line and its in-sample predictions.
func (m *LinearModel) Fit(ctx context.Context, series []float64) (*FitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	intercept, slope := linearLeastSquares(series)

	predictions := make([]float64, len(series))
	for i := range predictions {
		predictions[i] = intercept + slope*float64(i)
	}

	metrics, err := accuracy.Calculate(series, predictions)
	if err != nil {
		return nil, err
	}

	return &FitResult{
		Family:      m.Name(),
		Predictions: predictions,
		Metrics:     metrics,
		Params: Params{
			"intercept":   accuracy.Round2(intercept),
			"coefficient": accuracy.Round2(slope),
		},
		Description: describe(m.Name()),
	}, nil
}

// Project extrapolates the fitted line over the forecast horizon.
func (m *LinearModel) Project(ctx context.Context, series []float64, horizon int) ([]float64, error) {
	if horizon <= 0 {
		return []float64{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	intercept, slope := linearLeastSquares(series)

	out := make([]float64, horizon)
	for k := 0; k < horizon; k++ {
		out[k] = intercept + slope*float64(len(series)+k)
	}
	return out, nil
}

// linearLeastSquares returns the intercept and slope of the least squares
// line through (i, series[i]). A degenerate denominator collapses to a flat
// line at the mean.
func linearLeastSquares(series []float64) (intercept, slope float64) {
	n := len(series)
	if n == 0 {
		return 0, 0
	}

	xMean := float64(n-1) / 2
	yMean := mean(series)

	var num, den float64
	for i, y := range series {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	if den == 0 {
		return yMean, 0
	}

	slope = num / den
	intercept = yMean - slope*xMean
	return intercept, slope
}
