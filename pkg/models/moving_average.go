package models

import (
	"context"
	"fmt"
	"math"

	"github.com/demandcast/demandcast/pkg/accuracy"
)

const (
	smaMinWindow     = 3
	smaMaxWindow     = 12
	smaDefaultWindow = 3
)

// MovingAverageModel predicts each period as the mean of the preceding w
// observations.
//
// Fit searches window sizes 3..12 ascending and keeps the first window with
// the lowest defined MAPE. When no window produces a defined MAPE (for
// example, all-zero demand), the default window of 3 is reported instead of
// failing. Project repeats the mean of the last chosen-window observations
// for every future period.
type MovingAverageModel struct{}

// NewMovingAverageModel creates a simple moving average model.
func NewMovingAverageModel() *MovingAverageModel {
	return &MovingAverageModel{}
}

// Name returns the family display name.
func (m *MovingAverageModel) Name() string {
	return FamilySMA
}

// Fit searches window sizes 3..12 and returns the best-scoring window.
func (m *MovingAverageModel) Fit(ctx context.Context, series []float64) (*FitResult, error) {
	window, res, err := m.searchWindow(ctx, series)
	if err != nil {
		return nil, err
	}
	return &FitResult{
		Family:      m.Name(),
		Predictions: res.predictions,
		Metrics:     res.metrics,
		Params:      Params{"window": window},
		Description: describe(m.Name()),
	}, nil
}

// Project re-runs the window search and repeats the mean of the last
// chosen-window observations horizon times.
func (m *MovingAverageModel) Project(ctx context.Context, series []float64, horizon int) ([]float64, error) {
	if horizon <= 0 {
		return []float64{}, nil
	}
	window, _, err := m.searchWindow(ctx, series)
	if err != nil {
		return nil, err
	}
	if window > len(series) {
		window = len(series)
	}
	level := mean(series[len(series)-window:])
	return repeat(level, horizon), nil
}

// searchWindow evaluates every candidate window and returns the winner with
// its predictions. Falls back to the default window when nothing scores a
// defined MAPE.
func (m *MovingAverageModel) searchWindow(ctx context.Context, series []float64) (int, evalResult, error) {
	if len(series) == 0 {
		return 0, evalResult{}, fmt.Errorf("sma: series is empty")
	}

	windows := make([]int, 0, smaMaxWindow-smaMinWindow+1)
	for w := smaMinWindow; w <= smaMaxWindow; w++ {
		windows = append(windows, w)
	}

	eval := func(w int) (evalResult, error) {
		preds := smaPredictions(series, w)
		metrics, err := accuracy.Calculate(series, preds)
		if err != nil {
			return evalResult{}, err
		}
		return evalResult{predictions: preds, metrics: metrics}, nil
	}

	window, res, ok, err := searchBest(ctx, windows, eval)
	if err != nil {
		return 0, evalResult{}, fmt.Errorf("sma: %w", err)
	}
	if !ok {
		res, err = eval(smaDefaultWindow)
		if err != nil {
			return 0, evalResult{}, fmt.Errorf("sma: %w", err)
		}
		window = smaDefaultWindow
	}
	return window, res, nil
}

// smaPredictions computes in-sample predictions for one window size. The
// first w entries are NaN, there is no full window behind them yet.
func smaPredictions(series []float64, window int) []float64 {
	preds := make([]float64, len(series))
	for i := range series {
		if i < window {
			preds[i] = math.NaN()
			continue
		}
		preds[i] = mean(series[i-window : i])
	}
	return preds
}
