package models

import (
	"context"
	"fmt"
	"math"

	"github.com/demandcast/demandcast/pkg/accuracy"
)

// Seasonal forms tried by the Holt-Winters search.
const (
	seasonalAdditive       = "add"
	seasonalMultiplicative = "mul"
)

var hwSeasonalForms = []string{seasonalAdditive, seasonalMultiplicative}

// Smoothing weight grids for the internal optimizer. Coarse on purpose: the
// weights are solver internals, not searched hyperparameters, so a small
// deterministic grid minimizing one-step-ahead squared error stands in for a
// full numerical optimization.
var (
	hwAlphas = []float64{0.1, 0.3, 0.5, 0.7, 0.9}
	hwBetas  = []float64{0.05, 0.1, 0.3}
	hwGammas = []float64{0.05, 0.1, 0.3}
)

// HoltWintersModel applies triple exponential smoothing: level, trend, and a
// repeating seasonal component of fixed period.
//
// Fit tries the additive and multiplicative seasonal forms and keeps the one
// with the lowest defined MAPE. Initial level, trend, and seasonal components
// are estimated from the data (first-season mean, averaged cross-season
// slope, per-slot deviations from season means). A form that cannot fit is
// skipped: both forms need two full seasonal cycles, and the multiplicative
// form additionally needs strictly positive values. When neither form fits
// the family reports a failure and is excluded from the ensemble.
//
// Project re-fits the winning form and forecasts from the final state:
// (level + k*trend) combined with the seasonal component for each future
// slot, added or multiplied according to the form.
type HoltWintersModel struct {
	period int
}

// NewHoltWintersModel creates a Holt-Winters model with the given seasonal
// period. A period <= 0 defaults to 12 (monthly data, yearly cycle).
func NewHoltWintersModel(period int) *HoltWintersModel {
	if period <= 0 {
		period = 12
	}
	return &HoltWintersModel{period: period}
}

// Name returns the family display name.
func (m *HoltWintersModel) Name() string {
	return FamilyHoltWinters
}

// Fit tries both seasonal forms and returns the better one.
func (m *HoltWintersModel) Fit(ctx context.Context, series []float64) (*FitResult, error) {
	form, res, err := m.searchForm(ctx, series)
	if err != nil {
		return nil, err
	}
	return &FitResult{
		Family:      m.Name(),
		Predictions: res.predictions,
		Metrics:     res.metrics,
		Params:      Params{"seasonal": form, "seasonal_periods": m.period},
		Description: describe(m.Name()),
	}, nil
}

// Project re-fits the best seasonal form and forecasts natively from the
// final level, trend, and seasonal state.
func (m *HoltWintersModel) Project(ctx context.Context, series []float64, horizon int) ([]float64, error) {
	if horizon <= 0 {
		return []float64{}, nil
	}
	form, _, err := m.searchForm(ctx, series)
	if err != nil {
		return nil, err
	}
	state, err := hwFit(series, m.period, form)
	if err != nil {
		return nil, err
	}
	return state.forecast(len(series), horizon), nil
}

func (m *HoltWintersModel) searchForm(ctx context.Context, series []float64) (string, evalResult, error) {
	eval := func(form string) (evalResult, error) {
		state, err := hwFit(series, m.period, form)
		if err != nil {
			return evalResult{}, err
		}
		metrics, err := accuracy.Calculate(series, state.fitted)
		if err != nil {
			return evalResult{}, err
		}
		return evalResult{predictions: state.fitted, metrics: metrics}, nil
	}

	form, res, ok, err := searchBest(ctx, hwSeasonalForms, eval)
	if err != nil {
		return "", evalResult{}, fmt.Errorf("holtwinters: %w", err)
	}
	if !ok {
		return "", evalResult{}, fmt.Errorf("holtwinters: no seasonal form fit the series")
	}
	return form, res, nil
}

// hwState is a fitted Holt-Winters model: the smoothing weights chosen by
// the optimizer, the in-sample predictions, and the final components the
// forecast continues from.
type hwState struct {
	multiplicative bool
	period         int

	alpha, beta, gamma float64

	fitted    []float64
	level     float64
	trend     float64
	seasonals []float64
}

// hwFit estimates initial components from the data and picks the smoothing
// weights with the lowest in-sample sum of squared errors.
func hwFit(series []float64, period int, form string) (*hwState, error) {
	n := len(series)
	if n < 2*period {
		return nil, fmt.Errorf("holtwinters: need at least %d observations for period %d, have %d", 2*period, period, n)
	}

	multiplicative := form == seasonalMultiplicative
	if multiplicative {
		for _, v := range series {
			if v <= 0 {
				return nil, fmt.Errorf("holtwinters: multiplicative form requires strictly positive values")
			}
		}
	}

	level0, trend0, seasonals0 := hwInitialState(series, period, multiplicative)

	var best *hwState
	bestSSE := math.Inf(1)

	for _, alpha := range hwAlphas {
		for _, beta := range hwBetas {
			for _, gamma := range hwGammas {
				state, ok := hwRun(series, period, multiplicative, alpha, beta, gamma, level0, trend0, seasonals0)
				if !ok {
					continue
				}

				var sse float64
				for i := range series {
					d := series[i] - state.fitted[i]
					sse += d * d
				}
				if math.IsNaN(sse) || math.IsInf(sse, 0) {
					continue
				}
				if sse < bestSSE {
					bestSSE = sse
					best = state
				}
			}
		}
	}

	if best == nil {
		return nil, fmt.Errorf("holtwinters: %s form did not converge", form)
	}
	return best, nil
}

// hwInitialState estimates starting components the classic way: level from
// the first season's mean, trend from the averaged slope between the first
// two seasons, seasonal components from per-slot deviations (or ratios, for
// the multiplicative form) against full-season means.
func hwInitialState(series []float64, period int, multiplicative bool) (level, trend float64, seasonals []float64) {
	seasons := len(series) / period

	avgs := make([]float64, seasons)
	for s := 0; s < seasons; s++ {
		avgs[s] = mean(series[s*period : (s+1)*period])
	}

	seasonals = make([]float64, period)
	for i := 0; i < period; i++ {
		var sum float64
		for s := 0; s < seasons; s++ {
			if multiplicative {
				sum += series[s*period+i] / avgs[s]
			} else {
				sum += series[s*period+i] - avgs[s]
			}
		}
		seasonals[i] = sum / float64(seasons)
	}

	level = avgs[0]

	var slope float64
	for i := 0; i < period; i++ {
		slope += (series[period+i] - series[i]) / float64(period)
	}
	trend = slope / float64(period)

	return level, trend, seasonals
}

// hwRun executes the smoothing recurrences over the whole series for one
// weight combination. The prediction for period i uses the state after
// period i-1 and the seasonal component from one full period earlier, so
// fitted values are true one-step-ahead predictions. Returns ok=false when
// the recurrence diverges.
func hwRun(series []float64, period int, multiplicative bool, alpha, beta, gamma, level0, trend0 float64, seasonals0 []float64) (*hwState, bool) {
	n := len(series)

	fitted := make([]float64, n)
	seasonals := make([]float64, period)
	copy(seasonals, seasonals0)

	level, trend := level0, trend0

	for i := 0; i < n; i++ {
		si := seasonals[i%period]
		base := level + trend

		if multiplicative {
			if si == 0 || base == 0 {
				return nil, false
			}
			fitted[i] = base * si
		} else {
			fitted[i] = base + si
		}

		y := series[i]
		var newLevel float64
		if multiplicative {
			newLevel = alpha*(y/si) + (1-alpha)*base
		} else {
			newLevel = alpha*(y-si) + (1-alpha)*base
		}
		newTrend := beta*(newLevel-level) + (1-beta)*trend

		if multiplicative {
			seasonals[i%period] = gamma*(y/base) + (1-gamma)*si
		} else {
			seasonals[i%period] = gamma*(y-level-trend) + (1-gamma)*si
		}

		level, trend = newLevel, newTrend
		if math.IsNaN(level) || math.IsInf(level, 0) || math.IsNaN(trend) || math.IsInf(trend, 0) {
			return nil, false
		}
	}

	return &hwState{
		multiplicative: multiplicative,
		period:         period,
		alpha:          alpha,
		beta:           beta,
		gamma:          gamma,
		fitted:         fitted,
		level:          level,
		trend:          trend,
		seasonals:      seasonals,
	}, true
}

// forecast projects horizon values past the end of a series of length n.
func (s *hwState) forecast(n, horizon int) []float64 {
	out := make([]float64, horizon)
	for k := 0; k < horizon; k++ {
		si := s.seasonals[(n+k)%s.period]
		base := s.level + float64(k+1)*s.trend
		if s.multiplicative {
			out[k] = base * si
		} else {
			out[k] = base + si
		}
	}
	return out
}
