package models

import (
	"context"
	"fmt"
	"math"

	"github.com/demandcast/demandcast/pkg/accuracy"
)

// arimaOrder is a (p,d,q) specification: p autoregressive terms, d rounds of
// differencing, q moving-average terms.
type arimaOrder struct {
	p, d, q int
}

func (o arimaOrder) String() string {
	return fmt.Sprintf("(%d,%d,%d)", o.p, o.d, o.q)
}

// arimaOrders lists the candidate orders tried by the search, a small set of
// standard configurations for monthly demand data.
var arimaOrders = []arimaOrder{
	{1, 1, 1},
	{0, 1, 1},
	{1, 1, 0},
	{2, 1, 2},
	{0, 1, 0},
	{1, 0, 1},
}

var arimaDefaultOrder = arimaOrder{1, 1, 1}

// ARIMAModel fits AutoRegressive Integrated Moving Average models.
//
// Fit tries each candidate order and keeps the one with the lowest defined
// MAPE. Orders that fail to fit are skipped. When no candidate produces a
// defined score the default order (1,1,1) is kept as long as it fits at all;
// if even that fails the family reports a failure and is excluded from the
// ensemble.
//
// Estimation is conditional sum of squares: the series is differenced d
// times, AR coefficients are seeded from the Yule-Walker equations, MA
// coefficients start at 0.1, and both are refined by gradient descent on the
// conditional squared errors with coefficients clamped to (-0.99, 0.99) for
// stationarity and invertibility. In-sample predictions are mapped back to
// the original scale; the first d positions have no prediction and carry NaN
// so accuracy metrics skip them.
//
// Project re-fits the winning order, extends the differenced series
// recursively with future residuals at zero, and integrates the result back
// to the original scale.
type ARIMAModel struct{}

// NewARIMAModel creates an ARIMA model.
func NewARIMAModel() *ARIMAModel {
	return &ARIMAModel{}
}

// Name returns the family display name.
func (m *ARIMAModel) Name() string {
	return FamilyARIMA
}

// Fit searches the candidate orders and returns the best fit.
func (m *ARIMAModel) Fit(ctx context.Context, series []float64) (*FitResult, error) {
	order, res, err := m.searchOrder(ctx, series)
	if err != nil {
		return nil, err
	}
	return &FitResult{
		Family:      m.Name(),
		Predictions: res.predictions,
		Metrics:     res.metrics,
		Params:      Params{"order": []int{order.p, order.d, order.q}},
		Description: describe(m.Name()),
	}, nil
}

// Project re-fits the best order and forecasts natively from the fitted
// coefficients.
func (m *ARIMAModel) Project(ctx context.Context, series []float64, horizon int) ([]float64, error) {
	if horizon <= 0 {
		return []float64{}, nil
	}
	order, _, err := m.searchOrder(ctx, series)
	if err != nil {
		return nil, err
	}
	fit, err := fitARIMA(series, order)
	if err != nil {
		return nil, err
	}
	return fit.forecast(horizon), nil
}

func (m *ARIMAModel) searchOrder(ctx context.Context, series []float64) (arimaOrder, evalResult, error) {
	eval := func(order arimaOrder) (evalResult, error) {
		fit, err := fitARIMA(series, order)
		if err != nil {
			return evalResult{}, err
		}
		metrics, err := accuracy.Calculate(series, fit.fitted)
		if err != nil {
			return evalResult{}, err
		}
		return evalResult{predictions: fit.fitted, metrics: metrics}, nil
	}

	order, res, ok, err := searchBest(ctx, arimaOrders, eval)
	if err != nil {
		return arimaOrder{}, evalResult{}, fmt.Errorf("arima: %w", err)
	}
	if ok {
		return order, res, nil
	}

	// No candidate produced a defined score. Keep the default order when it
	// at least fits, mirroring the default fallbacks of the other families.
	res, err = eval(arimaDefaultOrder)
	if err != nil {
		return arimaOrder{}, evalResult{}, fmt.Errorf("arima: no candidate order fit the series")
	}
	return arimaDefaultOrder, res, nil
}

// arimaFit is a fitted ARIMA model: the estimated coefficients, the
// residuals and differenced series the forecast recursion continues from,
// and the one-step in-sample predictions on the original scale.
type arimaFit struct {
	order     arimaOrder
	intercept float64
	arCoeffs  []float64
	maCoeffs  []float64

	diffed    []float64
	residuals []float64
	fitted    []float64

	// Last observed value at each differencing level below d, the anchors
	// for integrating forecasts back to the original scale.
	lastValues []float64
}

// fitARIMA estimates an ARIMA model of the given order by conditional sum
// of squares.
func fitARIMA(series []float64, order arimaOrder) (*arimaFit, error) {
	minObs := order.d + max(order.p, order.q) + 3
	if len(series) < minObs {
		return nil, fmt.Errorf("arima: order %s needs at least %d observations, have %d", order, minObs, len(series))
	}

	levels := differenceLevels(series, order.d)
	diffed := levels[order.d]

	intercept := mean(diffed)

	ar := arimaInitAR(diffed, order.p)
	ma := make([]float64, order.q)
	for i := range ma {
		ma[i] = 0.1
	}

	arimaOptimize(diffed, order.p, order.q, intercept, ar, ma)

	fittedDiffed, residuals := arimaFinalPass(diffed, order.p, order.q, intercept, ar, ma)

	fitted := arimaOriginalScale(series, fittedDiffed, order.d)
	for t := order.d; t < len(fitted); t++ {
		if math.IsNaN(fitted[t]) || math.IsInf(fitted[t], 0) {
			return nil, fmt.Errorf("arima: order %s produced non-finite predictions", order)
		}
	}

	lastValues := make([]float64, order.d)
	for k := 0; k < order.d; k++ {
		lastValues[k] = levels[k][len(levels[k])-1]
	}

	return &arimaFit{
		order:      order,
		intercept:  intercept,
		arCoeffs:   ar,
		maCoeffs:   ma,
		diffed:     diffed,
		residuals:  residuals,
		fitted:     fitted,
		lastValues: lastValues,
	}, nil
}

// forecast extends the differenced series horizon steps past its end, with
// future residuals at their expected value of zero, then integrates each
// differencing level back, anchored at the last observed value of the level
// below.
func (f *arimaFit) forecast(horizon int) []float64 {
	p, q := f.order.p, f.order.q
	n := len(f.diffed)

	extended := make([]float64, n, n+horizon)
	copy(extended, f.diffed)
	residuals := make([]float64, n, n+horizon)
	copy(residuals, f.residuals)

	for h := 0; h < horizon; h++ {
		t := n + h
		pred := f.intercept
		for i := 0; i < p; i++ {
			pred += f.arCoeffs[i] * (extended[t-i-1] - f.intercept)
		}
		for i := 0; i < q; i++ {
			pred += f.maCoeffs[i] * residuals[t-i-1]
		}
		extended = append(extended, pred)
		residuals = append(residuals, 0)
	}

	out := make([]float64, horizon)
	copy(out, extended[n:])

	for k := f.order.d - 1; k >= 0; k-- {
		prev := f.lastValues[k]
		for j := range out {
			out[j] += prev
			prev = out[j]
		}
	}
	return out
}

// differenceLevels returns the series differenced 0 through d times.
// levels[0] is the input itself; each level has one fewer element than the
// one before it.
func differenceLevels(series []float64, d int) [][]float64 {
	levels := make([][]float64, d+1)
	levels[0] = series
	for k := 1; k <= d; k++ {
		prev := levels[k-1]
		next := make([]float64, len(prev)-1)
		for i := range next {
			next[i] = prev[i+1] - prev[i]
		}
		levels[k] = next
	}
	return levels
}

// arimaInitAR seeds the AR coefficients from the Yule-Walker equations.
// Falls back to a mild fixed seed when the recursion degenerates; gradient
// refinement corrects it from there.
func arimaInitAR(diffed []float64, p int) []float64 {
	if p == 0 {
		return []float64{}
	}
	coeffs := make([]float64, p)

	acf := make([]float64, p+1)
	for k := 0; k <= p; k++ {
		acf[k] = autocorrelation(diffed, k)
	}

	solved, ok := levinsonDurbin(acf, p)
	if !ok {
		coeffs[0] = 0.5
		return coeffs
	}
	copy(coeffs, solved)
	return coeffs
}

// arimaOptimize refines the AR and MA coefficients in place by gradient
// descent on the conditional sum of squared errors. Coefficients are clamped
// to (-0.99, 0.99) after each step to keep the model stationary and
// invertible.
func arimaOptimize(y []float64, p, q int, intercept float64, ar, ma []float64) {
	const (
		maxIter      = 100
		tolerance    = 1e-6
		learningRate = 0.01
	)

	n := len(y)
	start := max(p, q)
	residuals := make([]float64, n)

	prevSSE := arimaConditionalResiduals(y, p, q, intercept, ar, ma, residuals)

	for iter := 0; iter < maxIter; iter++ {
		arGrad := make([]float64, p)
		maGrad := make([]float64, q)
		for t := start; t < n; t++ {
			for i := 0; i < p; i++ {
				arGrad[i] -= 2 * residuals[t] * (y[t-i-1] - intercept)
			}
			for i := 0; i < q; i++ {
				maGrad[i] -= 2 * residuals[t] * residuals[t-i-1]
			}
		}

		for i := 0; i < p; i++ {
			ar[i] -= learningRate * arGrad[i] / float64(n)
			ar[i] = min(0.99, max(-0.99, ar[i]))
		}
		for i := 0; i < q; i++ {
			ma[i] -= learningRate * maGrad[i] / float64(n)
			ma[i] = min(0.99, max(-0.99, ma[i]))
		}

		sse := arimaConditionalResiduals(y, p, q, intercept, ar, ma, residuals)
		if math.Abs(prevSSE-sse) < tolerance {
			break
		}
		prevSSE = sse
	}
}

// arimaConditionalResiduals fills residuals with the one-step errors for the
// given parameters and returns the sum of squared errors. The first max(p,q)
// positions are conditioned at zero.
func arimaConditionalResiduals(y []float64, p, q int, intercept float64, ar, ma, residuals []float64) float64 {
	n := len(y)
	start := max(p, q)
	for t := 0; t < start && t < n; t++ {
		residuals[t] = 0
	}

	var sse float64
	for t := start; t < n; t++ {
		pred := intercept
		for i := 0; i < p; i++ {
			pred += ar[i] * (y[t-i-1] - intercept)
		}
		for i := 0; i < q; i++ {
			pred += ma[i] * residuals[t-i-1]
		}
		residuals[t] = y[t] - pred
		sse += residuals[t] * residuals[t]
	}
	return sse
}

// arimaFinalPass computes the final fitted values and residuals on the
// differenced scale. Warm-up positions before max(p,q) are predicted by the
// intercept alone; later positions use the full AR and MA terms with the
// residuals accumulated so far.
func arimaFinalPass(y []float64, p, q int, intercept float64, ar, ma []float64) (fitted, residuals []float64) {
	n := len(y)
	start := max(p, q)
	fitted = make([]float64, n)
	residuals = make([]float64, n)

	for t := 0; t < n; t++ {
		pred := intercept
		if t >= start {
			for i := 0; i < p; i++ {
				pred += ar[i] * (y[t-i-1] - intercept)
			}
			for i := 0; i < q; i++ {
				pred += ma[i] * residuals[t-i-1]
			}
		}
		fitted[t] = pred
		residuals[t] = y[t] - pred
	}
	return fitted, residuals
}

// arimaOriginalScale maps one-step predictions on the differenced scale back
// to the original scale. The prediction at differenced index i targets
// original index i+d and is reconstructed with the d preceding actual
// values. The first d positions have no prediction and carry NaN.
func arimaOriginalScale(series, fittedDiffed []float64, d int) []float64 {
	if d == 0 {
		out := make([]float64, len(fittedDiffed))
		copy(out, fittedDiffed)
		return out
	}

	out := make([]float64, len(series))
	for t := 0; t < d; t++ {
		out[t] = math.NaN()
	}
	for t := d; t < len(series); t++ {
		v := fittedDiffed[t-d]
		coeff := 1.0
		for j := 1; j <= d; j++ {
			coeff = coeff * float64(d-j+1) / float64(j)
			if j%2 == 1 {
				v += coeff * series[t-j]
			} else {
				v -= coeff * series[t-j]
			}
		}
		out[t] = v
	}
	return out
}

// autocorrelation computes the sample autocorrelation at the given lag.
func autocorrelation(series []float64, lag int) float64 {
	n := len(series)
	if lag < 0 || lag >= n {
		return 0
	}

	m := mean(series)
	var c0, ck float64
	for i := 0; i < n; i++ {
		c0 += (series[i] - m) * (series[i] - m)
	}
	for i := 0; i < n-lag; i++ {
		ck += (series[i] - m) * (series[i+lag] - m)
	}
	if c0 == 0 {
		return 0
	}
	return ck / c0
}

// levinsonDurbin solves the Yule-Walker equations by the Levinson-Durbin
// recursion. Returns ok=false when the recursion degenerates.
func levinsonDurbin(acf []float64, p int) ([]float64, bool) {
	phi := make([][]float64, p+1)
	for i := range phi {
		phi[i] = make([]float64, p+1)
	}

	v := acf[0]
	for k := 1; k <= p; k++ {
		if v == 0 {
			return nil, false
		}
		num := acf[k]
		for j := 1; j < k; j++ {
			num -= phi[k-1][j] * acf[k-j]
		}
		phi[k][k] = num / v
		for j := 1; j < k; j++ {
			phi[k][j] = phi[k-1][j] - phi[k][k]*phi[k-1][k-j]
		}
		v *= 1 - phi[k][k]*phi[k][k]
		if v < 0 {
			return nil, false
		}
	}

	coeffs := make([]float64, p)
	for i := 0; i < p; i++ {
		coeffs[i] = phi[p][i+1]
	}
	return coeffs, true
}
