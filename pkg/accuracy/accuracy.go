// Package accuracy computes the fit-quality metrics used to score and rank
// forecasting models: MAE, MSE, RMSE, and MAPE.
//
// All four metrics treat NaN as a first-class "undefined" value rather than
// an error. Input pairs where either side is NaN are dropped before
// aggregation, and a metric that cannot be computed (no valid pairs, or no
// pair with a nonzero actual for MAPE) is reported as NaN instead of being
// coerced to zero. Callers test definedness with [Defined], never by
// comparing against NaN directly.
package accuracy

import (
	"encoding/json"
	"fmt"
	"math"
)

// Metrics holds the four accuracy metrics for one fitted model.
// A NaN field means the metric is undefined for the given inputs.
// NaN values marshal to JSON null and unmarshal back to NaN.
type Metrics struct {
	MAE  float64 `json:"mae"`
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"`
}

// metricsJSON mirrors Metrics with pointers so non-finite values round-trip
// through JSON as null. encoding/json rejects NaN and infinities outright.
type metricsJSON struct {
	MAE  *float64 `json:"mae"`
	MSE  *float64 `json:"mse"`
	RMSE *float64 `json:"rmse"`
	MAPE *float64 `json:"mape"`
}

// MarshalJSON encodes NaN metrics as null.
func (m Metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(metricsJSON{
		MAE:  floatPtr(m.MAE),
		MSE:  floatPtr(m.MSE),
		RMSE: floatPtr(m.RMSE),
		MAPE: floatPtr(m.MAPE),
	})
}

// UnmarshalJSON decodes null metrics back to NaN.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	var aux metricsJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.MAE = floatVal(aux.MAE)
	m.MSE = floatVal(aux.MSE)
	m.RMSE = floatVal(aux.RMSE)
	m.MAPE = floatVal(aux.MAPE)
	return nil
}

func floatPtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func floatVal(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// Defined reports whether a metric value is defined (not NaN).
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// Round2 rounds a value to 2 decimal places for reporting.
// NaN stays NaN so rounding never turns an undefined metric into a number.
func Round2(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Round(v*100) / 100
}

// Calculate computes MAE, MSE, RMSE, and MAPE between actual observations
// and model predictions of equal length.
//
// Semantics:
//  1. Pairs where either value is NaN are dropped. Window-based models
//     produce NaN predictions for their warm-up prefix, so this is the
//     normal case, not an edge case.
//  2. If no valid pair remains, every metric is NaN.
//  3. MAPE averages |actual-predicted|/|actual| only over valid pairs with
//     actual != 0, protecting against division by zero. If no such pair
//     exists, MAPE is NaN even when the other metrics are defined.
//  4. Defined values are rounded to 2 decimal places.
//
// Returns an error only when the slices differ in length.
func Calculate(actual, predicted []float64) (Metrics, error) {
	if len(actual) != len(predicted) {
		return Metrics{}, fmt.Errorf("accuracy: length mismatch: %d actual vs %d predicted", len(actual), len(predicted))
	}

	var (
		n      int
		sumAbs float64
		sumSq  float64

		pctN   int
		sumPct float64
	)

	for i := range actual {
		a, p := actual[i], predicted[i]
		if math.IsNaN(a) || math.IsNaN(p) {
			continue
		}

		diff := a - p
		n++
		sumAbs += math.Abs(diff)
		sumSq += diff * diff

		if a != 0 {
			pctN++
			sumPct += math.Abs(diff / a)
		}
	}

	if n == 0 {
		nan := math.NaN()
		return Metrics{MAE: nan, MSE: nan, RMSE: nan, MAPE: nan}, nil
	}

	mae := sumAbs / float64(n)
	mse := sumSq / float64(n)
	rmse := math.Sqrt(mse)

	mape := math.NaN()
	if pctN > 0 {
		mape = sumPct / float64(pctN) * 100
	}

	return Metrics{
		MAE:  Round2(mae),
		MSE:  Round2(mse),
		RMSE: Round2(rmse),
		MAPE: Round2(mape),
	}, nil
}
