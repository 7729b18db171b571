package forecast

import (
	"encoding/json"
	"math"

	"github.com/demandcast/demandcast/pkg/models"
)

// Result is the outcome of one forecast request. The JSON field names match
// the report consumed by downstream tooling: model_name, forecast, periods,
// model_info, and an optional error string when the fallback was used.
type Result struct {
	// Family is the requested family display name, echoed even when the
	// name is unknown to the registry.
	Family string `json:"model_name"`

	// Values holds the projected demand, one entry per future period.
	Values []float64 `json:"forecast"`

	// Horizon is the requested number of periods.
	Horizon int `json:"periods"`

	// Description is the registry catalog entry for the family; zero when
	// the family is unknown.
	Description models.Description `json:"model_info"`

	// Fallback reports whether Values is the flat historical-mean
	// substitute rather than a model projection.
	Fallback bool `json:"fallback,omitempty"`

	// Reason describes why the fallback was used; empty on success.
	Reason string `json:"error,omitempty"`
}

// resultJSON mirrors Result with pointer values so non-finite entries
// round-trip through JSON as null.
type resultJSON struct {
	Family      string             `json:"model_name"`
	Values      []*float64         `json:"forecast"`
	Horizon     int                `json:"periods"`
	Description models.Description `json:"model_info"`
	Fallback    bool               `json:"fallback,omitempty"`
	Reason      string             `json:"error,omitempty"`
}

// MarshalJSON encodes non-finite forecast values as null.
func (r Result) MarshalJSON() ([]byte, error) {
	values := make([]*float64, len(r.Values))
	for i := range r.Values {
		if v := r.Values[i]; !math.IsNaN(v) && !math.IsInf(v, 0) {
			values[i] = &v
		}
	}
	return json.Marshal(resultJSON{
		Family:      r.Family,
		Values:      values,
		Horizon:     r.Horizon,
		Description: r.Description,
		Fallback:    r.Fallback,
		Reason:      r.Reason,
	})
}

// UnmarshalJSON decodes null forecast values back to NaN.
func (r *Result) UnmarshalJSON(data []byte) error {
	var aux resultJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Family = aux.Family
	r.Values = make([]float64, len(aux.Values))
	for i, v := range aux.Values {
		if v == nil {
			r.Values[i] = math.NaN()
		} else {
			r.Values[i] = *v
		}
	}
	r.Horizon = aux.Horizon
	r.Description = aux.Description
	r.Fallback = aux.Fallback
	r.Reason = aux.Reason
	return nil
}
