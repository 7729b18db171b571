package series

import (
	"math"
	"testing"
)

func monthlySeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func TestValidate(t *testing.T) {
	allNaN := make([]float64, 12)
	oneFinite := make([]float64, 12)
	for i := range allNaN {
		allNaN[i] = math.NaN()
		oneFinite[i] = math.Inf(1)
	}
	oneFinite[7] = 42

	tests := []struct {
		name    string
		series  []float64
		wantErr bool
	}{
		{"too short", monthlySeries(11), true},
		{"minimum length", monthlySeries(12), false},
		{"maximum length", monthlySeries(120), false},
		{"too long", monthlySeries(121), true},
		{"empty", nil, true},
		{"all NaN", allNaN, true},
		{"one finite among infinities", oneFinite, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.series)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	s := monthlySeries(24)
	if Fingerprint(s) != Fingerprint(monthlySeries(24)) {
		t.Error("identical series produced different fingerprints")
	}
}

func TestFingerprint_DistinguishesContent(t *testing.T) {
	base := []float64{1, 2, 3}
	if Fingerprint(base) == Fingerprint([]float64{1, 2, 4}) {
		t.Error("changed value did not change the fingerprint")
	}
	if Fingerprint(base) == Fingerprint([]float64{3, 2, 1}) {
		t.Error("reordered values did not change the fingerprint")
	}
	if Fingerprint(base) == Fingerprint(base[:2]) {
		t.Error("truncated series did not change the fingerprint")
	}
}

func TestFingerprint_NaNStable(t *testing.T) {
	s := []float64{1, math.NaN(), 3}
	if Fingerprint(s) != Fingerprint([]float64{1, math.NaN(), 3}) {
		t.Error("NaN series fingerprint is not deterministic")
	}
}
