package models

import (
	"context"
	"math"
	"testing"
)

func TestDemandFeatureRow(t *testing.T) {
	tests := []struct {
		index int
		want  []float64
	}{
		{0, []float64{0, 1, 1}},
		{2, []float64{2, 3, 1}},
		{11, []float64{11, 12, 4}},
		{12, []float64{12, 1, 1}},
		{13, []float64{13, 2, 1}},
		{23, []float64{23, 12, 4}},
		{24, []float64{24, 1, 1}},
	}

	for _, tt := range tests {
		got := demandFeatureRow(tt.index)
		for j := range tt.want {
			if got[j] != tt.want[j] {
				t.Errorf("demandFeatureRow(%d) = %v, want %v", tt.index, got, tt.want)
				break
			}
		}
	}
}

func TestRFGrowTree_SplitsOnThreshold(t *testing.T) {
	features := [][]float64{{0}, {1}, {2}, {3}}
	targets := []float64{0, 0, 10, 10}

	tree := rfGrowTree(features, targets, []int{0, 1, 2, 3}, 0, 0)
	if tree.left == nil {
		t.Fatal("expected the root to split")
	}
	if tree.threshold != 1.5 {
		t.Errorf("threshold = %f, want 1.5", tree.threshold)
	}

	forest := &rfForest{trees: []*rfNode{tree}}
	if got := forest.predict([]float64{0}); got != 0 {
		t.Errorf("predict(0) = %f, want 0", got)
	}
	if got := forest.predict([]float64{3}); got != 10 {
		t.Errorf("predict(3) = %f, want 10", got)
	}
}

func TestRFGrowTree_DepthCap(t *testing.T) {
	features := [][]float64{{0}, {1}, {2}, {3}}
	targets := []float64{0, 5, 10, 15}

	tree := rfGrowTree(features, targets, []int{0, 1, 2, 3}, 0, 1)
	if tree.left == nil {
		t.Fatal("expected the root to split")
	}
	if tree.left.left != nil || tree.right.left != nil {
		t.Error("expected children to be leaves at depth 1")
	}
}

func TestRandomForestModel_Fit_Deterministic(t *testing.T) {
	model := NewRandomForestModel()
	series := seasonalSeries(36, 12, 200, 50)

	first, err := model.Fit(context.Background(), series)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	second, err := model.Fit(context.Background(), series)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	for i := range first.Predictions {
		if first.Predictions[i] != second.Predictions[i] {
			t.Fatalf("Predictions[%d] differ between runs: %f vs %f", i, first.Predictions[i], second.Predictions[i])
		}
	}
	if first.Params["n_estimators"] != second.Params["n_estimators"] {
		t.Errorf("n_estimators differ: %v vs %v", first.Params["n_estimators"], second.Params["n_estimators"])
	}
}

func TestRandomForestModel_Fit_WithinObservedRange(t *testing.T) {
	model := NewRandomForestModel()
	series := seasonalSeries(36, 12, 200, 50)

	res, err := model.Fit(context.Background(), series)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if res.Family != FamilyForest {
		t.Errorf("Family = %q, want %q", res.Family, FamilyForest)
	}

	trees, ok := res.Params["n_estimators"].(int)
	if !ok || (trees != 50 && trees != 100) {
		t.Errorf(`Params["n_estimators"] = %v, want 50 or 100`, res.Params["n_estimators"])
	}
	switch d := res.Params["max_depth"].(type) {
	case nil:
	case int:
		if d != 5 && d != 10 {
			t.Errorf(`Params["max_depth"] = %d, want 5 or 10`, d)
		}
	default:
		t.Errorf(`Params["max_depth"] = %v, want nil or an int`, res.Params["max_depth"])
	}

	// Averaged leaf means cannot leave the range of the training values.
	lo, hi := 150.0, 250.0
	for i, p := range res.Predictions {
		if p < lo-1e-9 || p > hi+1e-9 {
			t.Errorf("Predictions[%d] = %f, want within [%f, %f]", i, p, lo, hi)
		}
	}
}

func TestRandomForestModel_Fit_NonFinite(t *testing.T) {
	model := NewRandomForestModel()
	series := constantSeries(24, 100)
	series[7] = math.NaN()

	if _, err := model.Fit(context.Background(), series); err == nil {
		t.Error("expected error for non-finite input")
	}
}

func TestRandomForestModel_Fit_AllZeros(t *testing.T) {
	model := NewRandomForestModel()

	if _, err := model.Fit(context.Background(), constantSeries(24, 0)); err == nil {
		t.Error("expected error for all-zero demand")
	}
}

func TestRandomForestModel_Project_Bounds(t *testing.T) {
	model := NewRandomForestModel()
	series := seasonalSeries(36, 12, 200, 50)

	forecast, err := model.Project(context.Background(), series, 12)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	if len(forecast) != 12 {
		t.Fatalf("forecast length = %d, want 12", len(forecast))
	}
	for k, v := range forecast {
		if v < 150-1e-9 || v > 250+1e-9 {
			t.Errorf("forecast[%d] = %f, want within the training range", k, v)
		}
	}
}

func TestRandomForestModel_Project_Deterministic(t *testing.T) {
	model := NewRandomForestModel()
	series := seasonalSeries(36, 12, 200, 50)

	first, err := model.Project(context.Background(), series, 12)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	second, err := model.Project(context.Background(), series, 12)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	for k := range first {
		if first[k] != second[k] {
			t.Fatalf("forecast[%d] differs between runs: %f vs %f", k, first[k], second[k])
		}
	}
}

func TestRandomForestModel_Project_ZeroHorizon(t *testing.T) {
	model := NewRandomForestModel()

	forecast, err := model.Project(context.Background(), seasonalSeries(36, 12, 200, 50), 0)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if len(forecast) != 0 {
		t.Errorf("forecast length = %d, want 0", len(forecast))
	}
}
