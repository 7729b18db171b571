package models

import (
	"context"
	"math"
	"testing"
)

func TestHWInitialState_Additive(t *testing.T) {
	series := []float64{10, 20, 30, 10, 20, 30}
	level, trend, seasonals := hwInitialState(series, 3, false)

	if level != 20 {
		t.Errorf("level = %f, want 20", level)
	}
	if trend != 0 {
		t.Errorf("trend = %f, want 0", trend)
	}
	want := []float64{-10, 0, 10}
	for i := range want {
		if seasonals[i] != want[i] {
			t.Errorf("seasonals[%d] = %f, want %f", i, seasonals[i], want[i])
		}
	}
}

func TestHWInitialState_Multiplicative(t *testing.T) {
	series := []float64{10, 20, 30, 10, 20, 30}
	_, _, seasonals := hwInitialState(series, 3, true)

	want := []float64{0.5, 1.0, 1.5}
	for i := range want {
		if seasonals[i] != want[i] {
			t.Errorf("seasonals[%d] = %f, want %f", i, seasonals[i], want[i])
		}
	}
}

func TestHWFit_ShortSeries(t *testing.T) {
	if _, err := hwFit(constantSeries(23, 10), 12, seasonalAdditive); err == nil {
		t.Error("expected error below two full cycles")
	}
}

func TestHWFit_MultiplicativeRequiresPositive(t *testing.T) {
	series := seasonalSeries(48, 12, 0, 50)

	if _, err := hwFit(series, 12, seasonalMultiplicative); err == nil {
		t.Error("expected error for non-positive values")
	}
	if _, err := hwFit(series, 12, seasonalAdditive); err != nil {
		t.Errorf("additive form error = %v, want nil", err)
	}
}

func TestHoltWintersModel_Fit_Seasonal(t *testing.T) {
	model := NewHoltWintersModel(12)
	series := seasonalSeries(48, 12, 200, 50)

	res, err := model.Fit(context.Background(), series)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if res.Family != FamilyHoltWinters {
		t.Errorf("Family = %q, want %q", res.Family, FamilyHoltWinters)
	}
	form, _ := res.Params["seasonal"].(string)
	if form != seasonalAdditive && form != seasonalMultiplicative {
		t.Errorf(`Params["seasonal"] = %v, want "add" or "mul"`, res.Params["seasonal"])
	}
	if res.Params["seasonal_periods"] != 12 {
		t.Errorf(`Params["seasonal_periods"] = %v, want 12`, res.Params["seasonal_periods"])
	}
	if len(res.Predictions) != len(series) {
		t.Errorf("predictions length = %d, want %d", len(res.Predictions), len(series))
	}
	if math.IsNaN(res.Metrics.MAPE) {
		t.Error("expected a defined MAPE on a clean seasonal series")
	}
}

func TestHoltWintersModel_Fit_AdditiveWhenNegative(t *testing.T) {
	model := NewHoltWintersModel(12)
	series := seasonalSeries(48, 12, 0, 50)

	res, err := model.Fit(context.Background(), series)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if res.Params["seasonal"] != seasonalAdditive {
		t.Errorf(`Params["seasonal"] = %v, want %q`, res.Params["seasonal"], seasonalAdditive)
	}
}

func TestHoltWintersModel_Fit_ShortSeries(t *testing.T) {
	model := NewHoltWintersModel(12)

	if _, err := model.Fit(context.Background(), constantSeries(20, 10)); err == nil {
		t.Error("expected error for series below two cycles")
	}
}

func TestHoltWintersModel_Fit_AllZeros(t *testing.T) {
	model := NewHoltWintersModel(12)

	if _, err := model.Fit(context.Background(), constantSeries(36, 0)); err == nil {
		t.Error("expected error for all-zero demand")
	}
}

func TestHoltWintersModel_Project_Constant(t *testing.T) {
	model := NewHoltWintersModel(12)
	series := constantSeries(36, 100)

	forecast, err := model.Project(context.Background(), series, 12)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	if len(forecast) != 12 {
		t.Fatalf("forecast length = %d, want 12", len(forecast))
	}
	for i, v := range forecast {
		if math.Abs(v-100) > 1e-6 {
			t.Errorf("forecast[%d] = %f, want 100", i, v)
		}
	}
}

func TestHoltWintersModel_Project_SeasonalBounds(t *testing.T) {
	model := NewHoltWintersModel(12)
	series := seasonalSeries(48, 12, 200, 50)

	forecast, err := model.Project(context.Background(), series, 24)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	if len(forecast) != 24 {
		t.Fatalf("forecast length = %d, want 24", len(forecast))
	}
	for i, v := range forecast {
		if math.IsNaN(v) || v < 100 || v > 300 {
			t.Errorf("forecast[%d] = %f, want within the seasonal envelope", i, v)
		}
	}
}

func TestHoltWintersModel_Project_ZeroHorizon(t *testing.T) {
	model := NewHoltWintersModel(12)

	forecast, err := model.Project(context.Background(), seasonalSeries(48, 12, 200, 50), 0)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if len(forecast) != 0 {
		t.Errorf("forecast length = %d, want 0", len(forecast))
	}
}

func TestNewHoltWintersModel_DefaultPeriod(t *testing.T) {
	if m := NewHoltWintersModel(0); m.period != 12 {
		t.Errorf("period = %d, want 12", m.period)
	}
}
