package fitcache

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/demandcast/demandcast/pkg/accuracy"
	"github.com/demandcast/demandcast/pkg/forecast"
	"github.com/demandcast/demandcast/pkg/metrics"
	"github.com/demandcast/demandcast/pkg/models"
)

func testEnsemble() []*models.FitResult {
	return []*models.FitResult{
		{
			Family:      models.FamilySMA,
			Predictions: []float64{math.NaN(), math.NaN(), math.NaN(), 110.5},
			Metrics:     accuracy.Metrics{MAE: 1.5, MSE: 2.25, RMSE: 1.5, MAPE: 4.2},
			Params:      models.Params{"window": 3},
		},
		{
			Family:      models.FamilyLinear,
			Predictions: []float64{100, 105, 110, 115},
			Metrics:     accuracy.Metrics{MAPE: 1.1},
			Params:      models.Params{"intercept": 100.0, "coefficient": 5.0},
		},
	}
}

func testForecast() forecast.Result {
	return forecast.Result{
		Family:  models.FamilyLinear,
		Values:  []float64{120, 125, 130},
		Horizon: 3,
	}
}

func TestNewMemoryStore_DefaultSize(t *testing.T) {
	store, err := NewMemoryStore(0, 0, nil)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	defer store.Close()

	if store.Len() != 0 {
		t.Errorf("Len = %d, want 0", store.Len())
	}
}

func TestMemoryStore_PutGetEnsemble(t *testing.T) {
	store, err := NewMemoryStore(16, 0, nil)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if err := store.PutEnsemble(ctx, 0xabc, testEnsemble()); err != nil {
		t.Fatalf("PutEnsemble: %v", err)
	}

	got, found, err := store.GetEnsemble(ctx, 0xabc)
	if err != nil {
		t.Fatalf("GetEnsemble: %v", err)
	}
	if !found {
		t.Fatal("GetEnsemble found = false, want true")
	}
	if len(got) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(got))
	}
	if got[0].Family != models.FamilySMA || got[1].Family != models.FamilyLinear {
		t.Errorf("families = %q, %q", got[0].Family, got[1].Family)
	}
	if !math.IsNaN(got[0].Predictions[0]) || got[0].Predictions[3] != 110.5 {
		t.Errorf("predictions not preserved: %v", got[0].Predictions)
	}
	if got[0].Metrics.MAPE != 4.2 {
		t.Errorf("MAPE = %v, want 4.2", got[0].Metrics.MAPE)
	}
}

func TestMemoryStore_GetEnsemble_NotFound(t *testing.T) {
	store, err := NewMemoryStore(16, 0, nil)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	defer store.Close()

	_, found, err := store.GetEnsemble(context.Background(), 0xdead)
	if err != nil {
		t.Fatalf("GetEnsemble: %v", err)
	}
	if found {
		t.Error("found = true for an empty store")
	}
}

func TestMemoryStore_PutGetForecast(t *testing.T) {
	store, err := NewMemoryStore(16, 0, nil)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	defer store.Close()
	ctx := context.Background()
	key := Key{SeriesHash: 0xabc, Family: models.FamilyLinear, Horizon: 3}

	if err := store.PutForecast(ctx, key, testForecast()); err != nil {
		t.Fatalf("PutForecast: %v", err)
	}

	got, found, err := store.GetForecast(ctx, key)
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	if !found {
		t.Fatal("GetForecast found = false, want true")
	}
	if got.Family != models.FamilyLinear || got.Horizon != 3 {
		t.Errorf("got %q horizon %d", got.Family, got.Horizon)
	}
	if len(got.Values) != 3 || got.Values[0] != 120 {
		t.Errorf("Values = %v", got.Values)
	}
}

func TestMemoryStore_ForecastKeyIncludesFamilyAndHorizon(t *testing.T) {
	store, err := NewMemoryStore(16, 0, nil)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	defer store.Close()
	ctx := context.Background()
	key := Key{SeriesHash: 0xabc, Family: models.FamilyLinear, Horizon: 3}

	if err := store.PutForecast(ctx, key, testForecast()); err != nil {
		t.Fatalf("PutForecast: %v", err)
	}

	otherFamily := Key{SeriesHash: 0xabc, Family: models.FamilySMA, Horizon: 3}
	if _, found, _ := store.GetForecast(ctx, otherFamily); found {
		t.Error("lookup with a different family hit the cached entry")
	}
	otherHorizon := Key{SeriesHash: 0xabc, Family: models.FamilyLinear, Horizon: 6}
	if _, found, _ := store.GetForecast(ctx, otherHorizon); found {
		t.Error("lookup with a different horizon hit the cached entry")
	}
}

func TestMemoryStore_TTL_Expiration(t *testing.T) {
	store, err := NewMemoryStore(16, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if err := store.PutEnsemble(ctx, 0xabc, testEnsemble()); err != nil {
		t.Fatalf("PutEnsemble: %v", err)
	}
	if _, found, _ := store.GetEnsemble(ctx, 0xabc); !found {
		t.Fatal("entry missing immediately after Put")
	}

	time.Sleep(120 * time.Millisecond)

	if _, found, _ := store.GetEnsemble(ctx, 0xabc); found {
		t.Error("entry still present after TTL elapsed")
	}
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	store, err := NewMemoryStore(2, 0, nil)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	for hash := uint64(1); hash <= 3; hash++ {
		if err := store.PutEnsemble(ctx, hash, testEnsemble()); err != nil {
			t.Fatalf("PutEnsemble(%d): %v", hash, err)
		}
	}

	if _, found, _ := store.GetEnsemble(ctx, 1); found {
		t.Error("oldest entry survived past the size bound")
	}
	if _, found, _ := store.GetEnsemble(ctx, 3); !found {
		t.Error("newest entry was evicted")
	}
}

func TestMemoryStore_RecordsHitsAndMisses(t *testing.T) {
	m := metrics.NewWith(prometheus.NewRegistry())
	store, err := NewMemoryStore(16, 0, m)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	store.GetEnsemble(ctx, 0xabc)
	store.PutEnsemble(ctx, 0xabc, testEnsemble())
	store.GetEnsemble(ctx, 0xabc)

	if got := testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("ensemble")); got != 1 {
		t.Errorf("miss counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("ensemble")); got != 1 {
		t.Errorf("hit counter = %v, want 1", got)
	}
}

func TestMemoryStore_ContextCancelled(t *testing.T) {
	store, err := NewMemoryStore(16, 0, nil)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.PutEnsemble(ctx, 0xabc, testEnsemble()); err == nil {
		t.Error("PutEnsemble succeeded on a cancelled context")
	}
	if _, _, err := store.GetEnsemble(ctx, 0xabc); err == nil {
		t.Error("GetEnsemble succeeded on a cancelled context")
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store, err := NewMemoryStore(64, 0, nil)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				hash := uint64(g*50 + i)
				if err := store.PutEnsemble(ctx, hash, testEnsemble()); err != nil {
					t.Errorf("PutEnsemble: %v", err)
					return
				}
				if _, _, err := store.GetEnsemble(ctx, hash); err != nil {
					t.Errorf("GetEnsemble: %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestMemoryStore_Close(t *testing.T) {
	store, err := NewMemoryStore(16, 0, nil)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	ctx := context.Background()

	store.PutEnsemble(ctx, 0xabc, testEnsemble())
	store.PutForecast(ctx, Key{SeriesHash: 0xabc, Family: models.FamilySMA, Horizon: 3}, testForecast())

	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d after Close, want 0", store.Len())
	}
}
