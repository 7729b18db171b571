package fitcache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/demandcast/demandcast/pkg/forecast"
	"github.com/demandcast/demandcast/pkg/metrics"
	"github.com/demandcast/demandcast/pkg/models"
)

// defaultMemoryEntries bounds each in-memory cache when no size is given.
const defaultMemoryEntries = 512

// memoryEntry wraps a cached value with its expiry time. A zero expiresAt
// means the entry never expires.
type memoryEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// MemoryStore is a size-bounded in-process cache with optional TTL
// expiration. Stale entries are dropped lazily on lookup; the LRU keeps the
// store bounded, so no background cleanup goroutine is needed. Safe for
// concurrent use.
type MemoryStore struct {
	ensembles *lru.Cache[uint64, memoryEntry[[]*models.FitResult]]
	forecasts *lru.Cache[Key, memoryEntry[forecast.Result]]
	ttl       time.Duration
	metrics   *metrics.Metrics
}

// NewMemoryStore creates an in-memory cache holding up to size entries per
// kind. size <= 0 uses the default bound; ttl 0 disables expiration. m may
// be nil to disable instrumentation.
func NewMemoryStore(size int, ttl time.Duration, m *metrics.Metrics) (*MemoryStore, error) {
	if size <= 0 {
		size = defaultMemoryEntries
	}
	ensembles, err := lru.New[uint64, memoryEntry[[]*models.FitResult]](size)
	if err != nil {
		return nil, err
	}
	forecasts, err := lru.New[Key, memoryEntry[forecast.Result]](size)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{
		ensembles: ensembles,
		forecasts: forecasts,
		ttl:       ttl,
		metrics:   m,
	}, nil
}

// PutEnsemble stores the evaluated ensemble for a series fingerprint,
// replacing any existing entry.
func (s *MemoryStore) PutEnsemble(ctx context.Context, seriesHash uint64, results []*models.FitResult) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	memPut(s.ensembles, seriesHash, results, s.ttl)
	return nil
}

// GetEnsemble retrieves the cached ensemble for a series fingerprint.
func (s *MemoryStore) GetEnsemble(ctx context.Context, seriesHash uint64) ([]*models.FitResult, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}
	results, found := memGet(s.ensembles, seriesHash)
	recordLookup(s.metrics, kindEnsemble, found)
	return results, found, nil
}

// PutForecast stores a generated forecast under its key, replacing any
// existing entry.
func (s *MemoryStore) PutForecast(ctx context.Context, key Key, result forecast.Result) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	memPut(s.forecasts, key, result, s.ttl)
	return nil
}

// GetForecast retrieves the cached forecast for a key.
func (s *MemoryStore) GetForecast(ctx context.Context, key Key) (forecast.Result, bool, error) {
	select {
	case <-ctx.Done():
		return forecast.Result{}, false, ctx.Err()
	default:
	}
	result, found := memGet(s.forecasts, key)
	recordLookup(s.metrics, kindForecast, found)
	return result, found, nil
}

// Close discards all cached entries. The store remains usable afterwards.
func (s *MemoryStore) Close() error {
	s.ensembles.Purge()
	s.forecasts.Purge()
	return nil
}

// Len returns the number of live ensemble and forecast entries. Useful for
// tests and metrics.
func (s *MemoryStore) Len() int {
	return s.ensembles.Len() + s.forecasts.Len()
}

// memPut stores value with the configured TTL stamped on the entry.
func memPut[K comparable, V any](c *lru.Cache[K, memoryEntry[V]], key K, value V, ttl time.Duration) {
	entry := memoryEntry[V]{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.Add(key, entry)
}

// memGet retrieves a live entry, dropping it when expired.
func memGet[K comparable, V any](c *lru.Cache[K, memoryEntry[V]], key K) (V, bool) {
	entry, ok := c.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.Remove(key)
		var zero V
		return zero, false
	}
	return entry.value, true
}
