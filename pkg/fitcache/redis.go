package fitcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/demandcast/demandcast/pkg/forecast"
	"github.com/demandcast/demandcast/pkg/metrics"
	"github.com/demandcast/demandcast/pkg/models"
)

// RedisStore implements the Store interface using Redis as a backend. It
// lets multiple engine instances share evaluations of the same demand
// series, with TTL-based expiration.
type RedisStore struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	mu      sync.Mutex
}

// NewRedisStore creates a Redis-backed cache.
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string for no auth)
//   - db: Redis database number (typically 0)
//   - ttl: entry expiration duration (0 uses default of 30 minutes)
//   - m: instrumentation, may be nil
//
// Returns an error if the connection to Redis fails or if parameters are
// invalid.
func NewRedisStore(addr, password string, db int, ttl time.Duration, m *metrics.Metrics) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	if db < 0 {
		return nil, errors.New("redis database number must be >= 0")
	}

	if ttl == 0 {
		ttl = 30 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisStore{
		client:  client,
		ttl:     ttl,
		metrics: m,
	}, nil
}

// ensembleKey is the Redis key for one series' evaluated ensemble.
func ensembleKey(seriesHash uint64) string {
	return fmt.Sprintf("demandcast:ensemble:%016x", seriesHash)
}

// forecastKey is the Redis key for one generated forecast. The family
// display name is embedded verbatim; Redis keys are binary safe.
func forecastKey(key Key) string {
	return fmt.Sprintf("demandcast:forecast:%016x:%s:%d", key.SeriesHash, key.Family, key.Horizon)
}

// PutEnsemble stores the evaluated ensemble for a series fingerprint with
// TTL-based expiration.
func (r *RedisStore) PutEnsemble(ctx context.Context, seriesHash uint64, results []*models.FitResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal ensemble: %w", err)
	}
	if err := r.client.Set(ctx, ensembleKey(seriesHash), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store ensemble in redis: %w", err)
	}
	return nil
}

// GetEnsemble retrieves the cached ensemble for a series fingerprint.
//
// Returns:
//   - results: the cached ensemble (nil if not found)
//   - found: true if an entry exists, false if not found
//   - error: non-nil if an error occurred (excluding "not found")
func (r *RedisStore) GetEnsemble(ctx context.Context, seriesHash uint64) ([]*models.FitResult, bool, error) {
	data, err := r.client.Get(ctx, ensembleKey(seriesHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			recordLookup(r.metrics, kindEnsemble, false)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get ensemble from redis: %w", err)
	}

	var results []*models.FitResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal ensemble: %w", err)
	}
	recordLookup(r.metrics, kindEnsemble, true)
	return results, true, nil
}

// PutForecast stores a generated forecast with TTL-based expiration.
func (r *RedisStore) PutForecast(ctx context.Context, key Key, result forecast.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast: %w", err)
	}
	if err := r.client.Set(ctx, forecastKey(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store forecast in redis: %w", err)
	}
	return nil
}

// GetForecast retrieves the cached forecast for a key.
func (r *RedisStore) GetForecast(ctx context.Context, key Key) (forecast.Result, bool, error) {
	data, err := r.client.Get(ctx, forecastKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			recordLookup(r.metrics, kindForecast, false)
			return forecast.Result{}, false, nil
		}
		return forecast.Result{}, false, fmt.Errorf("failed to get forecast from redis: %w", err)
	}

	var result forecast.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return forecast.Result{}, false, fmt.Errorf("failed to unmarshal forecast: %w", err)
	}
	recordLookup(r.metrics, kindForecast, true)
	return result, true, nil
}

// Close closes the Redis client connection.
// It is safe to call multiple times (idempotent).
func (r *RedisStore) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil
	}

	err := r.client.Close()
	r.client = nil
	if err != nil && err.Error() == "redis: client is closed" {
		return nil
	}
	return err
}

// Ping checks the Redis connection health.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
