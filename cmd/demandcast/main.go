// Command demandcast evaluates six demand-forecasting model families against
// a monthly demand series and reports them ranked by accuracy.
//
// A run:
//  1. Loads the demand series from a CSV or JSON file
//  2. Validates the business rules (12 to 120 monthly observations)
//  3. Fits every family concurrently and scores in-sample accuracy
//  4. Ranks the results by MAPE and reports the top N
//  5. Optionally projects future demand with one chosen family
//
// Evaluations can be cached by series content, so re-running identical data
// skips the fitting stage entirely. The Redis backend shares the cache
// across instances.
//
// Usage:
//
//	demandcast -input=demand.csv -top=5 \
//	  -family="Regresión Lineal" -horizon=12 \
//	  -cache=redis -redis-addr=localhost:6379
//
// Environment variables mirror the flags with a DEMANDCAST_ prefix:
//
//	DEMANDCAST_INPUT      - Demand series file (required)
//	DEMANDCAST_FORMAT     - Input format: auto, csv, json (default: auto)
//	DEMANDCAST_FAMILY     - Family display name to forecast with
//	DEMANDCAST_HORIZON    - Forecast periods (default: 12)
//	DEMANDCAST_CACHE      - Cache backend: none, memory, redis (default: none)
//	DEMANDCAST_LOG_LEVEL  - Logging level: debug, info, warn, error (default: info)
//	DEMANDCAST_LOG_FORMAT - Logging format: text, json (default: text)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/demandcast/demandcast/cmd/demandcast/config"
	"github.com/demandcast/demandcast/pkg/ensemble"
	"github.com/demandcast/demandcast/pkg/fitcache"
	"github.com/demandcast/demandcast/pkg/forecast"
	"github.com/demandcast/demandcast/pkg/metrics"
	"github.com/demandcast/demandcast/pkg/models"
	"github.com/demandcast/demandcast/pkg/series"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	cfg := config.ParseFlags()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	logger.Info("starting demandcast",
		"version", version,
		"input", cfg.Input,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	demand, err := loadSeries(cfg)
	if err != nil {
		return err
	}
	if err := series.Validate(demand); err != nil {
		return err
	}

	m := metrics.New()
	registry := models.NewRegistry()

	cache, err := openCache(cfg, m)
	if err != nil {
		return err
	}
	if cache != nil {
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Error("failed to close cache", "error", err)
			}
		}()
	}

	hash := series.Fingerprint(demand)

	var ranked []*models.FitResult
	if cache != nil {
		cached, found, err := cache.GetEnsemble(ctx, hash)
		if err != nil {
			logger.Warn("cache lookup failed", "error", err)
		} else if found {
			logger.Info("reusing cached evaluation", "series_hash", fmt.Sprintf("%016x", hash))
			ranked = cached
		}
	}
	if ranked == nil {
		runner := ensemble.New(registry, cfg.Workers, logger, m)
		ranked, err = runner.Evaluate(ctx, demand)
		if err != nil {
			return err
		}
		if cache != nil {
			if err := cache.PutEnsemble(ctx, hash, ranked); err != nil {
				logger.Warn("cache store failed", "error", err)
			}
		}
	}

	var fc *forecast.Result
	if cfg.Family != "" {
		key := fitcache.Key{SeriesHash: hash, Family: cfg.Family, Horizon: cfg.Horizon}
		if cache != nil {
			cached, found, err := cache.GetForecast(ctx, key)
			if err != nil {
				logger.Warn("cache lookup failed", "error", err)
			} else if found {
				logger.Info("reusing cached forecast", "family", cfg.Family)
				fc = &cached
			}
		}
		if fc == nil {
			generator := forecast.New(registry, logger, m)
			fc = generator.Generate(ctx, cfg.Family, demand, cfg.Horizon)
			if cache != nil && !fc.Fallback {
				if err := cache.PutForecast(ctx, key, *fc); err != nil {
					logger.Warn("cache store failed", "error", err)
				}
			}
		}
	}

	rep := report{
		Observations: len(demand),
		SeriesHash:   fmt.Sprintf("%016x", hash),
		Results:      ensemble.Top(ranked, cfg.Top),
		Forecast:     fc,
	}
	if cfg.Output == "json" {
		return writeJSONReport(os.Stdout, rep)
	}
	return writeTextReport(os.Stdout, rep)
}

// loadSeries reads the demand series from the configured input file,
// detecting the format from the extension when set to auto.
func loadSeries(cfg *config.Config) ([]float64, error) {
	format := cfg.Format
	if format == "auto" {
		switch strings.ToLower(filepath.Ext(cfg.Input)) {
		case ".csv":
			format = "csv"
		case ".json":
			format = "json"
		default:
			return nil, fmt.Errorf("cannot detect format of %q, pass -format", cfg.Input)
		}
	}
	if format == "json" {
		return series.LoadJSON(cfg.Input, cfg.JSONPath)
	}
	return series.LoadCSV(cfg.Input, cfg.CSVColumn)
}

// openCache builds the configured cache backend, nil when caching is off.
func openCache(cfg *config.Config, m *metrics.Metrics) (fitcache.Store, error) {
	switch cfg.Cache {
	case "memory":
		return fitcache.NewMemoryStore(cfg.CacheSize, cfg.CacheTTL, m)
	case "redis":
		return fitcache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, m)
	default:
		return nil, nil
	}
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
