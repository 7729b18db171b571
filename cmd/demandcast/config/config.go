// Package config provides configuration parsing for the demandcast CLI.
//
// It handles both command-line flags and environment variables, with flags
// taking precedence. Environment variables carry the DEMANDCAST_ prefix so
// the tool can run unconfigured next to other software.
//
// Supported configuration sources (in order of precedence):
//  1. Command-line flags
//  2. Environment variables
//  3. Default values
package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// Config holds all CLI configuration.
type Config struct {
	Input     string
	Format    string
	CSVColumn string
	JSONPath  string

	Top     int
	Workers int
	Family  string
	Horizon int
	Output  string
	Timeout time.Duration

	Cache         string
	CacheTTL      time.Duration
	CacheSize     int
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel  string
	LogFormat string
}

// ParseFlags parses command-line flags and environment variables into a
// Config. Environment variables are used as fallbacks when flags are not
// provided.
func ParseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.Input, "input", getEnv("DEMANDCAST_INPUT", ""), "Demand series file, CSV or JSON (required)")
	flag.StringVar(&cfg.Format, "format", getEnv("DEMANDCAST_FORMAT", "auto"), "Input format: auto, csv, or json")
	flag.StringVar(&cfg.CSVColumn, "csv-column", getEnv("DEMANDCAST_CSV_COLUMN", "demand"), "CSV column holding the demand values")
	flag.StringVar(&cfg.JSONPath, "json-path", getEnv("DEMANDCAST_JSON_PATH", "#.demand"), "JSON path to the demand values (gjson syntax)")

	flag.IntVar(&cfg.Top, "top", getEnvInt("DEMANDCAST_TOP", 10), "Number of ranked results to report")
	flag.IntVar(&cfg.Workers, "workers", getEnvInt("DEMANDCAST_WORKERS", 0), "Concurrent family fits (0 = one per family)")
	flag.StringVar(&cfg.Family, "family", getEnv("DEMANDCAST_FAMILY", ""), "Family display name to forecast with (omit to skip forecasting)")
	flag.IntVar(&cfg.Horizon, "horizon", getEnvInt("DEMANDCAST_HORIZON", 12), "Forecast periods")
	flag.StringVar(&cfg.Output, "output", getEnv("DEMANDCAST_OUTPUT", "text"), "Report format: text or json")
	flag.DurationVar(&cfg.Timeout, "timeout", getEnvDuration("DEMANDCAST_TIMEOUT", 0), "Overall run timeout (0 = none)")

	flag.StringVar(&cfg.Cache, "cache", getEnv("DEMANDCAST_CACHE", "none"), "Result cache backend: none, memory, or redis")
	flag.DurationVar(&cfg.CacheTTL, "cache-ttl", getEnvDuration("DEMANDCAST_CACHE_TTL", 30*time.Minute), "Cache entry TTL")
	flag.IntVar(&cfg.CacheSize, "cache-size", getEnvInt("DEMANDCAST_CACHE_SIZE", 512), "Memory cache entry bound per kind")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", getEnv("DEMANDCAST_REDIS_ADDR", "localhost:6379"), "Redis server address")
	flag.StringVar(&cfg.RedisPassword, "redis-password", getEnv("DEMANDCAST_REDIS_PASSWORD", ""), "Redis password")
	flag.IntVar(&cfg.RedisDB, "redis-db", getEnvInt("DEMANDCAST_REDIS_DB", 0), "Redis database number")

	flag.StringVar(&cfg.LogLevel, "log-level", getEnv("DEMANDCAST_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	flag.StringVar(&cfg.LogFormat, "log-format", getEnv("DEMANDCAST_LOG_FORMAT", "text"), "Log format: text or json")

	flag.Parse()

	if cfg.Input == "" {
		fmt.Fprintln(os.Stderr, "Error: --input is required")
		os.Exit(1)
	}

	return cfg
}

// Validate checks the parsed configuration for out-of-range or unknown
// values.
func (c *Config) Validate() error {
	switch c.Format {
	case "auto", "csv", "json":
	default:
		return fmt.Errorf("invalid format %q (must be auto, csv, or json)", c.Format)
	}

	switch c.Output {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output %q (must be text or json)", c.Output)
	}

	switch c.Cache {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("invalid cache %q (must be none, memory, or redis)", c.Cache)
	}

	if c.Top < 1 {
		return fmt.Errorf("top must be >= 1, got %d", c.Top)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", c.Workers)
	}
	if c.Horizon < 0 {
		return fmt.Errorf("horizon cannot be negative, got %d", c.Horizon)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache-size cannot be negative, got %d", c.CacheSize)
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("redis-db must be >= 0, got %d", c.RedisDB)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
