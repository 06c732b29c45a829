// Package config loads service settings from command-line flags, falling
// back to environment variables for anything not given on the command line.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/seller-analytics/internal/analytics"
	"github.com/dvloznov/seller-analytics/internal/logger"
)

// Store backends.
const (
	BackendBigQuery = "bigquery"
	BackendMemory   = "memory"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the settings shared by the API server and the CLI.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat logger.Format

	StoreBackend string
	SeedFile     string
	ProjectID    string
	DatasetID    string

	ReportBucket string
	ReportDir    string

	RedisAddr string
	CacheTTL  time.Duration

	MaxBestPeriodTransactions int
	QueueBuffer               int
	Workers                   int
}

// Default returns the settings used when neither flags nor environment
// override them.
func Default() Config {
	return Config{
		Port:                      "8080",
		LogLevel:                  "info",
		LogFormat:                 logger.FormatJSON,
		StoreBackend:              BackendBigQuery,
		DatasetID:                 "sales",
		ReportDir:                 "reports-out",
		CacheTTL:                  analytics.DefaultCacheTTL,
		MaxBestPeriodTransactions: analytics.DefaultMaxTransactions,
		QueueBuffer:               100,
		Workers:                   5,
	}
}

// Register binds the settings to fs. Defaults come from getenv, then from
// Default. Malformed numeric or duration variables are reported by the
// returned function after fs has been parsed.
func (c *Config) Register(fs *flag.FlagSet, getenv func(string) string) func() error {
	*c = Default()
	var envErrs []error

	str := func(p *string, name, env, usage string) {
		def := *p
		if v := getenv(env); v != "" {
			def = v
		}
		fs.StringVar(p, name, def, fmt.Sprintf("%s (or set %s env)", usage, env))
	}
	num := func(p *int, name, env, usage string) {
		def := *p
		if v := getenv(env); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				envErrs = append(envErrs, fmt.Errorf("%s: %w", env, err))
			} else {
				def = n
			}
		}
		fs.IntVar(p, name, def, fmt.Sprintf("%s (or set %s env)", usage, env))
	}
	dur := func(p *time.Duration, name, env, usage string) {
		def := *p
		if v := getenv(env); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				envErrs = append(envErrs, fmt.Errorf("%s: %w", env, err))
			} else {
				def = d
			}
		}
		fs.DurationVar(p, name, def, fmt.Sprintf("%s (or set %s env)", usage, env))
	}

	format := string(c.LogFormat)
	str(&c.Port, "port", "PORT", "HTTP server port")
	str(&c.LogLevel, "log-level", "LOG_LEVEL", "log level: debug, info, warn, error")
	str(&format, "log-format", "LOG_FORMAT", "log format: console or json")
	str(&c.StoreBackend, "store", "STORE_BACKEND", "record store: bigquery or memory")
	str(&c.SeedFile, "seed", "SEED_FILE", "JSON seed file for the memory store")
	str(&c.ProjectID, "project", "GCP_PROJECT", "GCP project ID for BigQuery")
	str(&c.DatasetID, "dataset", "BQ_DATASET", "BigQuery dataset holding sellers and transactions")
	str(&c.ReportBucket, "bucket", "REPORT_BUCKET", "GCS bucket for exported reports")
	str(&c.ReportDir, "report-dir", "REPORT_DIR", "local directory for reports when no bucket is set")
	str(&c.RedisAddr, "redis", "REDIS_ADDR", "Redis address for the result cache; in-process cache when empty")
	dur(&c.CacheTTL, "cache-ttl", "CACHE_TTL", "how long best-period results are cached; 0 disables caching")
	num(&c.MaxBestPeriodTransactions, "max-transactions", "BEST_PERIOD_MAX_TRANSACTIONS", "largest transaction list the best-period search accepts")
	num(&c.QueueBuffer, "queue-buffer", "QUEUE_BUFFER", "report job queue capacity")
	num(&c.Workers, "workers", "QUEUE_WORKERS", "concurrent report workers")

	return func() error {
		c.LogFormat = logger.Format(strings.ToLower(format))
		return errors.Join(envErrs...)
	}
}

// Load parses args with environment fallbacks and validates the result.
func Load(name string, args []string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	var cfg Config
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	finish := cfg.Register(fs, getenv)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("Load: parse flags: %w", err)
	}
	if err := finish(); err != nil {
		return nil, fmt.Errorf("Load: %w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that flag parsing cannot.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case BackendBigQuery:
		if c.ProjectID == "" {
			errs = append(errs, errors.New("project is required for the bigquery store"))
		}
		if c.DatasetID == "" {
			errs = append(errs, errors.New("dataset is required for the bigquery store"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.StoreBackend))
	}

	switch c.LogFormat {
	case logger.FormatConsole, logger.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("cache-ttl must not be negative"))
	}
	if c.MaxBestPeriodTransactions <= 0 {
		errs = append(errs, errors.New("max-transactions must be positive"))
	}
	if c.QueueBuffer < 0 {
		errs = append(errs, errors.New("queue-buffer must not be negative"))
	}
	if c.Workers <= 0 {
		errs = append(errs, errors.New("workers must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
