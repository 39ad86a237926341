// Package config loads and validates application configuration from YAML files
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
)

// Config is the top-level application configuration.
type Config struct {
	Search    SearchConfig    `yaml:"search"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// SearchConfig controls indexing and query execution.
type SearchConfig struct {
	StopWords        []string `yaml:"stopWords"`
	Policy           string   `yaml:"policy"`
	CorpusFile       string   `yaml:"corpusFile"`
	RemoveDuplicates bool     `yaml:"removeDuplicates"`
	Workers          int      `yaml:"workers"`
}

// AnalyticsConfig sizes the in-process query statistics.
type AnalyticsConfig struct {
	Enabled    bool `yaml:"enabled"`
	TopQueries int  `yaml:"topQueries"`
	BufferSize int  `yaml:"bufferSize"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls whether Prometheus metrics are written to stderr
// when a command finishes.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Policy: "sequential",
		},
		Analytics: AnalyticsConfig{
			TopQueries: 10,
			BufferSize: 10000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// applyEnvOverrides reads SP_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("SP_SEARCH_STOP_WORDS"); ok {
		cfg.Search.StopWords = strings.Fields(v)
	}
	if v := os.Getenv("SP_SEARCH_POLICY"); v != "" {
		cfg.Search.Policy = v
	}
	if v := os.Getenv("SP_SEARCH_CORPUS_FILE"); v != "" {
		cfg.Search.CorpusFile = v
	}
	if v := os.Getenv("SP_SEARCH_REMOVE_DUPLICATES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Search.RemoveDuplicates = b
		}
	}
	if v := os.Getenv("SP_SEARCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.Workers = n
		}
	}
	if v := os.Getenv("SP_ANALYTICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Analytics.Enabled = b
		}
	}
	if v := os.Getenv("SP_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SP_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SP_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
}

// Validate reports the first invalid setting as ErrInvalidInput.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Search.Policy) {
	case "sequential", "parallel":
	default:
		return apperrors.Newf(apperrors.ErrInvalidInput, "search.policy must be sequential or parallel, got %q", c.Search.Policy)
	}
	if c.Search.Workers < 0 {
		return apperrors.Newf(apperrors.ErrInvalidInput, "search.workers must not be negative, got %d", c.Search.Workers)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return apperrors.Newf(apperrors.ErrInvalidInput, "logging.format must be json or text, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.Newf(apperrors.ErrInvalidInput, "unknown logging.level %q", c.Logging.Level)
	}
	if c.Analytics.TopQueries < 0 || c.Analytics.BufferSize < 0 {
		return apperrors.New(apperrors.ErrInvalidInput, "analytics sizes must not be negative")
	}
	return nil
}
