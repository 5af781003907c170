// Package common carries the ambient application stack: layered
// configuration and logger setup, adapted from the storage platform this
// module's versioning core is descended from.
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the top-level application configuration, loaded default ->
// file -> environment.
type Config struct {
	Environment string          `toml:"environment"`
	Storage     StorageConfig   `toml:"storage"`
	Cache       CacheConfig     `toml:"cache"`
	Logging     LoggingConfig   `toml:"logging"`
	Lemmatize   LemmatizeConfig `toml:"lemmatize"`
	Semantic    SemanticConfig  `toml:"semantic"`
	Janitor     JanitorConfig   `toml:"janitor"`
}

// StorageConfig configures the metadata document store (internal/store).
type StorageConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

// CacheConfig configures the two-tier cache (internal/cache).
type CacheConfig struct {
	DiskPath             string `toml:"disk_path"`
	DiskMaxBytes         int64  `toml:"disk_max_bytes"`
	DiskResetOnStartup   bool   `toml:"disk_reset_on_startup"`
	InlineThresholdBytes int    `toml:"inline_threshold_bytes"`
}

// LoggingConfig configures the arbor-backed structured logger.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Output     []string `toml:"output"`
	TimeFormat string   `toml:"time_format"`
}

// LemmatizeConfig configures batch lemmatization parallelism thresholds.
type LemmatizeConfig struct {
	ParallelThreshold      int `toml:"parallel_threshold"`
	ParallelChunkThreshold int `toml:"parallel_chunk_threshold"`
	Workers                int `toml:"workers"`
}

// SemanticConfig configures the background semantic index builder.
type SemanticConfig struct {
	Enabled   bool   `toml:"enabled"`
	ModelName string `toml:"model_name"`
	Provider  string `toml:"provider"` // "anthropic", "gemini", or "stub"
	APIKey    string `toml:"api_key"`
	BatchSize int    `toml:"batch_size"`
}

// JanitorConfig configures the periodic disk-cache value-log GC sweep.
type JanitorConfig struct {
	Enabled      bool    `toml:"enabled"`
	Schedule     string  `toml:"schedule"` // cron expression
	DiscardRatio float64 `toml:"discard_ratio"`
}

// NewDefaultConfig returns the built-in configuration defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Path: "./data/store",
		},
		Cache: CacheConfig{
			DiskPath:             "./data/cache",
			DiskMaxBytes:         10 * 1024 * 1024 * 1024,
			InlineThresholdBytes: 16 * 1024,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
		Lemmatize: LemmatizeConfig{
			ParallelThreshold:      2000,
			ParallelChunkThreshold: 10000,
			Workers:                8,
		},
		Semantic: SemanticConfig{
			Enabled:   false,
			ModelName: "claude-embedding-v1",
			Provider:  "stub",
			BatchSize: 64,
		},
		Janitor: JanitorConfig{
			Enabled:      true,
			Schedule:     "0 */15 * * * *",
			DiscardRatio: 0.5,
		},
	}
}

// LoadFromFiles loads configuration with priority: default -> file(s) -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("config: parse file %s (%d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

func applyEnvOverrides(config *Config) {
	if env := os.Getenv("WORDS_ENV"); env != "" {
		config.Environment = env
	}
	if path := os.Getenv("WORDS_STORAGE_PATH"); path != "" {
		config.Storage.Path = path
	}
	if path := os.Getenv("WORDS_CACHE_DISK_PATH"); path != "" {
		config.Cache.DiskPath = path
	}
	if maxBytes := os.Getenv("WORDS_CACHE_DISK_MAX_BYTES"); maxBytes != "" {
		if mb, err := strconv.ParseInt(maxBytes, 10, 64); err == nil {
			config.Cache.DiskMaxBytes = mb
		}
	}
	if level := os.Getenv("WORDS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("WORDS_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if provider := os.Getenv("WORDS_SEMANTIC_PROVIDER"); provider != "" {
		config.Semantic.Provider = provider
	}
	if enabled := os.Getenv("WORDS_SEMANTIC_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Semantic.Enabled = e
		}
	}
	if key := os.Getenv("WORDS_SEMANTIC_API_KEY"); key != "" {
		config.Semantic.APIKey = key
	}
}

// IsProduction reports whether Environment names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// InlineThreshold returns the configured inline-vs-cache size threshold,
// falling back to the 16 KiB default when unset.
func (c *Config) InlineThreshold() int {
	if c.Cache.InlineThresholdBytes <= 0 {
		return 16 * 1024
	}
	return c.Cache.InlineThresholdBytes
}

// JanitorInterval returns a duration fallback for environments that don't
// want a full cron scheduler; prefer Janitor.Schedule with
// internal/janitor where cron semantics matter.
func (c *Config) JanitorInterval() time.Duration {
	return 15 * time.Minute
}
