// Package config loads docdex settings from config/<env>.yaml with ${VAR} expansion.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the full docdex configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Search   SearchConfig   `yaml:"search"`
	Upload   UploadConfig   `yaml:"upload"`
	LLM      LLMConfig      `yaml:"llm"`
	Auth     AuthConfig     `yaml:"auth"`
	Watch    WatchConfig    `yaml:"watch"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Database drivers.
const (
	DriverRedis    = "redis"
	DriverValkey   = "valkey"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Hard ceilings shared with the search request validation.
const (
	maxSearchLimit = 100
	maxUploadMB    = 1024
)

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error; empty keeps the env default
}

// AuthConfig lists accepted API keys. An entry may hold several comma-separated keys
// so that a single ${API_KEYS} variable can supply them all.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// Keys returns the configured keys split on commas, trimmed, without empties.
func (a AuthConfig) Keys() []string {
	var out []string
	for _, entry := range a.APIKeys {
		for _, k := range strings.Split(entry, ",") {
			if k = strings.TrimSpace(k); k != "" {
				out = append(out, k)
			}
		}
	}
	return out
}

type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig selects the document store.
// addrs and password apply to redis and valkey, dsn to postgres, path to sqlite.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DSN              string   `yaml:"dsn"`
	Path             string   `yaml:"path"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	Debug            bool     `yaml:"debug"` // bun query logging
}

// StorageConfig namespaces Redis/Valkey keys.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

type UploadConfig struct {
	MaxSizeMB int `yaml:"max_size_mb"`
}

// MaxBytes returns the upload cap in bytes.
func (u UploadConfig) MaxBytes() int64 { return int64(u.MaxSizeMB) << 20 }

// LLMConfig configures the OpenAI-compatible chat provider. Chat is off when Model is empty.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

// Enabled reports whether chat completion is configured.
func (l LLMConfig) Enabled() bool { return l.Model != "" }

// WatchConfig holds defaults for `docdex watch`; flags override them.
type WatchConfig struct {
	Owner      string `yaml:"owner"`
	DebounceMS int    `yaml:"debounce_ms"`
}

// Debounce returns the quiet period before a file change is applied.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	setDefault(&c.HTTP.Port, 8080)
	setDefault(&c.HTTP.ReadTimeoutSec, 30)
	setDefault(&c.HTTP.WriteTimeoutSec, 120)
	setDefault(&c.HTTP.ShutdownSec, 10)

	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	c.Database.Driver = strings.ToLower(c.Database.Driver)
	setDefault(&c.Database.ReadinessTimeout, 10)
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		c.Database.Path = "docdex.db"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "docdex:"
	}

	setDefault(&c.Search.DefaultLimit, 10)
	setDefault(&c.Search.MaxLimit, maxSearchLimit)
	setDefault(&c.Upload.MaxSizeMB, 50)
	setDefault(&c.LLM.TimeoutSec, 60)
	setDefault(&c.Watch.DebounceMS, 500)
}

func setDefault(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		fail("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Database.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 || c.Database.Addrs[0] == "" {
			fail("database.addrs is required for driver %q", c.Database.Driver)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			fail("database.dsn is required for driver %q", c.Database.Driver)
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			fail("database.path is required for driver %q", c.Database.Driver)
		}
	case DriverMemory:
	default:
		fail("database.driver must be one of redis, valkey, postgres, sqlite, memory; got %q", c.Database.Driver)
	}

	if c.Search.MaxLimit > maxSearchLimit {
		fail("search.max_limit must not exceed %d, got %d", maxSearchLimit, c.Search.MaxLimit)
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		fail("search.default_limit (%d) exceeds search.max_limit (%d)", c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	if c.Upload.MaxSizeMB > maxUploadMB {
		fail("upload.max_size_mb must not exceed %d, got %d", maxUploadMB, c.Upload.MaxSizeMB)
	}
	if c.LLM.Enabled() && c.LLM.APIKey == "" && c.LLM.BaseURL == "" {
		fail("llm.api_key or llm.base_url is required when llm.model is set")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		fail("llm.temperature must be within [0, 2], got %g", c.LLM.Temperature)
	}
	return errors.Join(errs...)
}
