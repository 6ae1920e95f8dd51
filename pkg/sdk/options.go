package docdex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/docdex/internal/storage"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string
	addrs    []string
	password string
	dsn      string
	path     string

	keyPrefix        string
	readinessTimeout time.Duration

	defaultLimit int
	maxLimit     int

	completer Completer
	openai    *openAIConfig

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

type openAIConfig struct {
	apiKey  string
	baseURL string
	model   string
}

// WithRedis stores documents and chunks in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = storage.DriverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithValkey stores documents and chunks in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = storage.DriverValkey
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithPostgres stores documents and chunks in PostgreSQL.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = storage.DriverPostgres
		c.dsn = dsn
	})
}

// WithSQLite stores documents and chunks in a SQLite file.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = storage.DriverSQLite
		c.path = path
	})
}

// WithMemory keeps everything in process memory. Nothing survives Close.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = storage.DriverMemory
	})
}

// WithKeyPrefix sets the Redis/Valkey key namespace. Default: "docdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithReadinessTimeout bounds the initial wait for a Redis/Valkey store.
// Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithSearchLimits sets the default and maximum number of search hits.
// Defaults: 10 and 100.
func WithSearchLimits(defaultLimit, maxLimit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultLimit = defaultLimit
		c.maxLimit = maxLimit
	})
}

// WithCompleter sets the chat completion provider. Chat returns
// ErrNotImplemented without one.
func WithCompleter(cp Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = cp
	})
}

// WithOpenAI uses an OpenAI-compatible chat completion API.
// An empty baseURL selects the OpenAI endpoint.
func WithOpenAI(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai = &openAIConfig{apiKey: apiKey, baseURL: baseURL, model: model}
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
