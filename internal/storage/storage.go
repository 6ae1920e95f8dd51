// Package storage opens the configured persistence backend.
package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/docdex/internal/db/redis"
	domchat "github.com/kailas-cloud/docdex/internal/domain/chat"
	domchunk "github.com/kailas-cloud/docdex/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
	chunkrepo "github.com/kailas-cloud/docdex/internal/repository/chunk"
	documentrepo "github.com/kailas-cloud/docdex/internal/repository/document"
	historyrepo "github.com/kailas-cloud/docdex/internal/repository/history"
	"github.com/kailas-cloud/docdex/internal/repository/memory"
	"github.com/kailas-cloud/docdex/internal/repository/sqlstore"
)

// Drivers.
const (
	DriverRedis    = "redis"
	DriverValkey   = "valkey"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Documents persists document records.
type Documents interface {
	Create(ctx context.Context, doc domdoc.Document) error
	Update(ctx context.Context, doc domdoc.Document) error
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context) ([]domdoc.Document, error)
	Delete(ctx context.Context, id string) error
}

// Chunks persists chunk records.
type Chunks interface {
	Insert(ctx context.Context, c domchunk.Chunk) error
	ListChunks(ctx context.Context) ([]domchunk.Chunk, error)
	DeleteByDocument(ctx context.Context, documentID string) (int, error)
}

// History persists chat session turns.
type History interface {
	Append(ctx context.Context, turns ...domchat.Turn) error
	Recent(ctx context.Context, sessionID string, limit int) ([]domchat.Turn, error)
}

// Config selects and configures a backend.
type Config struct {
	Driver           string
	Addrs            []string
	Password         string
	DSN              string
	Path             string
	KeyPrefix        string
	ReadinessTimeout time.Duration
	Debug            bool
}

// Backend bundles the repositories of one store with its lifecycle.
type Backend struct {
	Driver    string
	Documents Documents
	Chunks    Chunks
	History   History

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks store availability.
func (b *Backend) Ping(ctx context.Context) error { return b.ping(ctx) }

// Close releases the store connection.
func (b *Backend) Close() { b.close() }

// Open connects to the configured backend. Redis and Valkey stores are awaited up to ReadinessTimeout.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case DriverRedis, DriverValkey:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
		}
		if cfg.ReadinessTimeout > 0 {
			if err := store.WaitForReady(ctx, cfg.ReadinessTimeout); err != nil {
				store.Close()
				return nil, fmt.Errorf("%s not ready: %w", cfg.Driver, err)
			}
		}
		docs := documentrepo.New(store, cfg.KeyPrefix)
		logger.Info("Connected to database", zap.String("driver", cfg.Driver), zap.Strings("addrs", cfg.Addrs))
		return &Backend{
			Driver:    cfg.Driver,
			Documents: docs,
			Chunks:    chunkrepo.New(store, docs, cfg.KeyPrefix),
			History:   historyrepo.New(store, cfg.KeyPrefix),
			ping:      store.Ping,
			close:     store.Close,
		}, nil

	case DriverPostgres, DriverSQLite:
		store, err := sqlstore.Open(ctx, sqlstore.Config{
			Driver: cfg.Driver,
			DSN:    cfg.DSN,
			Path:   cfg.Path,
			Debug:  cfg.Debug,
		})
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
		}
		logger.Info("Connected to database", zap.String("driver", cfg.Driver))
		return &Backend{
			Driver:    cfg.Driver,
			Documents: store,
			Chunks:    store,
			History:   store,
			ping:      store.Ping,
			close:     store.Close,
		}, nil

	case DriverMemory:
		store := memory.New()
		logger.Warn("Using in-memory store, contents are lost on exit")
		return &Backend{
			Driver:    cfg.Driver,
			Documents: store,
			Chunks:    store,
			History:   store,
			ping:      store.Ping,
			close:     store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
