// Package db defines the key-value facade the Redis and Valkey repositories are written against.
package db

import (
	"context"
	"time"
)

// Store is implemented by internal/db/redis.
type Store interface {
	Pinger
	HashStore
	ListStore
	KeyStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore reads and writes records stored as hashes.
//
// Writes are conditional and atomic: HCreate writes only when the key is absent, HUpdate only
// when it is present, HSetOwned only while the owner key exists. All report whether the write
// happened.
type HashStore interface {
	HSetOwned(ctx context.Context, owner, key string, fields map[string]string) (bool, error)
	HCreate(ctx context.Context, key string, fields map[string]string) (bool, error)
	HUpdate(ctx context.Context, key string, fields map[string]string) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// ListStore appends to and reads lists.
type ListStore interface {
	RPush(ctx context.Context, key string, values ...string) error
	// LRange takes inclusive indexes; negative indexes count from the tail.
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// KeyStore deletes and enumerates keys.
type KeyStore interface {
	// Del reports whether the key existed.
	Del(ctx context.Context, key string) (bool, error)
	DelMulti(ctx context.Context, keys []string) (int64, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}
