// Package redis implements db.Store on rueidis. Only core hash, list, keyspace and scripting commands
// are used, so the same store serves Redis and Valkey.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docdex/internal/db"
)

var _ db.Store = (*Store)(nil)

// DefaultClientName is reported to the server via CLIENT SETNAME.
const DefaultClientName = "docdex"

const (
	readyPollStart = 50 * time.Millisecond
	readyPollMax   = time.Second
)

// Config holds connection parameters for a Redis or Valkey server.
type Config struct {
	Addrs      []string
	Username   string
	Password   string
	DB         int
	ClientName string
}

// Store is a db.Store over one rueidis client. Client-side caching is off: chunks are read
// in bulk once per query and never re-read by key.
type Store struct {
	client rueidis.Client
}

// NewStore connects to the first reachable address.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}
	name := cfg.ClientName
	if name == "" {
		name = DefaultClientName
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   name,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings until the server answers or timeout expires.
// The first ping is immediate; the interval then doubles up to one second.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wait := readyPollStart
	var lastErr error
	for {
		if lastErr = s.Ping(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("redis not ready after %s: %w", timeout, errors.Join(ctx.Err(), lastErr))
		case <-time.After(wait):
		}
		wait = min(wait*2, readyPollMax)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
