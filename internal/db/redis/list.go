package redis

import (
	"context"

	"github.com/kailas-cloud/docdex/internal/db"
)

// RPush appends values to the tail of a list.
func (s *Store) RPush(ctx context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	if err := s.do(ctx, s.b().Rpush().Key(key).Element(values...).Build()).Error(); err != nil {
		return &db.Error{Op: db.OpRPush, Key: key, Err: err}
	}
	return nil
}

// LRange returns list elements between start and stop inclusive; a missing key is empty.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	vals, err := s.do(ctx, s.b().Lrange().Key(key).Start(start).Stop(stop).Build()).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpLRange, Key: key, Err: err}
	}
	return vals, nil
}
