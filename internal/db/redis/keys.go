package redis

import (
	"context"

	"github.com/kailas-cloud/docdex/internal/db"
)

// scanBatch is the COUNT hint per SCAN call. Chunk keys dominate the keyspace.
const scanBatch = 500

// Del deletes a key and reports whether it existed.
func (s *Store) Del(ctx context.Context, key string) (bool, error) {
	n, err := s.do(ctx, s.b().Del().Key(key).Build()).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpDel, Key: key, Err: err}
	}
	return n > 0, nil
}

// DelMulti deletes keys in one DEL and returns how many existed.
func (s *Store) DelMulti(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := s.do(ctx, s.b().Del().Key(keys...).Build()).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpDel, Err: err}
	}
	return n, nil
}

// Scan returns every key matching pattern. SCAN may repeat keys across
// iterations; the result is deduplicated.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var (
		keys   []string
		seen   = make(map[string]struct{})
		cursor uint64
	)
	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(scanBatch).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Key: pattern, Err: err}
		}
		for _, k := range res.Elements {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		if cursor = res.Cursor; cursor == 0 {
			return keys, nil
		}
	}
}
