package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docdex/internal/db"
)

// Conditional writes run server-side so that a document deleted mid-ingestion is not
// recreated by a late status update and gains no further chunks.
var (
	hcreateScript = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then return 0 end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1`)

	hupdateScript = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 0 end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1`)

	// KEYS[1] owner, KEYS[2] target.
	hsetOwnedScript = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 0 end
redis.call('HSET', KEYS[2], unpack(ARGV))
return 1`)
)

// HSetOwned writes fields to key only while owner exists.
func (s *Store) HSetOwned(ctx context.Context, owner, key string, fields map[string]string) (bool, error) {
	n, err := hsetOwnedScript.Exec(ctx, s.client, []string{owner, key}, flatten(fields)).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpHSetOwned, Key: key, Err: err}
	}
	return n == 1, nil
}

// HCreate writes fields only if key does not exist yet.
func (s *Store) HCreate(ctx context.Context, key string, fields map[string]string) (bool, error) {
	n, err := hcreateScript.Exec(ctx, s.client, []string{key}, flatten(fields)).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpHCreate, Key: key, Err: err}
	}
	return n == 1, nil
}

// HUpdate writes fields only if key already exists.
func (s *Store) HUpdate(ctx context.Context, key string, fields map[string]string) (bool, error) {
	n, err := hupdateScript.Exec(ctx, s.client, []string{key}, flatten(fields)).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpHUpdate, Key: key, Err: err}
	}
	return n == 1, nil
}

// HGetAll returns all fields of a hash; a missing key yields an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.do(ctx, s.b().Hgetall().Key(key).Build()).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Key: key, Err: err}
	}
	return m, nil
}

// HGetAllMulti loads several hashes in one pipelined round-trip, in key order.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	cmds := make(rueidis.Commands, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Hgetall().Key(key).Build()
	}

	out := make([]map[string]string, len(keys))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Key: keys[i], Err: err}
		}
		out[i] = m
	}
	return out, nil
}

func flatten(fields map[string]string) []string {
	args := make([]string, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
