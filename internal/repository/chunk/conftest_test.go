package chunk

import (
	"context"
	"time"
)

type mockStore struct {
	hsetOwnedFn    func(ctx context.Context, owner, key string, fields map[string]string) (bool, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delMultiFn     func(ctx context.Context, keys []string) (int64, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) HSetOwned(ctx context.Context, owner, key string, fields map[string]string) (bool, error) {
	if m.hsetOwnedFn != nil {
		return m.hsetOwnedFn(ctx, owner, key, fields)
	}
	return true, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) DelMulti(ctx context.Context, keys []string) (int64, error) {
	if m.delMultiFn != nil {
		return m.delMultiFn(ctx, keys)
	}
	return int64(len(keys)), nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

type mockDocTimes struct {
	times map[string]time.Time
	err   error
}

func (m *mockDocTimes) CreatedAt(_ context.Context, ids []string) (map[string]time.Time, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]time.Time)
	for _, id := range ids {
		if t, ok := m.times[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

var testCreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func chunkHash(docID, idx, text, keywords string) map[string]string {
	return map[string]string{
		"document_id": docID,
		"chunk_index": idx,
		"text":        text,
		"keywords":    keywords,
		"created_at":  testCreatedAt.Format(time.RFC3339Nano),
	}
}
