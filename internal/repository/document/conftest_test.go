package document

import (
	"context"
	"testing"
	"time"

	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hcreateFn      func(ctx context.Context, key string, fields map[string]string) (bool, error)
	hupdateFn      func(ctx context.Context, key string, fields map[string]string) (bool, error)
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn          func(ctx context.Context, key string) (bool, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) HCreate(ctx context.Context, key string, fields map[string]string) (bool, error) {
	if m.hcreateFn != nil {
		return m.hcreateFn(ctx, key, fields)
	}
	return true, nil
}

// HUpdate defaults to a missing key.
func (m *mockStore) HUpdate(ctx context.Context, key string, fields map[string]string) (bool, error) {
	if m.hupdateFn != nil {
		return m.hupdateFn(ctx, key, fields)
	}
	return false, nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) Del(ctx context.Context, key string) (bool, error) {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, ""), ms
}

var testCreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testDocument(t *testing.T, id string, createdAt time.Time) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New(id, "handbook.pdf", "application/pdf", "user-1", 2048, createdAt)
	if err != nil {
		t.Fatalf("domdoc.New: %v", err)
	}
	return doc
}

func testHash(id string, createdAt time.Time) map[string]string {
	return map[string]string{
		"id":           id,
		"filename":     "handbook.pdf",
		"content_type": "application/pdf",
		"size":         "2048",
		"status":       "indexed",
		"owner":        "user-1",
		"created_at":   createdAt.Format(time.RFC3339Nano),
		"chunk_count":  "3",
	}
}
