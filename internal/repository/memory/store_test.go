package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
	domchat "github.com/kailas-cloud/docdex/internal/domain/chat"
	domchunk "github.com/kailas-cloud/docdex/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
)

var t0 = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func mustDoc(t *testing.T, id string, createdAt time.Time) domdoc.Document {
	t.Helper()
	d, err := domdoc.New(id, id+".txt", "text/plain", "", 10, createdAt)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func mustChunk(t *testing.T, docID string, idx int, text string) domchunk.Chunk {
	t.Helper()
	c, err := domchunk.New(docID, idx, text, t0)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestDocuments_CRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	doc := mustDoc(t, "doc-1", t0)
	if err := s.Create(ctx, doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, doc); !errors.Is(err, domain.ErrDocumentExists) {
		t.Fatalf("duplicate Create: got %v", err)
	}

	if err := doc.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, doc); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := s.Get(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status() != domdoc.StatusProcessing {
		t.Errorf("status = %s", got.Status())
	}

	if err := s.Delete(ctx, "doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "doc-1"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("Get after delete: %v", err)
	}
	if err := s.Delete(ctx, "doc-1"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("second Delete: %v", err)
	}
	if err := s.Update(ctx, doc); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("Update after delete: %v", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Create(ctx, mustDoc(t, "old", t0))
	_ = s.Create(ctx, mustDoc(t, "new", t0.Add(time.Hour)))

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].ID() != "new" || docs[1].ID() != "old" {
		t.Errorf("unexpected order")
	}
}

func TestListChunks_CorpusOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Create(ctx, mustDoc(t, "b", t0))
	_ = s.Create(ctx, mustDoc(t, "a", t0.Add(time.Second)))

	_ = s.Insert(ctx, mustChunk(t, "a", 0, "alpha"))
	_ = s.Insert(ctx, mustChunk(t, "b", 1, "beta one"))
	_ = s.Insert(ctx, mustChunk(t, "b", 0, "beta zero"))

	chunks, err := s.ListChunks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"b:0", "b:1", "a:0"}
	for i, c := range chunks {
		if c.ID() != want[i] {
			t.Errorf("position %d: got %s, want %s", i, c.ID(), want[i])
		}
	}
}

func TestDeleteByDocument(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Create(ctx, mustDoc(t, "a", t0))
	_ = s.Create(ctx, mustDoc(t, "b", t0))
	_ = s.Insert(ctx, mustChunk(t, "a", 0, "alpha"))
	_ = s.Insert(ctx, mustChunk(t, "a", 1, "alpha two"))
	_ = s.Insert(ctx, mustChunk(t, "b", 0, "beta"))

	n, err := s.DeleteByDocument(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
	chunks, _ := s.ListChunks(ctx)
	for _, c := range chunks {
		if c.DocumentID() == "a" {
			t.Errorf("chunk %s survived deletion", c.ID())
		}
	}
}

func TestConcurrentInsertAndList(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Create(ctx, mustDoc(t, "doc", t0))

	chunks := make([]domchunk.Chunk, 8)
	for i := range chunks {
		chunks[i] = mustChunk(t, "doc", i, "concurrent text")
	}

	var wg sync.WaitGroup
	for _, c := range chunks {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Insert(ctx, c)
		}()
		go func() {
			defer wg.Done()
			_, _ = s.ListChunks(ctx)
		}()
	}
	wg.Wait()

	stored, _ := s.ListChunks(ctx)
	if len(stored) != 8 {
		t.Errorf("expected 8 chunks, got %d", len(stored))
	}
}

func TestInsert_RequiresDocument(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Create(ctx, mustDoc(t, "doc1", t0))
	if err := s.Insert(ctx, mustChunk(t, "doc1", 0, "quarterly summary")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.DeleteByDocument(ctx, "doc1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "doc1"); err != nil {
		t.Fatal(err)
	}

	err := s.Insert(ctx, mustChunk(t, "doc1", 1, "confidential salary bonus"))
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	chunks, _ := s.ListChunks(ctx)
	if len(chunks) != 0 {
		t.Errorf("expected empty corpus after delete, got %d chunks", len(chunks))
	}
}

func TestHistory_RecentOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i, text := range []string{"one", "two", "three"} {
		turn, err := domchat.NewTurn("s1", domchat.RoleUser, text, t0.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatal(err)
		}
		_ = s.Append(ctx, turn)
	}
	other, _ := domchat.NewTurn("s2", domchat.RoleUser, "elsewhere", t0)
	_ = s.Append(ctx, other)

	turns, _ := s.Recent(ctx, "s1", 2)
	if len(turns) != 2 || turns[0].Content() != "two" || turns[1].Content() != "three" {
		t.Errorf("unexpected turns: %+v", turns)
	}
	if turns, _ := s.Recent(ctx, "unknown", 10); len(turns) != 0 {
		t.Errorf("unknown session has %d turns", len(turns))
	}
}
