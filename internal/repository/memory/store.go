// Package memory is an in-process document, chunk and chat history store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
	domchat "github.com/kailas-cloud/docdex/internal/domain/chat"
	domchunk "github.com/kailas-cloud/docdex/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
)

// Store keeps documents and chunks in maps guarded by one lock. Contents are lost on restart.
type Store struct {
	mu     sync.RWMutex
	docs   map[string]domdoc.Document
	chunks map[string][]domchunk.Chunk // by document ID, in insertion order
	turns  map[string][]domchat.Turn   // by session ID, in append order
}

// New creates an empty store.
func New() *Store {
	return &Store{
		docs:   make(map[string]domdoc.Document),
		chunks: make(map[string][]domchunk.Chunk),
		turns:  make(map[string][]domchat.Turn),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// Create stores a new document.
func (s *Store) Create(_ context.Context, doc domdoc.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID()]; ok {
		return fmt.Errorf("document %s: %w", doc.ID(), domain.ErrDocumentExists)
	}
	s.docs[doc.ID()] = doc
	return nil
}

// Update replaces an existing document.
func (s *Store) Update(_ context.Context, doc domdoc.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID()]; !ok {
		return domain.ErrDocumentNotFound
	}
	s.docs[doc.ID()] = doc
	return nil
}

// Get returns a document by ID.
func (s *Store) Get(_ context.Context, id string) (domdoc.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return doc, nil
}

// List returns every document, newest first.
func (s *Store) List(context.Context) ([]domdoc.Document, error) {
	s.mu.RLock()
	docs := make([]domdoc.Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		a, b := docs[i].CreatedAt(), docs[j].CreatedAt()
		if !a.Equal(b) {
			return a.After(b)
		}
		return docs[i].ID() < docs[j].ID()
	})
	return docs, nil
}

// Delete removes a document.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(s.docs, id)
	return nil
}

// Insert stores a chunk of an existing document. Re-inserting an existing chunk ID replaces it.
func (s *Store) Insert(_ context.Context, c domchunk.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[c.DocumentID()]; !ok {
		return fmt.Errorf("chunk %s: %w", c.ID(), domain.ErrDocumentNotFound)
	}
	list := s.chunks[c.DocumentID()]
	for i := range list {
		if list[i].Index() == c.Index() {
			list[i] = c
			return nil
		}
	}
	s.chunks[c.DocumentID()] = append(list, c)
	return nil
}

// ListChunks returns the corpus in document creation order, then document ID, then chunk index.
func (s *Store) ListChunks(context.Context) ([]domchunk.Chunk, error) {
	s.mu.RLock()
	var out []domchunk.Chunk
	created := make(map[string]time.Time, len(s.docs))
	for docID, list := range s.chunks {
		d, ok := s.docs[docID]
		if !ok {
			continue
		}
		out = append(out, list...)
		created[docID] = d.CreatedAt()
	}
	s.mu.RUnlock()

	domchunk.SortCorpus(out, created)
	return out, nil
}

// DeleteByDocument removes every chunk of a document.
func (s *Store) DeleteByDocument(_ context.Context, documentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.chunks[documentID])
	delete(s.chunks, documentID)
	return n, nil
}

// Append adds turns to their sessions.
func (s *Store) Append(_ context.Context, turns ...domchat.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range turns {
		s.turns[t.SessionID()] = append(s.turns[t.SessionID()], t)
	}
	return nil
}

// Recent returns up to limit of the latest turns of a session, oldest first.
func (s *Store) Recent(_ context.Context, sessionID string, limit int) ([]domchat.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.turns[sessionID]
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}
	out := make([]domchat.Turn, limit)
	copy(out, all[len(all)-limit:])
	return out, nil
}
