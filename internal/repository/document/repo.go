package document

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HCreate(ctx context.Context, key string, fields map[string]string) (bool, error)
	HUpdate(ctx context.Context, key string, fields map[string]string) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores documents as Redis hashes.
type Repo struct {
	store  store
	prefix string
}

// New creates a document repository. An empty prefix selects DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Create stores a new document. Returns domain.ErrDocumentExists if the ID is taken.
func (r *Repo) Create(ctx context.Context, doc domdoc.Document) error {
	key := Key(r.prefix, doc.ID())
	created, err := r.store.HCreate(ctx, key, buildHashFields(&doc))
	if err != nil {
		return fmt.Errorf("create %s: %w", key, err)
	}
	if !created {
		return fmt.Errorf("document %s: %w", doc.ID(), domain.ErrDocumentExists)
	}
	return nil
}

// Update overwrites an existing document's status and chunk count.
// A document deleted in the meantime is not recreated.
func (r *Repo) Update(ctx context.Context, doc domdoc.Document) error {
	key := Key(r.prefix, doc.ID())
	updated, err := r.store.HUpdate(ctx, key, map[string]string{
		fieldStatus:     string(doc.Status()),
		fieldChunkCount: strconv.Itoa(doc.ChunkCount()),
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", key, err)
	}
	if !updated {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	key := Key(r.prefix, id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	doc, err := parseHashFields(id, m)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return doc, nil
}

// List returns every document, newest first.
func (r *Repo) List(ctx context.Context) ([]domdoc.Document, error) {
	keys, err := r.store.Scan(ctx, Pattern(r.prefix))
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	docs := make([]domdoc.Document, 0, len(keys))
	for i, m := range hashes {
		if len(m) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		doc, err := parseHashFields(IDFromKey(r.prefix, keys[i]), m)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		a, b := docs[i].CreatedAt(), docs[j].CreatedAt()
		if !a.Equal(b) {
			return a.After(b)
		}
		return docs[i].ID() < docs[j].ID()
	})
	return docs, nil
}

// CreatedAt returns creation times for the given document IDs. Unknown IDs are omitted.
func (r *Repo) CreatedAt(ctx context.Context, ids []string) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = Key(r.prefix, id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	for i, m := range hashes {
		raw, ok := m[fieldCreatedAt]
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s of %s: %w", fieldCreatedAt, keys[i], err)
		}
		out[ids[i]] = t
	}
	return out, nil
}

// Delete removes a document.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := Key(r.prefix, id)
	existed, err := r.store.Del(ctx, key)
	if err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if !existed {
		return domain.ErrDocumentNotFound
	}
	return nil
}
