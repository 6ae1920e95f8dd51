package chunk

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
	domchunk "github.com/kailas-cloud/docdex/internal/domain/chunk"
	"github.com/kailas-cloud/docdex/internal/repository/document"
)

// store is the consumer interface for chunks (ISP).
type store interface {
	HSetOwned(ctx context.Context, owner, key string, fields map[string]string) (bool, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	DelMulti(ctx context.Context, keys []string) (int64, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// documentTimes resolves document creation times for corpus ordering.
type documentTimes interface {
	CreatedAt(ctx context.Context, ids []string) (map[string]time.Time, error)
}

// Repo stores chunks as Redis hashes keyed by document ID and index.
type Repo struct {
	store  store
	docs   documentTimes
	prefix string
}

// New creates a chunk repository. An empty prefix selects document.DefaultKeyPrefix.
func New(s store, docs documentTimes, prefix string) *Repo {
	if prefix == "" {
		prefix = document.DefaultKeyPrefix
	}
	return &Repo{store: s, docs: docs, prefix: prefix}
}

// Insert stores one chunk of an existing document; ErrDocumentNotFound when the document is gone.
func (r *Repo) Insert(ctx context.Context, c domchunk.Chunk) error {
	key := Key(r.prefix, c.DocumentID(), c.Index())
	written, err := r.store.HSetOwned(ctx, document.Key(r.prefix, c.DocumentID()), key, buildHashFields(&c))
	if err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	if !written {
		return fmt.Errorf("chunk %s: %w", key, domain.ErrDocumentNotFound)
	}
	return nil
}

// ListChunks returns the whole corpus in document creation order, then document ID, then chunk
// index. Chunks whose document no longer exists are left out.
func (r *Repo) ListChunks(ctx context.Context) ([]domchunk.Chunk, error) {
	keys, err := r.store.Scan(ctx, Pattern(r.prefix))
	if err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	chunks := make([]domchunk.Chunk, 0, len(keys))
	seen := make(map[string]struct{})
	var docIDs []string
	for i, m := range hashes {
		if len(m) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		c, err := parseHashFields(m)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		chunks = append(chunks, c)
		if _, ok := seen[c.DocumentID()]; !ok {
			seen[c.DocumentID()] = struct{}{}
			docIDs = append(docIDs, c.DocumentID())
		}
	}

	created, err := r.docs.CreatedAt(ctx, docIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve document order: %w", err)
	}
	live := chunks[:0]
	for _, c := range chunks {
		if _, ok := created[c.DocumentID()]; ok {
			live = append(live, c)
		}
	}
	chunks = live
	domchunk.SortCorpus(chunks, created)
	return chunks, nil
}

// DeleteByDocument removes every chunk of a document and returns how many were deleted.
func (r *Repo) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	keys, err := r.store.Scan(ctx, DocumentPattern(r.prefix, documentID))
	if err != nil {
		return 0, fmt.Errorf("scan chunks of %s: %w", documentID, err)
	}

	n, err := r.store.DelMulti(ctx, keys)
	if err != nil {
		return 0, fmt.Errorf("delete chunks of %s: %w", documentID, err)
	}
	return int(n), nil
}
