package retrieval

import (
	"context"

	domchunk "github.com/kailas-cloud/docdex/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
)

// ChunkReader returns the whole chunk corpus in its stable iteration order.
type ChunkReader interface {
	ListChunks(ctx context.Context) ([]domchunk.Chunk, error)
}

// DocumentReader resolves documents for source attribution.
type DocumentReader interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
}
