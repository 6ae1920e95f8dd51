package ingest

import (
	"context"

	domchunk "github.com/kailas-cloud/docdex/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
)

// DocumentRepository persists document records and their status.
type DocumentRepository interface {
	Create(ctx context.Context, doc domdoc.Document) error
	Update(ctx context.Context, doc domdoc.Document) error
}

// ChunkRepository persists chunks one at a time.
type ChunkRepository interface {
	Insert(ctx context.Context, c domchunk.Chunk) error
}

// Extractor turns raw bytes into text. Extract never fails.
type Extractor interface {
	Supports(contentType, filename string) bool
	Extract(data []byte, contentType, filename string) string
}

// Chunker splits text into ordered windows.
type Chunker interface {
	Split(text string) []string
}
