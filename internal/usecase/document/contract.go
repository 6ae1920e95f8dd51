package document

import (
	"context"

	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context) ([]domdoc.Document, error)
	Delete(ctx context.Context, id string) error
}

// ChunkDeleter removes the chunks of a document.
type ChunkDeleter interface {
	DeleteByDocument(ctx context.Context, documentID string) (int, error)
}
