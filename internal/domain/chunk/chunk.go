package chunk

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain/keyword"
)

// Chunk is an immutable window of a document's extracted text together with its keyword set.
type Chunk struct {
	id         string
	documentID string
	index      int
	text       string
	keywords   keyword.Set
	createdAt  time.Time
}

// New creates a chunk and computes its keyword set.
func New(documentID string, index int, text string, createdAt time.Time) (Chunk, error) {
	if documentID == "" {
		return Chunk{}, fmt.Errorf("document ID is required")
	}
	if index < 0 {
		return Chunk{}, fmt.Errorf("chunk index must be non-negative, got %d", index)
	}
	if strings.TrimSpace(text) == "" {
		return Chunk{}, fmt.Errorf("chunk text is required")
	}
	return Chunk{
		id:         ID(documentID, index),
		documentID: documentID,
		index:      index,
		text:       text,
		keywords:   keyword.Extract(text),
		createdAt:  createdAt.UTC(),
	}, nil
}

// Reconstruct creates a Chunk without validation (storage hydration).
func Reconstruct(id, documentID string, index int, text string, keywords keyword.Set, createdAt time.Time) Chunk {
	return Chunk{
		id: id, documentID: documentID, index: index, text: text,
		keywords: keywords, createdAt: createdAt.UTC(),
	}
}

// ID builds the chunk identifier "<documentID>:<index>".
func ID(documentID string, index int) string {
	return documentID + ":" + strconv.Itoa(index)
}

// ID returns the chunk identifier.
func (c *Chunk) ID() string { return c.id }

// DocumentID returns the owning document ID.
func (c *Chunk) DocumentID() string { return c.documentID }

// Index returns the zero-based position within the document.
func (c *Chunk) Index() int { return c.index }

// Text returns the chunk text.
func (c *Chunk) Text() string { return c.text }

// Keywords returns the keyword set computed at ingestion.
func (c *Chunk) Keywords() keyword.Set { return c.keywords }

// CreatedAt returns the creation timestamp (UTC).
func (c *Chunk) CreatedAt() time.Time { return c.createdAt }
