package chunk

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	domchunk "github.com/kailas-cloud/docdex/internal/domain/chunk"
	"github.com/kailas-cloud/docdex/internal/domain/keyword"
)

const (
	fieldDocumentID = "document_id"
	fieldIndex      = "chunk_index"
	fieldText       = "text"
	fieldKeywords   = "keywords"
	fieldCreatedAt  = "created_at"
)

func buildHashFields(c *domchunk.Chunk) map[string]string {
	return map[string]string{
		fieldDocumentID: c.DocumentID(),
		fieldIndex:      strconv.Itoa(c.Index()),
		fieldText:       c.Text(),
		fieldKeywords:   c.Keywords().String(),
		fieldCreatedAt:  c.CreatedAt().Format(time.RFC3339Nano),
	}
}

func parseHashFields(m map[string]string) (domchunk.Chunk, error) {
	docID := m[fieldDocumentID]
	if docID == "" {
		return domchunk.Chunk{}, fmt.Errorf("missing %s", fieldDocumentID)
	}
	idx, err := strconv.Atoi(m[fieldIndex])
	if err != nil {
		return domchunk.Chunk{}, fmt.Errorf("parse %s: %w", fieldIndex, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, m[fieldCreatedAt])
	if err != nil {
		return domchunk.Chunk{}, fmt.Errorf("parse %s: %w", fieldCreatedAt, err)
	}
	kw := keyword.FromTokens(strings.Fields(m[fieldKeywords]))
	return domchunk.Reconstruct(domchunk.ID(docID, idx), docID, idx, m[fieldText], kw, createdAt), nil
}
