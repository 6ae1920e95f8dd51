package document

import (
	"fmt"
	"strconv"
	"time"

	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
)

// Hash field names.
const (
	fieldID          = "id"
	fieldFilename    = "filename"
	fieldContentType = "content_type"
	fieldSize        = "size"
	fieldStatus      = "status"
	fieldOwner       = "owner"
	fieldCreatedAt   = "created_at"
	fieldChunkCount  = "chunk_count"
)

// buildHashFields converts a domain Document into a flat map[string]string for HSET.
func buildHashFields(doc *domdoc.Document) map[string]string {
	return map[string]string{
		fieldID:          doc.ID(),
		fieldFilename:    doc.Filename(),
		fieldContentType: doc.ContentType(),
		fieldSize:        strconv.FormatInt(doc.Size(), 10),
		fieldStatus:      string(doc.Status()),
		fieldOwner:       doc.Owner(),
		fieldCreatedAt:   doc.CreatedAt().Format(time.RFC3339Nano),
		fieldChunkCount:  strconv.Itoa(doc.ChunkCount()),
	}
}

// parseHashFields converts a flat hash map back into a domain Document.
func parseHashFields(id string, m map[string]string) (domdoc.Document, error) {
	size, err := strconv.ParseInt(m[fieldSize], 10, 64)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("parse %s: %w", fieldSize, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, m[fieldCreatedAt])
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("parse %s: %w", fieldCreatedAt, err)
	}
	chunkCount, err := strconv.Atoi(m[fieldChunkCount])
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("parse %s: %w", fieldChunkCount, err)
	}
	status := domdoc.Status(m[fieldStatus])
	if !status.IsValid() {
		return domdoc.Document{}, fmt.Errorf("unknown status %q", status)
	}

	return domdoc.Reconstruct(id, m[fieldFilename], m[fieldContentType], m[fieldOwner],
		size, status, createdAt, chunkCount), nil
}
