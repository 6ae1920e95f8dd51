package document

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxIDLength is the maximum document identifier length.
const MaxIDLength = 256

// Document is the document aggregate. Status changes go through Start, MarkIndexed and MarkFailed.
type Document struct {
	id          string
	filename    string
	contentType string
	size        int64
	status      Status
	owner       string
	createdAt   time.Time
	chunkCount  int
}

// New validates and creates a pending Document.
func New(id, filename, contentType, owner string, size int64, createdAt time.Time) (Document, error) {
	if err := ValidateID(id); err != nil {
		return Document{}, err
	}
	if filename == "" {
		return Document{}, fmt.Errorf("filename is required: %w", domain.ErrInvalidDocument)
	}
	if size < 0 {
		return Document{}, fmt.Errorf("negative size: %w", domain.ErrInvalidDocument)
	}

	return Document{
		id:          id,
		filename:    filename,
		contentType: contentType,
		size:        size,
		status:      StatusPending,
		owner:       owner,
		createdAt:   createdAt.UTC(),
	}, nil
}

// ValidateID checks that id is usable as a storage key.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("document ID is required: %w", domain.ErrInvalidDocument)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("document ID too long (max %d): %w", MaxIDLength, domain.ErrInvalidDocument)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("document ID must be alphanumeric with underscores and hyphens: %w",
			domain.ErrInvalidDocument)
	}
	return nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id, filename, contentType, owner string, size int64,
	status Status, createdAt time.Time, chunkCount int,
) Document {
	return Document{
		id: id, filename: filename, contentType: contentType, size: size,
		status: status, owner: owner, createdAt: createdAt.UTC(), chunkCount: chunkCount,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Filename returns the uploaded file name.
func (d *Document) Filename() string { return d.filename }

// ContentType returns the declared content type.
func (d *Document) ContentType() string { return d.contentType }

// Size returns the raw upload size in bytes.
func (d *Document) Size() int64 { return d.size }

// Status returns the lifecycle status.
func (d *Document) Status() Status { return d.status }

// Owner returns the owner reference.
func (d *Document) Owner() string { return d.owner }

// CreatedAt returns the creation timestamp (UTC).
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// ChunkCount returns the number of persisted chunks.
func (d *Document) ChunkCount() int { return d.chunkCount }

// Start moves a pending document to processing.
func (d *Document) Start() error {
	return d.transition(StatusProcessing, 0)
}

// MarkIndexed moves a processing document to indexed with the persisted chunk count.
func (d *Document) MarkIndexed(chunkCount int) error {
	return d.transition(StatusIndexed, chunkCount)
}

// MarkFailed moves a processing document to failed. chunkCount is what was durably written before the failure.
func (d *Document) MarkFailed(chunkCount int) error {
	return d.transition(StatusFailed, chunkCount)
}

func (d *Document) transition(to Status, chunkCount int) error {
	if !d.status.CanTransitionTo(to) {
		return fmt.Errorf("%s -> %s: %w", d.status, to, domain.ErrInvalidTransition)
	}
	if chunkCount < 0 {
		return fmt.Errorf("negative chunk count %d: %w", chunkCount, domain.ErrInvalidTransition)
	}
	d.status = to
	d.chunkCount = chunkCount
	return nil
}
