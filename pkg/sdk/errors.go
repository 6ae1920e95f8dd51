package docdex

import "github.com/kailas-cloud/docdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrDocumentNotFound  = domain.ErrDocumentNotFound
	ErrDocumentExists    = domain.ErrDocumentExists
	ErrInvalidDocument   = domain.ErrInvalidDocument
	ErrUnsupportedFormat = domain.ErrUnsupportedFormat
	ErrPersistence       = domain.ErrPersistence
	ErrInvalidQuery      = domain.ErrInvalidQuery
	ErrNotImplemented    = domain.ErrNotImplemented
	ErrLLMProviderError  = domain.ErrLLMProviderError
)
