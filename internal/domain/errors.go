package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDocumentExists signals an ingestion with an already used document ID.
	ErrDocumentExists = errors.New("document already exists")
	// ErrInvalidDocument signals a malformed document identity or upload.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrUnsupportedFormat signals an upload whose content type and filename match no extractor.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrPersistence signals a storage failure during ingestion.
	ErrPersistence = errors.New("persistence failure")
	// ErrInvalidTransition signals a non-monotonic document status change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidQuery signals an invalid search or chat request.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNotImplemented signals an unimplemented or unconfigured feature.
	ErrNotImplemented = errors.New("not implemented")
	// ErrLLMProviderError signals a chat completion provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
)
