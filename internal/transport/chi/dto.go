package chi

import (
	"time"

	domchat "github.com/kailas-cloud/docdex/internal/domain/chat"
	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
	"github.com/kailas-cloud/docdex/internal/domain/search/result"
)

// ErrorCode is a machine-readable error kind.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeDocumentNotFound   ErrorCode = "document_not_found"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeDocumentExists     ErrorCode = "document_already_exists"
	ErrorCodeUnsupportedFormat  ErrorCode = "unsupported_format"
	ErrorCodePayloadTooLarge    ErrorCode = "payload_too_large"
	ErrorCodeNotImplemented     ErrorCode = "not_implemented"
	ErrorCodeLLMProviderError   ErrorCode = "llm_provider_error"
	ErrorCodePersistenceFailure ErrorCode = "persistence_failure"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// DocumentResponse describes a stored document.
type DocumentResponse struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Status      string    `json:"status"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
	ChunkCount  int       `json:"chunk_count"`
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit *int   `json:"limit,omitempty"`
}

// SearchResultItem is one ranked chunk.
type SearchResultItem struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkText  string  `json:"chunk_text"`
	Score      float64 `json:"score"`
}

// ChatRequest is the body of POST /api/chat and POST /api/chat/context.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// SourceItem attributes a chat answer to a document.
type SourceItem struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Relevance  float64 `json:"relevance"`
}

// ChatResponse is the reply of POST /api/chat.
type ChatResponse struct {
	Response  string       `json:"response"`
	SessionID string       `json:"session_id"`
	Sources   []SourceItem `json:"sources"`
}

// ChatContextResponse is the reply of POST /api/chat/context.
type ChatContextResponse struct {
	Context string       `json:"context"`
	Sources []SourceItem `json:"sources"`
}

// ChatTurnItem is one entry of GET /api/chat/history/{session_id}.
type ChatTurnItem struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse is the reply of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func documentToResponse(d *domdoc.Document) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID(),
		Filename:    d.Filename(),
		ContentType: d.ContentType(),
		Size:        d.Size(),
		Status:      string(d.Status()),
		UploadedBy:  d.Owner(),
		UploadedAt:  d.CreatedAt().UTC(),
		ChunkCount:  d.ChunkCount(),
	}
}

func hitsToResponse(hits []result.Hit) []SearchResultItem {
	items := make([]SearchResultItem, len(hits))
	for i := range hits {
		items[i] = SearchResultItem{
			DocumentID: hits[i].DocumentID(),
			Filename:   hits[i].Filename(),
			ChunkText:  hits[i].Text(),
			Score:      hits[i].Score(),
		}
	}
	return items
}

func sourcesToResponse(sources []result.Source) []SourceItem {
	items := make([]SourceItem, len(sources))
	for i := range sources {
		items[i] = SourceItem{
			DocumentID: sources[i].DocumentID(),
			Filename:   sources[i].Filename(),
			Relevance:  sources[i].Relevance(),
		}
	}
	return items
}

func historyToResponse(turns []domchat.Turn) []ChatTurnItem {
	items := make([]ChatTurnItem, len(turns))
	for i := range turns {
		items[i] = ChatTurnItem{
			Role:      string(turns[i].Role()),
			Content:   turns[i].Content(),
			Timestamp: turns[i].CreatedAt(),
		}
	}
	return items
}
