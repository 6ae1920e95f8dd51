package docdex

import "time"

// Status is the processing state of a document.
type Status string

// Document statuses.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusIndexed    Status = "indexed"
	StatusFailed     Status = "failed"
)

// Upload is a raw document to ingest. An empty ID is replaced by a generated UUID.
type Upload struct {
	ID          string
	Filename    string
	ContentType string
	Owner       string
	Data        []byte
}

// Document is a stored document record.
type Document struct {
	ID          string
	Filename    string
	ContentType string
	Size        int64
	Status      Status
	Owner       string
	CreatedAt   time.Time
	ChunkCount  int
}

// SearchHit is a single search result. Text is capped to 500 characters.
type SearchHit struct {
	DocumentID string
	Filename   string
	Text       string
	Score      float64
}

// Source attributes a chat answer to a document.
type Source struct {
	DocumentID string
	Filename   string
	Relevance  float64
}

// ChatContext is the retrieval block a chat turn is grounded on.
type ChatContext struct {
	Context string
	Sources []Source
}

// ChatReply is a completed chat turn.
type ChatReply struct {
	Response  string
	SessionID string
	Sources   []Source
}

// ChatTurn is one stored message of a chat session. Role is "user" or "assistant".
type ChatTurn struct {
	Role      string
	Content   string
	CreatedAt time.Time
}
