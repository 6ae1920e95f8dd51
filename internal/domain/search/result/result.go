package result

import (
	"math"
	"unicode/utf8"

	"github.com/kailas-cloud/docdex/internal/domain/chunk"
)

// MaxHitTextLength caps the chunk text returned in a search hit (characters).
const MaxHitTextLength = 500

// Scored pairs a stored chunk with its similarity to a query. It lives for a single query.
type Scored struct {
	chunk chunk.Chunk
	score float64
}

// NewScored creates a scored chunk.
func NewScored(c chunk.Chunk, score float64) Scored {
	return Scored{chunk: c, score: score}
}

// Chunk returns the scored chunk.
func (s *Scored) Chunk() chunk.Chunk { return s.chunk }

// Score returns the similarity in [0,1].
func (s *Scored) Score() float64 { return s.score }

// Hit is a search result with source attribution.
type Hit struct {
	documentID string
	filename   string
	text       string
	score      float64
}

// NewHit creates a search hit. text is capped to MaxHitTextLength characters.
func NewHit(documentID, filename, text string, score float64) Hit {
	return Hit{documentID: documentID, filename: filename, text: Truncate(text, MaxHitTextLength), score: score}
}

// DocumentID returns the owning document ID.
func (h *Hit) DocumentID() string { return h.documentID }

// Filename returns the owning document's file name.
func (h *Hit) Filename() string { return h.filename }

// Text returns the (capped) chunk text.
func (h *Hit) Text() string { return h.text }

// Score returns the similarity score.
func (h *Hit) Score() float64 { return h.score }

// Source attributes chat context to a document.
type Source struct {
	documentID string
	filename   string
	relevance  float64
}

// NewSource creates a chat source; relevance is rounded to 3 decimals.
func NewSource(documentID, filename string, score float64) Source {
	return Source{documentID: documentID, filename: filename, relevance: math.Round(score*1000) / 1000}
}

// DocumentID returns the document ID.
func (s *Source) DocumentID() string { return s.documentID }

// Filename returns the document file name.
func (s *Source) Filename() string { return s.filename }

// Relevance returns the rounded similarity score.
func (s *Source) Relevance() float64 { return s.relevance }

// Truncate returns at most n characters of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
