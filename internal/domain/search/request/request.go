package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/keyword"
)

const (
	MaxQueryLength = 4096 // characters
	DefaultLimit   = 10
	MaxLimit       = 100
)

// Request is a validated search query with its keyword set derived once.
type Request struct {
	query    string
	keywords keyword.Set
	limit    int
}

// New validates a search query. limit <= 0 selects DefaultLimit; limits above MaxLimit are clamped.
// A query made only of stop words or short tokens is valid and simply matches nothing.
func New(query string, limit int) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, fmt.Errorf("query is required: %w", domain.ErrInvalidQuery)
	}
	if n := utf8.RuneCountInString(query); n > MaxQueryLength {
		return Request{}, fmt.Errorf("query has %d chars, max %d: %w", n, MaxQueryLength, domain.ErrInvalidQuery)
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return Request{query: query, keywords: keyword.Extract(query), limit: limit}, nil
}

func (r *Request) Query() string { return r.query }

// Keywords is the query's keyword set, scored against each chunk.
func (r *Request) Keywords() keyword.Set { return r.keywords }

func (r *Request) Limit() int { return r.limit }

// Matchable reports whether any chunk could score above zero.
func (r *Request) Matchable() bool { return !r.keywords.IsEmpty() }
