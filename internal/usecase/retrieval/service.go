package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/keyword"
	"github.com/kailas-cloud/docdex/internal/domain/search/request"
	"github.com/kailas-cloud/docdex/internal/domain/search/result"
	"github.com/kailas-cloud/docdex/internal/metrics"
)

// Chat context shape.
const (
	ChatContextSize = 5
	ChatSourceCount = 3

	// NoRelevantDocuments replaces the context block when no chunk shares a keyword with the query.
	NoRelevantDocuments = "No relevant documents found in the knowledge base."

	excerptPrefix    = "[Document excerpt]: "
	excerptSeparator = "\n\n"
)

// ChatContext is the retrieval part of a chat turn.
type ChatContext struct {
	Context string
	Sources []result.Source
}

// Service scores the stored corpus against free-text queries.
type Service struct {
	chunks       ChunkReader
	docs         DocumentReader
	defaultLimit int
	maxLimit     int
}

// New creates a retrieval service.
func New(chunks ChunkReader, docs DocumentReader) *Service {
	return &Service{
		chunks:       chunks,
		docs:         docs,
		defaultLimit: request.DefaultLimit,
		maxLimit:     request.MaxLimit,
	}
}

// WithLimits configures the default and maximum search result counts.
func (s *Service) WithLimits(defaultLimit, maxLimit int) *Service {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 && maxLimit <= request.MaxLimit {
		s.maxLimit = maxLimit
	}
	return s
}

// Search returns up to limit hits with a non-zero score, best first. limit <= 0 selects the
// default. Hits whose document no longer exists are dropped after truncation.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]result.Hit, error) {
	defer observe("search", time.Now())

	if limit <= 0 {
		limit = s.defaultLimit
	}
	limit = min(limit, s.maxLimit)
	req, err := request.New(query, limit)
	if err != nil {
		return nil, err
	}

	if !req.Matchable() {
		return []result.Hit{}, nil
	}
	ranked, err := s.rank(ctx, req.Keywords())
	if err != nil {
		return nil, err
	}

	top := make([]result.Scored, 0, req.Limit())
	for _, sc := range ranked {
		if sc.Score() == 0 || len(top) == req.Limit() {
			break
		}
		top = append(top, sc)
	}

	names := make(map[string]docName)
	hits := make([]result.Hit, 0, len(top))
	for _, sc := range top {
		c := sc.Chunk()
		filename, found, err := s.filename(ctx, names, c.DocumentID())
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		hits = append(hits, result.NewHit(c.DocumentID(), filename, c.Text(), sc.Score()))
	}
	return hits, nil
}

// ChatContext builds the prompt context from the five best matching chunks and attributes up to
// three sources. Chunks whose document no longer exists are skipped before the five are chosen.
func (s *Service) ChatContext(ctx context.Context, query string) (ChatContext, error) {
	defer observe("chat_context", time.Now())

	if strings.TrimSpace(query) == "" {
		return ChatContext{}, fmt.Errorf("message is required: %w", domain.ErrInvalidQuery)
	}

	ranked, err := s.rank(ctx, keyword.Extract(query))
	if err != nil {
		return ChatContext{}, err
	}

	names := make(map[string]docName)
	excerpts := make([]string, 0, ChatContextSize)
	var out ChatContext
	for _, sc := range ranked {
		if sc.Score() == 0 || len(excerpts) == ChatContextSize {
			break
		}
		c := sc.Chunk()
		filename, found, err := s.filename(ctx, names, c.DocumentID())
		if err != nil {
			return ChatContext{}, err
		}
		if !found {
			continue
		}
		excerpts = append(excerpts, excerptPrefix+c.Text())
		if len(out.Sources) < ChatSourceCount {
			out.Sources = append(out.Sources, result.NewSource(c.DocumentID(), filename, sc.Score()))
		}
	}

	out.Context = NoRelevantDocuments
	if len(excerpts) > 0 {
		out.Context = strings.Join(excerpts, excerptSeparator)
	}
	return out, nil
}

func (s *Service) rank(ctx context.Context, query keyword.Set) ([]result.Scored, error) {
	corpus, err := s.chunks.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	metrics.RetrievalCorpusChunks.Set(float64(len(corpus)))
	return Rank(query, corpus), nil
}

type docName struct {
	name  string
	found bool
}

// filename resolves and memoizes a document's filename; found is false when the document is gone.
func (s *Service) filename(ctx context.Context, cache map[string]docName, documentID string) (string, bool, error) {
	if n, ok := cache[documentID]; ok {
		return n.name, n.found, nil
	}
	doc, err := s.docs.Get(ctx, documentID)
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		cache[documentID] = docName{}
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("get document %s: %w", documentID, err)
	}
	cache[documentID] = docName{name: doc.Filename(), found: true}
	return doc.Filename(), true, nil
}

func observe(operation string, started time.Time) {
	metrics.RetrievalDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
