package document

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
	logpkg "github.com/kailas-cloud/docdex/internal/logger"
)

// Service handles document lookup, listing and cascading deletion.
type Service struct {
	repo   Repository
	chunks ChunkDeleter
	logger *zap.Logger
}

// New creates a document service.
func New(repo Repository, chunks ChunkDeleter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, chunks: chunks, logger: logger}
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (domdoc.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns all documents, newest first.
func (s *Service) List(ctx context.Context) ([]domdoc.Document, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Delete removes every chunk of a document, then the document itself. A final sweep removes
// chunks an in-flight ingestion wrote in between; once the document is gone no store accepts
// further chunks for it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return domain.ErrDocumentNotFound
		}
		return fmt.Errorf("get document: %w", err)
	}

	n, err := s.chunks.DeleteByDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	log := logpkg.FromContextOr(ctx, s.logger)
	late, err := s.chunks.DeleteByDocument(ctx, id)
	if err != nil {
		// Leftovers belong to no document, so retrieval no longer returns them.
		log.Warn("failed to sweep chunks after delete", zap.String("document_id", id), zap.Error(err))
	}
	log.Info("document deleted", zap.String("document_id", id), zap.Int("chunks", n+late))
	return nil
}
