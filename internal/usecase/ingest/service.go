package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	domchunk "github.com/kailas-cloud/docdex/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
	logpkg "github.com/kailas-cloud/docdex/internal/logger"
	"github.com/kailas-cloud/docdex/internal/metrics"
)

// Upload is a raw document submitted for ingestion. An empty ID is replaced by a generated UUID.
type Upload struct {
	ID          string
	Filename    string
	ContentType string
	Owner       string
	Data        []byte
}

// Service runs the ingestion pipeline: detect, record, extract, chunk, index and persist.
type Service struct {
	docs      DocumentRepository
	chunks    ChunkRepository
	extractor Extractor
	chunker   Chunker
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// New creates an ingestion service.
func New(docs DocumentRepository, chunks ChunkRepository, extractor Extractor, chunker Chunker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		docs:      docs,
		chunks:    chunks,
		extractor: extractor,
		chunker:   chunker,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Ingest stores an upload and indexes its text synchronously.
//
// Unsupported formats and invalid identities are rejected before any record exists. Once the
// document is recorded it moves pending -> processing -> indexed|failed. A storage failure while
// writing chunks leaves the document failed with chunk_count equal to the chunks already written
// (they are not rolled back) and returns an error wrapping domain.ErrPersistence together with the
// failed document.
func (s *Service) Ingest(ctx context.Context, up Upload) (domdoc.Document, error) {
	started := time.Now()
	defer func() { metrics.IngestDuration.Observe(time.Since(started).Seconds()) }()

	if !s.extractor.Supports(up.ContentType, up.Filename) {
		metrics.IngestDocumentsTotal.WithLabelValues("rejected").Inc()
		return domdoc.Document{}, fmt.Errorf("content type %q, file %q: %w",
			up.ContentType, up.Filename, domain.ErrUnsupportedFormat)
	}

	id := up.ID
	if id == "" {
		id = s.newID()
	}
	doc, err := domdoc.New(id, up.Filename, up.ContentType, up.Owner, int64(len(up.Data)), s.now())
	if err != nil {
		metrics.IngestDocumentsTotal.WithLabelValues("rejected").Inc()
		return domdoc.Document{}, err
	}
	ctx, log := logpkg.Scoped(ctx, s.logger, zap.String("document_id", id))

	if err := s.docs.Create(ctx, doc); err != nil {
		if errors.Is(err, domain.ErrDocumentExists) {
			metrics.IngestDocumentsTotal.WithLabelValues("rejected").Inc()
			return domdoc.Document{}, fmt.Errorf("create document: %w", err)
		}
		metrics.IngestDocumentsTotal.WithLabelValues("failed").Inc()
		return domdoc.Document{}, fmt.Errorf("create document: %w: %w", domain.ErrPersistence, err)
	}

	if err := doc.Start(); err != nil {
		return doc, fmt.Errorf("start processing: %w", err)
	}
	if err := s.docs.Update(ctx, doc); err != nil {
		return s.fail(ctx, doc, 0, fmt.Errorf("mark processing: %w", err))
	}

	text := s.extractor.Extract(up.Data, up.ContentType, up.Filename)
	pieces := s.chunker.Split(text)

	persisted := 0
	for i, piece := range pieces {
		c, err := domchunk.New(doc.ID(), i, piece, s.now())
		if err != nil {
			return s.fail(ctx, doc, persisted, fmt.Errorf("build chunk %d: %w", i, err))
		}
		if err := s.chunks.Insert(ctx, c); err != nil {
			return s.fail(ctx, doc, persisted, fmt.Errorf("insert chunk %d: %w", i, err))
		}
		persisted++
	}

	processing := doc
	if err := doc.MarkIndexed(persisted); err != nil {
		return doc, fmt.Errorf("mark indexed: %w", err)
	}
	if err := s.docs.Update(ctx, doc); err != nil {
		// The stored record is still processing; settle it as failed.
		return s.fail(ctx, processing, persisted, fmt.Errorf("mark indexed: %w", err))
	}

	metrics.IngestChunksTotal.Add(float64(persisted))
	metrics.IngestDocumentsTotal.WithLabelValues("indexed").Inc()
	log.Info("document indexed",
		zap.String("filename", doc.Filename()),
		zap.Int("text_length", len(text)),
		zap.Int("chunks", persisted),
		zap.Duration("duration", time.Since(started)),
	)
	return doc, nil
}

// fail marks the document failed with the persisted chunk count and reports a persistence error.
func (s *Service) fail(ctx context.Context, doc domdoc.Document, persisted int, cause error) (domdoc.Document, error) {
	metrics.IngestChunksTotal.Add(float64(persisted))
	metrics.IngestDocumentsTotal.WithLabelValues("failed").Inc()

	if err := doc.MarkFailed(persisted); err != nil {
		return doc, fmt.Errorf("%w: %w", domain.ErrPersistence, cause)
	}
	log := logpkg.FromContextOr(ctx, s.logger)
	if err := s.docs.Update(ctx, doc); err != nil {
		log.Error("failed to record ingestion failure", zap.Error(err))
	}

	log.Warn("document ingestion failed",
		zap.Int("persisted_chunks", persisted),
		zap.Error(cause),
	)
	return doc, fmt.Errorf("%w: %w", domain.ErrPersistence, cause)
}
