package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/chunker"
	"github.com/kailas-cloud/docdex/internal/config"
	"github.com/kailas-cloud/docdex/internal/extract"
	"github.com/kailas-cloud/docdex/internal/storage"
	openaiTransport "github.com/kailas-cloud/docdex/internal/transport/openai"
	chatuc "github.com/kailas-cloud/docdex/internal/usecase/chat"
	documentuc "github.com/kailas-cloud/docdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docdex/internal/usecase/ingest"
	retrievaluc "github.com/kailas-cloud/docdex/internal/usecase/retrieval"
)

// app is the composition root: one backend and the services built on it.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	backend *storage.Backend

	ingest    *ingestuc.Service
	documents *documentuc.Service
	retrieval *retrievaluc.Service
	chat      *chatuc.Service
	health    *healthuc.Service
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	backend, err := storage.Open(ctx, storage.Config{
		Driver:           cfg.Database.Driver,
		Addrs:            cfg.Database.Addrs,
		Password:         cfg.Database.Password,
		DSN:              cfg.Database.DSN,
		Path:             cfg.Database.Path,
		KeyPrefix:        cfg.Storage.KeyPrefix,
		ReadinessTimeout: time.Duration(cfg.Database.ReadinessTimeout) * time.Second,
		Debug:            cfg.Database.Debug,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	retrieval := retrievaluc.New(backend.Chunks, backend.Documents).
		WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit)

	// Pass a nil interface (not a typed nil pointer) when chat is disabled.
	var completer chatuc.Completer
	var llmChecker healthuc.LLMChecker
	if cfg.LLM.Enabled() {
		c := openaiTransport.NewCompleter(&openaiTransport.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
			Logger:      logger,
		})
		completer, llmChecker = c, c
		logger.Info("Chat completion enabled", zap.String("model", c.Model()))
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		backend:   backend,
		ingest:    ingestuc.New(backend.Documents, backend.Chunks, extract.New(logger), chunker.Default(), logger),
		documents: documentuc.New(backend.Documents, backend.Chunks, logger),
		retrieval: retrieval,
		chat:      chatuc.New(retrieval, completer, backend.History, logger),
		health:    healthuc.New(backend, llmChecker),
	}, nil
}

func (a *app) Close() {
	a.backend.Close()
	_ = a.logger.Sync()
}
