package docdex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/chunker"
	domchat "github.com/kailas-cloud/docdex/internal/domain/chat"
	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
	"github.com/kailas-cloud/docdex/internal/domain/search/result"
	"github.com/kailas-cloud/docdex/internal/extract"
	"github.com/kailas-cloud/docdex/internal/storage"
	openaiTransport "github.com/kailas-cloud/docdex/internal/transport/openai"
	chatuc "github.com/kailas-cloud/docdex/internal/usecase/chat"
	documentuc "github.com/kailas-cloud/docdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docdex/internal/usecase/ingest"
	retrievaluc "github.com/kailas-cloud/docdex/internal/usecase/retrieval"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "docdex:"
)

// Use case seams, replaced by mocks in tests.
type ingestUseCase interface {
	Ingest(ctx context.Context, up ingestuc.Upload) (domdoc.Document, error)
}

type documentUseCase interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context) ([]domdoc.Document, error)
	Delete(ctx context.Context, id string) error
}

type retrievalUseCase interface {
	Search(ctx context.Context, query string, limit int) ([]result.Hit, error)
	ChatContext(ctx context.Context, query string) (retrievaluc.ChatContext, error)
}

type chatUseCase interface {
	Ask(ctx context.Context, message, sessionID string) (chatuc.Reply, error)
	History(ctx context.Context, sessionID string) ([]domchat.Turn, error)
}

type store interface {
	Ping(ctx context.Context) error
	Close()
}

// Client is the docdex SDK entry point.
type Client struct {
	store        store
	ingestSvc    ingestUseCase
	docSvc       documentUseCase
	retrievalSvc retrievalUseCase
	chatSvc      chatUseCase
	healthSvc    healthUseCase
	obs          *observer
}

// New creates a docdex Client and opens its store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:        defaultKeyPrefix,
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("docdex: storage required (use WithRedis, WithValkey, WithPostgres, WithSQLite or WithMemory)")
	}

	backend, err := storage.Open(ctx, storage.Config{
		Driver:           cfg.driver,
		Addrs:            cfg.addrs,
		Password:         cfg.password,
		DSN:              cfg.dsn,
		Path:             cfg.path,
		KeyPrefix:        cfg.keyPrefix,
		ReadinessTimeout: cfg.readinessTimeout,
	}, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("docdex: open storage: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return wireClient(backend, cfg, obs), nil
}

func wireClient(backend *storage.Backend, cfg *clientConfig, obs *observer) *Client {
	logger := zap.NewNop()

	retrieval := retrievaluc.New(backend.Chunks, backend.Documents).
		WithLimits(cfg.defaultLimit, cfg.maxLimit)

	completer := cfg.completer
	if completer == nil && cfg.openai != nil {
		completer = openaiTransport.NewCompleter(&openaiTransport.Config{
			APIKey:  cfg.openai.apiKey,
			BaseURL: cfg.openai.baseURL,
			Model:   cfg.openai.model,
		})
	}

	// Typed nil pointers would defeat the nil checks downstream.
	var chatCompleter chatuc.Completer
	var llmChecker healthuc.LLMChecker
	if completer != nil {
		chatCompleter = completer
		if hc, ok := completer.(healthuc.LLMChecker); ok {
			llmChecker = hc
		}
	}

	return &Client{
		store:        backend,
		ingestSvc:    ingestuc.New(backend.Documents, backend.Chunks, extract.New(logger), chunker.Default(), logger),
		docSvc:       documentuc.New(backend.Documents, backend.Chunks, logger),
		retrievalSvc: retrieval,
		chatSvc:      chatuc.New(retrieval, chatCompleter, backend.History, logger),
		healthSvc:    healthuc.New(backend, llmChecker),
		obs:          obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Ingest extracts, chunks and indexes an upload synchronously.
//
// A storage failure after the document was recorded returns the failed
// document together with an error wrapping ErrPersistence.
func (c *Client) Ingest(ctx context.Context, up Upload) (doc Document, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("document.ingest", start, err,
			slog.String("filename", up.Filename), slog.String("document_id", doc.ID), slog.Int("bytes", len(up.Data)))
	}()

	d, err := c.ingestSvc.Ingest(ctx, ingestuc.Upload{
		ID:          up.ID,
		Filename:    up.Filename,
		ContentType: up.ContentType,
		Owner:       up.Owner,
		Data:        up.Data,
	})
	if err != nil {
		if d.ID() != "" {
			return fromInternalDocument(d), fmt.Errorf("ingest: %w", err)
		}
		return Document{}, fmt.Errorf("ingest: %w", err)
	}
	return fromInternalDocument(d), nil
}

// Get retrieves a document by ID.
func (c *Client) Get(ctx context.Context, id string) (doc Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("document.get", start, err, slog.String("document_id", id)) }()

	d, err := c.docSvc.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(d), nil
}

// List returns all documents.
func (c *Client) List(ctx context.Context) (docs []Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("document.list", start, err, slog.Int("documents", len(docs))) }()

	items, err := c.docSvc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	docs = make([]Document, len(items))
	for i, d := range items {
		docs[i] = fromInternalDocument(d)
	}
	return docs, nil
}

// Delete removes a document and its chunks.
func (c *Client) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("document.delete", start, err, slog.String("document_id", id)) }()

	if err = c.docSvc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Search returns up to limit chunks sharing keywords with query, best first.
// limit <= 0 selects the default.
func (c *Client) Search(ctx context.Context, query string, limit int) (hits []SearchHit, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err, slog.Int("limit", limit), slog.Int("hits", len(hits))) }()

	items, err := c.retrievalSvc.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	hits = make([]SearchHit, len(items))
	for i, h := range items {
		hits[i] = SearchHit{
			DocumentID: h.DocumentID(),
			Filename:   h.Filename(),
			Text:       h.Text(),
			Score:      h.Score(),
		}
	}
	c.obs.hits(len(hits))
	return hits, nil
}

// ChatContext builds the excerpt block and sources a chat answer would use.
func (c *Client) ChatContext(ctx context.Context, message string) (cc ChatContext, err error) {
	start := time.Now()
	defer func() { c.obs.observe("chat.context", start, err, slog.Int("sources", len(cc.Sources))) }()

	got, err := c.retrievalSvc.ChatContext(ctx, message)
	if err != nil {
		return ChatContext{}, fmt.Errorf("chat context: %w", err)
	}
	return ChatContext{Context: got.Context, Sources: fromSources(got.Sources)}, nil
}

// Chat answers message from the indexed documents. An empty sessionID is
// replaced by a generated one. The last ten turns of the session are sent
// along with message, and the exchange is appended to the session.
func (c *Client) Chat(ctx context.Context, message, sessionID string) (reply ChatReply, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("chat", start, err, slog.String("session_id", reply.SessionID), slog.Int("sources", len(reply.Sources)))
	}()

	r, err := c.chatSvc.Ask(ctx, message, sessionID)
	if err != nil {
		return ChatReply{}, fmt.Errorf("chat: %w", err)
	}
	return ChatReply{Response: r.Response, SessionID: r.SessionID, Sources: fromSources(r.Sources)}, nil
}

// ChatHistory returns the latest turns of a session, oldest first.
func (c *Client) ChatHistory(ctx context.Context, sessionID string) (turns []ChatTurn, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("chat.history", start, err, slog.String("session_id", sessionID), slog.Int("turns", len(turns)))
	}()

	got, err := c.chatSvc.History(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("chat history: %w", err)
	}
	turns = make([]ChatTurn, len(got))
	for i := range got {
		turns[i] = ChatTurn{Role: string(got[i].Role()), Content: got[i].Content(), CreatedAt: got[i].CreatedAt()}
	}
	return turns, nil
}

func fromInternalDocument(d domdoc.Document) Document {
	return Document{
		ID:          d.ID(),
		Filename:    d.Filename(),
		ContentType: d.ContentType(),
		Size:        d.Size(),
		Status:      Status(d.Status()),
		Owner:       d.Owner(),
		CreatedAt:   d.CreatedAt(),
		ChunkCount:  d.ChunkCount(),
	}
}

func fromSources(in []result.Source) []Source {
	out := make([]Source, len(in))
	for i, s := range in {
		out[i] = Source{DocumentID: s.DocumentID(), Filename: s.Filename(), Relevance: s.Relevance()}
	}
	return out
}
