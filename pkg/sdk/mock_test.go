package docdex

import (
	"context"

	domchat "github.com/kailas-cloud/docdex/internal/domain/chat"
	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
	"github.com/kailas-cloud/docdex/internal/domain/search/result"
	chatuc "github.com/kailas-cloud/docdex/internal/usecase/chat"
	ingestuc "github.com/kailas-cloud/docdex/internal/usecase/ingest"
	retrievaluc "github.com/kailas-cloud/docdex/internal/usecase/retrieval"
)

// --- ingestUseCase mock ---

type mockIngestUC struct {
	ingestFn func(ctx context.Context, up ingestuc.Upload) (domdoc.Document, error)
}

func (m *mockIngestUC) Ingest(ctx context.Context, up ingestuc.Upload) (domdoc.Document, error) {
	return m.ingestFn(ctx, up)
}

// --- documentUseCase mock ---

type mockDocumentUC struct {
	getFn    func(ctx context.Context, id string) (domdoc.Document, error)
	listFn   func(ctx context.Context) ([]domdoc.Document, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockDocumentUC) Get(ctx context.Context, id string) (domdoc.Document, error) {
	return m.getFn(ctx, id)
}

func (m *mockDocumentUC) List(ctx context.Context) ([]domdoc.Document, error) {
	return m.listFn(ctx)
}

func (m *mockDocumentUC) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

// --- retrievalUseCase mock ---

type mockRetrievalUC struct {
	searchFn      func(ctx context.Context, query string, limit int) ([]result.Hit, error)
	chatContextFn func(ctx context.Context, query string) (retrievaluc.ChatContext, error)
}

func (m *mockRetrievalUC) Search(ctx context.Context, query string, limit int) ([]result.Hit, error) {
	return m.searchFn(ctx, query, limit)
}

func (m *mockRetrievalUC) ChatContext(ctx context.Context, query string) (retrievaluc.ChatContext, error) {
	return m.chatContextFn(ctx, query)
}

// --- chatUseCase mock ---

type mockChatUC struct {
	askFn     func(ctx context.Context, message, sessionID string) (chatuc.Reply, error)
	historyFn func(ctx context.Context, sessionID string) ([]domchat.Turn, error)
}

func (m *mockChatUC) Ask(ctx context.Context, message, sessionID string) (chatuc.Reply, error) {
	return m.askFn(ctx, message, sessionID)
}

func (m *mockChatUC) History(ctx context.Context, sessionID string) ([]domchat.Turn, error) {
	return m.historyFn(ctx, sessionID)
}

// --- store mock ---

type mockStore struct {
	pingErr error
	closed  bool
}

func (m *mockStore) Ping(_ context.Context) error { return m.pingErr }

func (m *mockStore) Close() { m.closed = true }

// --- Completer mock ---

type mockCompleter struct {
	fn        func(ctx context.Context, system, user string) (string, error)
	healthErr error
}

func (m *mockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	return m.fn(ctx, system, user)
}

func (m *mockCompleter) HealthCheck(_ context.Context) error { return m.healthErr }
