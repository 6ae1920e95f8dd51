package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/docdex/internal/domain"
	domchat "github.com/kailas-cloud/docdex/internal/domain/chat"
	"github.com/kailas-cloud/docdex/internal/domain/search/result"
	"github.com/kailas-cloud/docdex/internal/usecase/retrieval"
)

// --- Mocks ---

type mockRetriever struct {
	cc    retrieval.ChatContext
	err   error
	query string
}

func (m *mockRetriever) ChatContext(_ context.Context, query string) (retrieval.ChatContext, error) {
	m.query = query
	return m.cc, m.err
}

type mockCompleter struct {
	reply  string
	err    error
	system string
	user   string
	calls  int
}

func (m *mockCompleter) Complete(_ context.Context, system, user string) (string, error) {
	m.calls++
	m.system = system
	m.user = user
	return m.reply, m.err
}

type mockHistory struct {
	turns     []domchat.Turn
	limit     int
	appendErr error
	recentErr error
}

func (m *mockHistory) Append(_ context.Context, turns ...domchat.Turn) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.turns = append(m.turns, turns...)
	return nil
}

func (m *mockHistory) Recent(_ context.Context, sessionID string, limit int) ([]domchat.Turn, error) {
	m.limit = limit
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	var out []domchat.Turn
	for _, t := range m.turns {
		if t.SessionID() == sessionID {
			out = append(out, t)
		}
	}
	return out[max(0, len(out)-limit):], nil
}

var fixedNow = time.Date(2026, 7, 3, 12, 0, 0, 0, time.UTC)

// --- Tests ---

func TestAsk_Success(t *testing.T) {
	ret := &mockRetriever{cc: retrieval.ChatContext{
		Context: "[Document excerpt]: Employees get twenty vacation days.",
		Sources: []result.Source{result.NewSource("doc-1", "handbook.pdf", 0.5)},
	}}
	comp := &mockCompleter{reply: "Twenty days (handbook.pdf)."}
	svc := New(ret, comp, nil, nil)

	reply, err := svc.Ask(context.Background(), "How many vacation days?", "session-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Response != "Twenty days (handbook.pdf)." {
		t.Errorf("Response = %q", reply.Response)
	}
	if reply.SessionID != "session-1" {
		t.Errorf("SessionID = %q", reply.SessionID)
	}
	if len(reply.Sources) != 1 || reply.Sources[0].Filename() != "handbook.pdf" {
		t.Errorf("unexpected sources: %+v", reply.Sources)
	}
	if ret.query != "How many vacation days?" || comp.user != "How many vacation days?" {
		t.Errorf("message not forwarded: retriever %q, completer %q", ret.query, comp.user)
	}
	if !strings.HasSuffix(comp.system, "Context from documents:\n[Document excerpt]: Employees get twenty vacation days.") {
		t.Errorf("system prompt does not end with context: %q", comp.system)
	}
	if !strings.HasPrefix(comp.system, "You are an intelligent knowledge assistant") {
		t.Errorf("unexpected system prompt: %q", comp.system)
	}
}

func TestAsk_GeneratesSessionID(t *testing.T) {
	svc := New(&mockRetriever{cc: retrieval.ChatContext{Context: retrieval.NoRelevantDocuments}}, &mockCompleter{reply: "ok"}, nil, nil)

	reply, err := svc.Ask(context.Background(), "hello there", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(reply.SessionID); err != nil {
		t.Errorf("expected UUID session id, got %q", reply.SessionID)
	}
}

func TestAsk_NotConfigured(t *testing.T) {
	svc := New(&mockRetriever{}, nil, nil, nil)
	if svc.Enabled() {
		t.Error("expected Enabled() false without completer")
	}
	_, err := svc.Ask(context.Background(), "hello", "")
	if !errors.Is(err, domain.ErrNotImplemented) {
		t.Errorf("expected ErrNotImplemented, got %v", err)
	}
}

func TestAsk_EmptyMessage(t *testing.T) {
	comp := &mockCompleter{}
	svc := New(&mockRetriever{}, comp, nil, nil)

	_, err := svc.Ask(context.Background(), "  ", "")
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
	if comp.calls != 0 {
		t.Error("completer must not be called for an empty message")
	}
}

func TestAsk_RetrievalError(t *testing.T) {
	comp := &mockCompleter{}
	svc := New(&mockRetriever{err: errors.New("store down")}, comp, nil, nil)

	if _, err := svc.Ask(context.Background(), "hello", ""); err == nil {
		t.Fatal("expected error")
	}
	if comp.calls != 0 {
		t.Error("completer must not be called when retrieval fails")
	}
}

func TestAsk_ProviderError(t *testing.T) {
	svc := New(&mockRetriever{}, &mockCompleter{err: errors.New("connection reset")}, nil, nil)

	_, err := svc.Ask(context.Background(), "hello", "")
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Errorf("expected ErrLLMProviderError, got %v", err)
	}
}

func TestAsk_ProviderErrorAlreadyWrapped(t *testing.T) {
	wrapped := errors.Join(errors.New("429"), domain.ErrLLMProviderError)
	svc := New(&mockRetriever{}, &mockCompleter{err: wrapped}, nil, nil)

	_, err := svc.Ask(context.Background(), "hello", "")
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Errorf("expected ErrLLMProviderError, got %v", err)
	}
}

func TestSystemPrompt(t *testing.T) {
	got := SystemPrompt(retrieval.NoRelevantDocuments)
	if !strings.Contains(got, "If the answer is not found in the context, say so clearly.") {
		t.Errorf("missing instruction: %q", got)
	}
	if !strings.HasSuffix(got, "Context from documents:\n"+retrieval.NoRelevantDocuments) {
		t.Errorf("missing context block: %q", got)
	}
}

func TestAsk_RecordsAndReplaysHistory(t *testing.T) {
	hist := &mockHistory{}
	comp := &mockCompleter{reply: "Twenty days."}
	svc := New(&mockRetriever{cc: retrieval.ChatContext{Context: retrieval.NoRelevantDocuments}}, comp, hist, nil).
		WithClock(func() time.Time { return fixedNow })
	ctx := context.Background()

	if _, err := svc.Ask(ctx, "How many vacation days?", "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comp.user != "How many vacation days?" {
		t.Errorf("first turn must be sent as is, got %q", comp.user)
	}
	if len(hist.turns) != 2 {
		t.Fatalf("expected 2 stored turns, got %d", len(hist.turns))
	}
	if hist.turns[0].Role() != domchat.RoleUser || hist.turns[1].Role() != domchat.RoleAssistant {
		t.Errorf("unexpected roles: %s, %s", hist.turns[0].Role(), hist.turns[1].Role())
	}
	if hist.turns[1].Content() != "Twenty days." || !hist.turns[1].CreatedAt().Equal(fixedNow) {
		t.Errorf("unexpected answer turn: %q at %v", hist.turns[1].Content(), hist.turns[1].CreatedAt())
	}

	comp.reply = "Ten."
	if _, err := svc.Ask(ctx, "And sick days?", "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "User: How many vacation days?\nAssistant: Twenty days.\nUser: And sick days?"
	if comp.user != want {
		t.Errorf("completer got %q, want %q", comp.user, want)
	}
	if hist.limit != PromptTurns {
		t.Errorf("replayed limit = %d, want %d", hist.limit, PromptTurns)
	}
}

func TestAsk_ReplaysOnlyLastTurns(t *testing.T) {
	hist := &mockHistory{}
	for i := range 12 {
		turn, _ := domchat.NewTurn("s1", domchat.RoleUser, strings.Repeat("q", i+1), fixedNow)
		hist.turns = append(hist.turns, turn)
	}
	comp := &mockCompleter{reply: "ok"}
	svc := New(&mockRetriever{}, comp, hist, nil)

	if _, err := svc.Ask(context.Background(), "latest", "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := strings.Count(comp.user, "User: "); n != PromptTurns+1 {
		t.Errorf("expected %d user lines, got %d", PromptTurns+1, n)
	}
	if strings.Contains(comp.user, "User: q\n") {
		t.Error("oldest turns must be dropped")
	}
}

func TestAsk_HistoryAppendFailureKeepsReply(t *testing.T) {
	hist := &mockHistory{appendErr: errors.New("disk full")}
	svc := New(&mockRetriever{}, &mockCompleter{reply: "ok"}, hist, nil)

	reply, err := svc.Ask(context.Background(), "hello", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Response != "ok" {
		t.Errorf("Response = %q", reply.Response)
	}
}

func TestAsk_ProviderErrorRecordsNothing(t *testing.T) {
	hist := &mockHistory{}
	svc := New(&mockRetriever{}, &mockCompleter{err: errors.New("timeout")}, hist, nil)

	if _, err := svc.Ask(context.Background(), "hello", "s1"); err == nil {
		t.Fatal("expected error")
	}
	if len(hist.turns) != 0 {
		t.Errorf("failed turns must not be stored, got %d", len(hist.turns))
	}
}

func TestAsk_InvalidSessionID(t *testing.T) {
	comp := &mockCompleter{}
	svc := New(&mockRetriever{}, comp, &mockHistory{}, nil)

	_, err := svc.Ask(context.Background(), "hello", "bad:id")
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	if comp.calls != 0 {
		t.Error("completer must not be called")
	}
}

func TestHistory(t *testing.T) {
	hist := &mockHistory{}
	svc := New(&mockRetriever{}, &mockCompleter{reply: "answer"}, hist, nil)
	ctx := context.Background()
	_, _ = svc.Ask(ctx, "question", "s1")
	_, _ = svc.Ask(ctx, "other", "s2")

	turns, err := svc.History(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(turns) != 2 || turns[0].Content() != "question" || turns[1].Content() != "answer" {
		t.Errorf("unexpected history: %+v", turns)
	}
	if hist.limit != HistoryTurns {
		t.Errorf("limit = %d, want %d", hist.limit, HistoryTurns)
	}

	if _, err := svc.History(ctx, ""); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for empty session, got %v", err)
	}

	hist.recentErr = errors.New("down")
	if _, err := svc.History(ctx, "s1"); err == nil {
		t.Error("expected store error")
	}
}
