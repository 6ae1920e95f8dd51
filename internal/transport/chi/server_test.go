package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/docdex/internal/chunker"
	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/extract"
	"github.com/kailas-cloud/docdex/internal/repository/memory"
	chatuc "github.com/kailas-cloud/docdex/internal/usecase/chat"
	documentuc "github.com/kailas-cloud/docdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docdex/internal/usecase/ingest"
	retrievaluc "github.com/kailas-cloud/docdex/internal/usecase/retrieval"
)

// --- Helpers ---

type stubCompleter struct {
	reply string
	err   error
}

func (c *stubCompleter) Complete(context.Context, string, string) (string, error) {
	return c.reply, c.err
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type failingChecker struct{}

func (failingChecker) HealthCheck(context.Context) error { return errors.New("provider unreachable") }

func newTestServer(t *testing.T, completer chatuc.Completer) (*Server, http.Handler) {
	t.Helper()
	logger := zap.NewNop()
	store := memory.New()

	retrieval := retrievaluc.New(store, store)
	srv := NewServer(
		ingestuc.New(store, store, extract.New(logger), chunker.Default(), logger),
		documentuc.New(store, store, logger),
		retrieval,
		chatuc.New(retrieval, completer, store, logger),
		healthuc.New(store, nil),
		logger,
	)
	return srv, NewRouter(srv, nil, logger)
}

func multipartBody(t *testing.T, filename, contentType string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, mw.FormDataContentType()
}

func upload(t *testing.T, h http.Handler, filename, contentType, text string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, filename, contentType, []byte(text), fields)
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func doJSON(t *testing.T, h http.Handler, method, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if v != nil {
		if err := json.NewEncoder(&body).Encode(v); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

// --- Documents ---

func TestUploadDocument_Created(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := upload(t, h, "notes.txt", "text/plain", strings.Repeat("a", 1200), map[string]string{"owner": "user-1", "id": "doc-1"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/api/documents/doc-1" {
		t.Errorf("Location = %q", loc)
	}

	var doc DocumentResponse
	if err := json.NewDecoder(rr.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.ID != "doc-1" || doc.Filename != "notes.txt" || doc.UploadedBy != "user-1" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.Status != "indexed" || doc.ChunkCount != 2 || doc.Size != 1200 {
		t.Errorf("unexpected ingestion outcome: %+v", doc)
	}
}

func TestUploadDocument_Unsupported415(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := upload(t, h, "tool.exe", "application/octet-stream", "MZ", nil)
	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != ErrorCodeUnsupportedFormat {
		t.Errorf("code = %s", resp.Code)
	}

	list := doJSON(t, h, http.MethodGet, "/api/documents", nil)
	var docs []DocumentResponse
	_ = json.NewDecoder(list.Body).Decode(&docs)
	if len(docs) != 0 {
		t.Errorf("rejected upload must not create a document, got %d", len(docs))
	}
}

func TestUploadDocument_TooLarge413(t *testing.T) {
	srv, h := newTestServer(t, nil)
	srv.WithMaxUploadSize(16)

	rr := upload(t, h, "big.txt", "text/plain", strings.Repeat("x", 64), nil)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != ErrorCodePayloadTooLarge {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestUploadDocument_MissingFile400(t *testing.T) {
	_, h := newTestServer(t, nil)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	_ = mw.WriteField("owner", "user-1")
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestUploadDocument_Duplicate409(t *testing.T) {
	_, h := newTestServer(t, nil)

	upload(t, h, "a.txt", "text/plain", "first", map[string]string{"id": "same"})
	rr := upload(t, h, "b.txt", "text/plain", "second", map[string]string{"id": "same"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != ErrorCodeDocumentExists {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestUploadDocument_InvalidID400(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := upload(t, h, "a.txt", "text/plain", "text", map[string]string{"id": "bad id!"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestGetListDeleteDocument(t *testing.T) {
	_, h := newTestServer(t, nil)
	upload(t, h, "a.txt", "text/plain", "vacation policy", map[string]string{"id": "doc-a"})
	upload(t, h, "b.md", "text/markdown", "# Expenses\n\nTravel expenses policy", map[string]string{"id": "doc-b"})

	rr := doJSON(t, h, http.MethodGet, "/api/documents/doc-a", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/documents", nil)
	var docs []DocumentResponse
	if err := json.NewDecoder(rr.Body).Decode(&docs); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	rr = doJSON(t, h, http.MethodDelete, "/api/documents/doc-a", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/documents/doc-a", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != ErrorCodeDocumentNotFound {
		t.Errorf("code = %s", resp.Code)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/search", SearchRequest{Query: "vacation policy"})
	var hits []SearchResultItem
	_ = json.NewDecoder(rr.Body).Decode(&hits)
	for _, hit := range hits {
		if hit.DocumentID == "doc-a" {
			t.Error("deleted document returned by search")
		}
	}
}

func TestDeleteDocument_Unknown404(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := doJSON(t, h, http.MethodDelete, "/api/documents/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
}

// --- Search ---

func TestSearch_RanksHits(t *testing.T) {
	_, h := newTestServer(t, nil)
	upload(t, h, "kms.txt", "text/plain", "Enterprise Knowledge Management System features include search", map[string]string{"id": "kms"})
	upload(t, h, "other.txt", "text/plain", "Quarterly revenue grew in the north region", map[string]string{"id": "other"})

	rr := doJSON(t, h, http.MethodPost, "/api/search", SearchRequest{Query: "enterprise knowledge features"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var hits []SearchResultItem
	if err := json.NewDecoder(rr.Body).Decode(&hits); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hits) != 1 || hits[0].DocumentID != "kms" || hits[0].Filename != "kms.txt" {
		t.Fatalf("unexpected hits: %+v", hits)
	}
	if hits[0].Score < 0.42 || hits[0].Score > 0.43 {
		t.Errorf("score = %f, want 3/7", hits[0].Score)
	}
}

func TestSearch_NoMatchesEmptyArray(t *testing.T) {
	_, h := newTestServer(t, nil)
	upload(t, h, "a.txt", "text/plain", "alpha beta gamma", nil)

	rr := doJSON(t, h, http.MethodPost, "/api/search", SearchRequest{Query: "zebra"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestSearch_BadRequests(t *testing.T) {
	_, h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid json: status = %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/search", SearchRequest{Query: ""})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty query: status = %d", rr.Code)
	}

	negative := -1
	rr = doJSON(t, h, http.MethodPost, "/api/search", SearchRequest{Query: "x", Limit: &negative})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("negative limit: status = %d", rr.Code)
	}
}

// --- Chat ---

func TestChat_NotConfigured501(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := doJSON(t, h, http.MethodPost, "/api/chat", ChatRequest{Message: "hello"})
	if rr.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestChat_Answer(t *testing.T) {
	_, h := newTestServer(t, &stubCompleter{reply: "Twenty days."})
	upload(t, h, "handbook.txt", "text/plain", "Employees receive twenty vacation days", map[string]string{"id": "hb"})

	rr := doJSON(t, h, http.MethodPost, "/api/chat", ChatRequest{Message: "vacation days", SessionID: "s-1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response != "Twenty days." || resp.SessionID != "s-1" {
		t.Errorf("unexpected reply: %+v", resp)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Filename != "handbook.txt" {
		t.Errorf("unexpected sources: %+v", resp.Sources)
	}
}

func TestChat_ProviderError502(t *testing.T) {
	_, h := newTestServer(t, &stubCompleter{err: domain.ErrLLMProviderError})

	rr := doJSON(t, h, http.MethodPost, "/api/chat", ChatRequest{Message: "hello"})
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != ErrorCodeLLMProviderError {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestChatHistory(t *testing.T) {
	_, h := newTestServer(t, &stubCompleter{reply: "Twenty days."})

	rr := doJSON(t, h, http.MethodPost, "/api/chat", ChatRequest{Message: "vacation days", SessionID: "s-1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("chat status = %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/chat/history/s-1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var turns []ChatTurnItem
	if err := json.NewDecoder(rr.Body).Decode(&turns); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != "user" || turns[0].Content != "vacation days" {
		t.Errorf("unexpected first turn: %+v", turns[0])
	}
	if turns[1].Role != "assistant" || turns[1].Content != "Twenty days." || turns[1].Timestamp.IsZero() {
		t.Errorf("unexpected second turn: %+v", turns[1])
	}

	rr = doJSON(t, h, http.MethodGet, "/api/chat/history/unknown", nil)
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("unknown session: status %d body %s", rr.Code, rr.Body.String())
	}
}

func TestChatHistory_InvalidSession(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := doJSON(t, h, http.MethodGet, "/api/chat/history/bad:id", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestChatContext(t *testing.T) {
	_, h := newTestServer(t, nil)
	upload(t, h, "a.txt", "text/plain", "alpha beta gamma", nil)

	rr := doJSON(t, h, http.MethodPost, "/api/chat/context", ChatRequest{Message: "zebra"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp ChatContextResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Context != retrievaluc.NoRelevantDocuments || len(resp.Sources) != 0 {
		t.Errorf("unexpected context: %+v", resp)
	}
}

// --- Health / misc ---

func TestHealthCheck(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := doJSON(t, h, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Checks["database"] != "ok" {
		t.Errorf("unexpected health: %+v", resp)
	}
}

func TestHealthCheck_Unhealthy503(t *testing.T) {
	logger := zap.NewNop()
	store := memory.New()
	retrieval := retrievaluc.New(store, store)
	srv := NewServer(
		ingestuc.New(store, store, extract.New(logger), chunker.Default(), logger),
		documentuc.New(store, store, logger),
		retrieval,
		chatuc.New(retrieval, nil, store, logger),
		healthuc.New(failingPinger{}, nil),
		logger,
	)
	h := NewRouter(srv, nil, logger)

	rr := doJSON(t, h, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestHealthCheck_DegradedStillServes(t *testing.T) {
	logger := zap.NewNop()
	store := memory.New()
	retrieval := retrievaluc.New(store, store)
	srv := NewServer(
		ingestuc.New(store, store, extract.New(logger), chunker.Default(), logger),
		documentuc.New(store, store, logger),
		retrieval,
		chatuc.New(retrieval, nil, store, logger),
		healthuc.New(store, failingChecker{}),
		logger,
	)
	h := NewRouter(srv, nil, logger)

	rr := doJSON(t, h, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "degraded" || body.Checks["llm"] != "error" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestRouter_RequestIDAndNotFound(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := doJSON(t, h, http.MethodGet, "/api/unknown", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestRouter_AuthProtectsAPI(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := NewRouter(srv, []string{"secret"}, zap.NewNop())

	rr := doJSON(t, h, http.MethodGet, "/api/documents", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("without key: status = %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("health without key: status = %d", rr.Code)
	}
}

func TestRecoverJSON(t *testing.T) {
	h := recoverJSON(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != ErrorCodeInternalError {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestAccessLevel(t *testing.T) {
	tests := []struct {
		path   string
		status int
		want   zapcore.Level
	}{
		{"/api/documents", http.StatusCreated, zapcore.InfoLevel},
		{"/api/documents/x", http.StatusNotFound, zapcore.WarnLevel},
		{"/api/search", http.StatusInternalServerError, zapcore.ErrorLevel},
		{"/health", http.StatusOK, zapcore.DebugLevel},
		{"/health", http.StatusServiceUnavailable, zapcore.ErrorLevel},
		{"/metrics", http.StatusOK, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		if got := accessLevel(tt.path, tt.status); got != tt.want {
			t.Errorf("accessLevel(%s, %d) = %s, want %s", tt.path, tt.status, got, tt.want)
		}
	}
}

func TestAccessLog_DocumentID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	srv, _ := newTestServer(t, nil)
	h := NewRouter(srv, nil, zap.New(core))

	doJSON(t, h, http.MethodGet, "/api/documents/missing-doc", nil)

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 access line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["document_id"] != "missing-doc" || fields["status"] != int64(http.StatusNotFound) {
		t.Errorf("unexpected fields: %v", fields)
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %s", entries[0].Level)
	}
}
