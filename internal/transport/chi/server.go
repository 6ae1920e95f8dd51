package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	chatuc "github.com/kailas-cloud/docdex/internal/usecase/chat"
	documentuc "github.com/kailas-cloud/docdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docdex/internal/usecase/ingest"
	retrievaluc "github.com/kailas-cloud/docdex/internal/usecase/retrieval"
)

const (
	// DefaultMaxUploadBytes caps a single uploaded file.
	DefaultMaxUploadBytes int64 = 50 << 20

	multipartMemory   = 8 << 20
	multipartOverhead = 1 << 20
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the document, search and chat API.
type Server struct {
	ingest         *ingestuc.Service
	documents      *documentuc.Service
	retrieval      *retrievaluc.Service
	chat           *chatuc.Service
	health         *healthuc.Service
	logger         *zap.Logger
	maxUploadBytes int64
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest *ingestuc.Service,
	documents *documentuc.Service,
	retrieval *retrievaluc.Service,
	chat *chatuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest:         ingest,
		documents:      documents,
		retrieval:      retrieval,
		chat:           chat,
		health:         health,
		logger:         logger,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, ErrorCodeDocumentNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrDocumentExists, http.StatusConflict, ErrorCodeDocumentExists),
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusUnsupportedMediaType, ErrorCodeUnsupportedFormat),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, ErrorCodeNotImplemented),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, ErrorCodeLLMProviderError),
		sentinelHandler(domain.ErrPersistence, http.StatusInternalServerError, ErrorCodePersistenceFailure),
	}
	return s
}

// WithMaxUploadSize overrides the upload size cap. Non-positive values are ignored.
func (s *Server) WithMaxUploadSize(n int64) *Server {
	if n > 0 {
		s.maxUploadBytes = n
	}
	return s
}

// Mount registers the API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/documents", s.UploadDocument)
		r.Get("/documents", s.ListDocuments)
		r.Get("/documents/{id}", s.GetDocument)
		r.Delete("/documents/{id}", s.DeleteDocument)
		r.Post("/search", s.Search)
		r.Post("/chat", s.Chat)
		r.Post("/chat/context", s.ChatContext)
		r.Get("/chat/history/{session_id}", s.ChatHistory)
	})
}

// UploadDocument handles POST /api/documents (multipart: file, optional id and owner).
func (s *Server) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			s.writeTooLarge(w)
			return
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "file is required")
		return
	}
	defer file.Close()

	if header.Size > s.maxUploadBytes {
		s.writeTooLarge(w)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Failed to read file")
		return
	}

	doc, err := s.ingest.Ingest(r.Context(), ingestuc.Upload{
		ID:          r.FormValue("id"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Owner:       r.FormValue("owner"),
		Data:        data,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/documents/"+doc.ID())
	writeJSON(w, http.StatusCreated, documentToResponse(&doc))
}

// ListDocuments handles GET /api/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]DocumentResponse, len(docs))
	for i := range docs {
		items[i] = documentToResponse(&docs[i])
	}
	writeJSON(w, http.StatusOK, items)
}

// GetDocument handles GET /api/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(&doc))
}

// DeleteDocument handles DELETE /api/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles POST /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	limit := 0
	if req.Limit != nil {
		if *req.Limit < 0 {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "limit must not be negative")
			return
		}
		limit = *req.Limit
	}

	hits, err := s.retrieval.Search(r.Context(), req.Query, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hitsToResponse(hits))
}

// Chat handles POST /api/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	reply, err := s.chat.Ask(r.Context(), req.Message, req.SessionID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{
		Response:  reply.Response,
		SessionID: reply.SessionID,
		Sources:   sourcesToResponse(reply.Sources),
	})
}

// ChatContext handles POST /api/chat/context.
func (s *Server) ChatContext(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cc, err := s.retrieval.ChatContext(r.Context(), req.Message)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatContextResponse{
		Context: cc.Context,
		Sources: sourcesToResponse(cc.Sources),
	})
}

// ChatHistory handles GET /api/chat/history/{session_id}.
func (s *Server) ChatHistory(w http.ResponseWriter, r *http.Request) {
	turns, err := s.chat.History(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, historyToResponse(turns))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if !report.Status.Serving() {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) writeTooLarge(w http.ResponseWriter) {
	writeError(w, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge,
		fmt.Sprintf("file exceeds the %d byte upload limit", s.maxUploadBytes))
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrNotFound,
		domain.ErrDocumentExists,
		domain.ErrUnsupportedFormat,
		domain.ErrInvalidDocument,
		domain.ErrInvalidQuery,
		domain.ErrNotImplemented,
		domain.ErrLLMProviderError,
		domain.ErrPersistence,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
