package chi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	logpkg "github.com/kailas-cloud/docdex/internal/logger"
	"github.com/kailas-cloud/docdex/internal/metrics"
)

// NewRouter builds the HTTP handler. Middleware order: request ID, access log,
// panic recovery, metrics, API key auth, routes.
func NewRouter(s *Server, apiKeys []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(accessLog(logger))
	r.Use(recoverJSON(logger))
	r.Use(metrics.Middleware())
	r.Use(APIKeyAuth(apiKeys))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})

	s.Mount(r)
	return r
}

// recoverJSON turns a handler panic into a 500 error body and logs it on the request logger.
func recoverJSON(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity
					panic(rvr)
				}
				logpkg.FromContextOr(r.Context(), logger).Error("panic recovered",
					zap.Any("panic", rvr),
					zap.Stack("stacktrace"),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(ErrorResponse{
					Code:    ErrorCodeInternalError,
					Message: "internal error",
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one line per request and echoes X-Request-ID. Handlers below it
// log through the request-scoped logger it stores in the context.
func accessLog(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}
			reqLogger := logger.With(zap.String("request_id", requestID))

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logpkg.ContextWithLogger(r.Context(), reqLogger)))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if id := rctx.URLParam("id"); id != "" {
					fields = append(fields, zap.String("document_id", id))
				}
				if id := rctx.URLParam("session_id"); id != "" {
					fields = append(fields, zap.String("session_id", id))
				}
			}
			reqLogger.Log(accessLevel(r.URL.Path, ww.Status()), "http_request", fields...)
		})
	}
}

// accessLevel keeps probe traffic at debug and raises failures.
func accessLevel(path string, status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	case path == "/health" || path == "/metrics":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}
