package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/docdex/internal/logger"
)

// Probes stay reachable without a key.
var authExempt = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// apiKey is a configured key kept only as its digest.
type apiKey struct {
	digest [sha256.Size]byte
	id     string // short fingerprint for logs
}

// APIKeyAuth accepts `Authorization: Bearer <key>` or `X-API-Key: <key>`.
// With no non-empty keys configured it is a pass-through.
// On success the request logger is tagged with the key fingerprint.
func APIKeyAuth(keys []string) func(http.Handler) http.Handler {
	var valid []apiKey
	for _, k := range keys {
		if k == "" {
			continue
		}
		d := sha256.Sum256([]byte(k))
		valid = append(valid, apiKey{digest: d, id: hex.EncodeToString(d[:4])})
	}

	return func(next http.Handler) http.Handler {
		if len(valid) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := authExempt[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, msg := presentedKey(r)
			if msg != "" {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, msg)
				return
			}
			key, ok := match(valid, token)
			if !ok {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid api key")
				return
			}

			ctx, _ := logpkg.Scoped(r.Context(), zap.NewNop(), zap.String("api_key", key.id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// presentedKey returns the key from the request, or a client-facing reason it is unusable.
func presentedKey(r *http.Request) (string, string) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return "", "authorization header must use Bearer scheme"
		}
		return token, ""
	}
	if k := r.Header.Get("X-API-Key"); k != "" {
		return k, ""
	}
	return "", "missing api key"
}

// match compares digests in constant time against every configured key.
func match(valid []apiKey, token string) (apiKey, bool) {
	d := sha256.Sum256([]byte(token))
	var found apiKey
	hit := 0
	for _, k := range valid {
		if subtle.ConstantTimeCompare(d[:], k.digest[:]) == 1 {
			found, hit = k, 1
		}
	}
	return found, hit == 1
}
