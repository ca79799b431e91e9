package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Key type for context
type contextKey string

const ownerContextKey = contextKey("owner")

// SessionMiddleware resolves the calling user from the X-User-ID header and
// attaches it to the request context. Each request carries its own owner;
// nothing is kept in process-wide state, so concurrent sessions stay
// independent.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.Header.Get("X-User-ID")
		if ownerID == "" {
			http.Error(w, "X-User-ID header missing", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ownerContextKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFrom(r *http.Request) string {
	ownerID, _ := r.Context().Value(ownerContextKey).(string)
	return ownerID
}

// RequestLogger logs every request with its duration.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}
