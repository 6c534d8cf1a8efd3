package middleware

import (
	"net/http"

	"github.com/cloo-solutions/docqa/internal/api"
)

const (
	// DefaultMaxBodyBytes bounds uploaded documents.
	DefaultMaxBodyBytes int64 = 10 << 20
	// MaxAskBodyBytes bounds a question request.
	MaxAskBodyBytes int64 = 64 << 10
)

// MaxBodyBytes limits request body size. Requests that announce a larger body
// are rejected up front; others fail when the handler reads past the limit.
// A non-positive limit disables the check.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > limit {
				api.HandleError(w, r, api.ErrBodyTooLarge)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
