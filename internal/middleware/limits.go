package middleware

import (
	"context"
	"net/http"
	"time"
)

// Common size limits
const (
	KB = 1024
	MB = 1024 * KB

	// DefaultMaxBodySize caps desired-cart payloads; a full cart declaration
	// is small.
	DefaultMaxBodySize = 1 * MB
)

// Common timeout values
const (
	// DefaultTimeout is the default request timeout. Reconciliation blocks on
	// row locks, so this bounds lock-wait time as seen by the client.
	DefaultTimeout = 15 * time.Second
)

// MaxBodySize limits the size of request bodies.
// If the request body exceeds maxBytes, handlers reading the body get an error
// and respond 413.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.ContentLength > maxBytes {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout bounds request processing via the request context. Handlers observe
// cancellation through ctx; the database driver aborts in-flight transactions
// on context cancellation, leaving stock and cache untouched.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
