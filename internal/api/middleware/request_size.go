package middleware

import (
	"net/http"
)

// DefaultMaxBodySize is 1MB; request bodies here are small JSON documents.
const DefaultMaxBodySize int64 = 1 << 20

// RequestSize limits the size of incoming request bodies. Reading past
// maxBytes fails, which the JSON decoder reports as a bad request.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
