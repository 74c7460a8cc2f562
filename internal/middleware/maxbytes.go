package middleware

import (
	"net/http"

	"github.com/crucial707/hci-users/internal/envelope"
)

// DefaultMaxBodyBytes is the default maximum request body size (1 MiB).
const DefaultMaxBodyBytes = 1 << 20

// MaxBytes caps request bodies at maxBytes. A declared Content-Length over the cap is refused
// up front with 413; otherwise the body reader fails once the cap is crossed and the handler
// sees an *http.MaxBytesError.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				envelope.Status(w, http.StatusRequestEntityTooLarge, "Request body too large.")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
