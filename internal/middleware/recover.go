package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/crucial707/hci-users/internal/envelope"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recoverer is the last line of defence for panics outside the error translator
// (middleware, router internals). It logs the stack with the request ID and answers 500
// with the standard envelope.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("panic recovered",
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()))
			envelope.Status(w, http.StatusInternalServerError, "internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
