package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/crucial707/hci-users/internal/envelope"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// HandlerFunc is a handler that hands unexpected failures back to its caller.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// redactedHeaders are logged as "[redacted]".
var redactedHeaders = map[string]bool{
	"Authorization": true,
	"Cookie":        true,
}

// ErrorTranslator turns errors and panics escaping a HandlerFunc into a logged failure and a
// 500 envelope.
type ErrorTranslator struct {
	Logger *slog.Logger
	// Expose puts err.Error() in the response info; otherwise ErrMessageInternal is sent.
	Expose bool
}

// Wrap adapts fn to http.HandlerFunc.
func (t *ErrorTranslator) Wrap(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tw := &trackingWriter{ResponseWriter: w}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			t.fail(tw, r, err, "stack", string(debug.Stack()))
		}()

		if err := fn(tw, r); err != nil {
			t.fail(tw, r, err)
		}
	}
}

func (t *ErrorTranslator) fail(w *trackingWriter, r *http.Request, err error, extra ...any) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	args := []any{
		"request_id", chimw.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"headers", headerMap(r.Header),
		"error", err,
	}
	logger.Error("unhandled request error", append(args, extra...)...)

	if w.written {
		return
	}
	envelope.Write(w, envelope.Envelope{
		StatusCode: http.StatusInternalServerError,
		Info:       internalMessage(err, t.Expose),
	})
}

func headerMap(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if redactedHeaders[http.CanonicalHeaderKey(k)] {
			out[k] = "[redacted]"
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}

// trackingWriter records whether a response has been started.
type trackingWriter struct {
	http.ResponseWriter
	written bool
}

func (w *trackingWriter) WriteHeader(code int) {
	w.written = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

func (w *trackingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
