package handlers

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// WantsHTML reports whether the Accept header ranks an HTML type strictly above JSON.
// Only explicitly listed types count, so "*/*" and a missing header select JSON.
func WantsHTML(r *http.Request) bool {
	accept := r.Header.Values("Accept")
	if len(accept) == 0 {
		return false
	}
	var htmlQ, jsonQ float64
	for _, line := range accept {
		for _, part := range strings.Split(line, ",") {
			mt, params, err := mime.ParseMediaType(strings.TrimSpace(part))
			if err != nil {
				continue
			}
			q := 1.0
			if s, ok := params["q"]; ok {
				if v, err := strconv.ParseFloat(s, 64); err == nil {
					q = v
				}
			}
			switch mt {
			case "text/html", "application/xhtml+xml":
				htmlQ = max(htmlQ, q)
			case "application/json":
				jsonQ = max(jsonQ, q)
			}
		}
	}
	return htmlQ > 0 && htmlQ > jsonQ
}

// Negotiate dispatches to html when the client prefers HTML and to json otherwise.
func Negotiate(json, html http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept")
		if WantsHTML(r) {
			html.ServeHTTP(w, r)
			return
		}
		json.ServeHTTP(w, r)
	}
}
