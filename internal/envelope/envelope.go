// Package envelope writes the JSON body shared by every API response.
package envelope

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body of every JSON response. StatusCode mirrors the HTTP status.
type Envelope struct {
	StatusCode int    `json:"status_code"`
	Data       any    `json:"data,omitempty"`
	Info       string `json:"info,omitempty"`
	ID         any    `json:"id,omitempty"`
	Token      string `json:"token,omitempty"`
}

// Write sends env with env.StatusCode as the HTTP status.
func Write(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)
	json.NewEncoder(w).Encode(env)
}

// Status sends an envelope carrying only status and info.
func Status(w http.ResponseWriter, status int, info string) {
	Write(w, Envelope{StatusCode: status, Info: info})
}
