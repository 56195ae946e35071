package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-menu-auth/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success   bool     `json:"success,omitempty"`
	Message   string   `json:"message,omitempty"`
	Error     string   `json:"error,omitempty"`
	ErrorCode string   `json:"error_code,omitempty"`
	Fields    []string `json:"fields,omitempty"`
}

// LoginEnvelope wraps a successful verify-and-login.
type LoginEnvelope struct {
	Success   bool            `json:"success"`
	Token     string          `json:"token"`
	ExpiresAt int64           `json:"expires_at"`
	User      *domain.Profile `json:"user"`
}

// MeEnvelope wraps the caller's identity; User is null when unresolved.
type MeEnvelope struct {
	User *domain.Profile `json:"user"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
