package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-menu-auth/internal/application/auth"
	"github.com/go-menu-auth/internal/domain"
)

// SessionCookie is the cookie consulted when no Authorization header is sent.
const SessionCookie = "session_token"

// SessionResolver resolves a bearer token to its live session.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*domain.Session, error)
}

// Session resolves the request's bearer token and stores the session in the
// request context. It never rejects: requests without a live session pass
// through anonymously.
func Session(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := TokenFromRequest(r)
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := resolver.ResolveSession(r.Context(), tok)
			if err != nil {
				slog.Warn("session lookup failed", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if sess != nil {
				r = r.WithContext(auth.WithSession(r.Context(), sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects requests that carry no resolved session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.SessionFromContext(r.Context()) == nil {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenFromRequest returns the bearer token from the Authorization header,
// falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
