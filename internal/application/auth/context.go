package auth

import (
	"context"

	"github.com/go-menu-auth/internal/domain"
)

type contextKey int

const sessionKey contextKey = iota

// WithSession returns a copy of ctx carrying the resolved session.
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the ambient session, or nil.
func SessionFromContext(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionKey).(*domain.Session)
	return s
}
