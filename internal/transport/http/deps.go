package http

import (
	"context"
	"time"

	"github.com/go-menu-auth/internal/domain"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, userID string) error
}

// SessionRepository is the minimal interface the router requires from a session store.
type SessionRepository interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// VerificationRepository is the minimal interface the router requires from a code store.
type VerificationRepository interface {
	Replace(ctx context.Context, v *domain.VerificationCode) error
	Consume(ctx context.Context, email, code string, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Notifier delivers verification messages.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         UserRepository
	SessionRepo      SessionRepository
	VerificationRepo VerificationRepository
	Notifier         Notifier
}
