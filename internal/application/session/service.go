package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-menu-auth/internal/domain"
	pkgtoken "github.com/go-menu-auth/internal/pkg/token"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// Service issues, resolves and revokes opaque session tokens.
type Service interface {
	// Create stores a new session for userID and returns it with its token.
	Create(ctx context.Context, userID string) (*domain.Session, error)
	// Get resolves token to its session joined with the owning user.
	// It returns (nil, nil) for unknown or expired tokens.
	Get(ctx context.Context, token string) (*domain.Session, error)
	// Delete revokes token. Deleting an unknown token is a no-op.
	Delete(ctx context.Context, token string) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	sessionRepo sessionStore
	userRepo    userStore
	sessionTTL  time.Duration
	newToken    func() (string, error)
	now         func() time.Time
}

type ServiceDeps struct {
	SessionRepo sessionStore
	UserRepo    userStore
	SessionTTL  time.Duration
	// NewToken overrides the token generator. Replacements must stay
	// unpredictable with at least 150 bits of entropy, since tokens are
	// not checked for collisions.
	NewToken func() (string, error)
	Now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		sessionRepo: deps.SessionRepo,
		userRepo:    deps.UserRepo,
		sessionTTL:  deps.SessionTTL,
		newToken:    deps.NewToken,
		now:         deps.Now,
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = defaultSessionTTL
	}
	if s.newToken == nil {
		s.newToken = pkgtoken.NewSessionToken
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Create(ctx context.Context, userID string) (*domain.Session, error) {
	tok, err := s.newToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sess := &domain.Session{
		Token:     tok,
		UserID:    userID,
		ExpiresAt: now.Add(s.sessionTTL).Unix(),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

func (s *service) Get(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := s.sessionRepo.Get(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.Expired(s.now()) {
		return nil, nil
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		slog.Warn("session references missing user", "user_id", sess.UserID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	sess.User = u
	return sess, nil
}

func (s *service) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
