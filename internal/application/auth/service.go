package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-menu-auth/internal/domain"
	"github.com/go-menu-auth/internal/pkg/id"
	"github.com/go-menu-auth/internal/pkg/validate"
)

// ErrNotRegistered is returned by SendVerificationCode when no user owns the
// email. Callers use it to redirect into registration.
var ErrNotRegistered = fmt.Errorf("user not registered, please register first: %w", domain.ErrNotFound)

type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt int64           `json:"expires_at"`
	User      *domain.Profile `json:"user"`
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) error
	SendVerificationCode(ctx context.Context, email string) error
	VerifyAndLogin(ctx context.Context, email, code string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	// ResolveSession returns the session for token joined with its user, or
	// nil when the token is unknown or expired.
	ResolveSession(ctx context.Context, token string) (*domain.Session, error)
	// Me prefers an explicit token over the ambient session carried by ctx.
	Me(ctx context.Context, token string) (*domain.Profile, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, userID string) error
}

type codeService interface {
	IssueCode(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) (bool, error)
}

type sessionService interface {
	Create(ctx context.Context, userID string) (*domain.Session, error)
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

type service struct {
	userRepo userStore
	codes    codeService
	sessions sessionService
	now      func() time.Time
}

type ServiceDeps struct {
	UserRepo userStore
	Codes    codeService
	Sessions sessionService
	Now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		userRepo: deps.UserRepo,
		codes:    deps.Codes,
		sessions: deps.Sessions,
		now:      deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) error {
	req.Email = domain.NormalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Country = strings.TrimSpace(req.Country)
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBadRequest, err)
	}

	_, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err == nil {
		return fmt.Errorf("user already exists with this email: %w", domain.ErrConflict)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup user: %w", err)
	}

	now := s.now().UTC()
	u := &domain.User{
		UserID:    id.New(),
		Email:     req.Email,
		FullName:  req.FullName,
		Country:   req.Country,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		// A concurrent registration of the same email loses here.
		if errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("user already exists with this email: %w", domain.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	slog.Info("user registered", "user_id", u.UserID)

	if _, err := s.codes.IssueCode(ctx, u.Email); err != nil {
		return err
	}
	return nil
}

func (s *service) SendVerificationCode(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}
	if _, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotRegistered
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	_, err := s.codes.IssueCode(ctx, email)
	return err
}

func (s *service) VerifyAndLogin(ctx context.Context, email, code string) (*LoginResult, error) {
	email = domain.NormalizeEmail(email)
	ok, err := s.codes.Verify(ctx, email, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("invalid or expired verification code: %w", domain.ErrUnauthorized)
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !u.EmailVerified {
		if err := s.userRepo.MarkEmailVerified(ctx, u.UserID); err != nil {
			return nil, fmt.Errorf("mark email verified: %w", err)
		}
		u.EmailVerified = true
	}

	sess, err := s.sessions.Create(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	slog.Info("user logged in", "user_id", u.UserID)
	return &LoginResult{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: u.Profile()}, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, strings.TrimSpace(token))
}

func (s *service) ResolveSession(ctx context.Context, token string) (*domain.Session, error) {
	return s.sessions.Get(ctx, strings.TrimSpace(token))
}

func (s *service) Me(ctx context.Context, token string) (*domain.Profile, error) {
	if token = strings.TrimSpace(token); token != "" {
		sess, err := s.sessions.Get(ctx, token)
		if err != nil || sess == nil {
			return nil, err
		}
		return sess.User.Profile(), nil
	}
	if sess := SessionFromContext(ctx); sess != nil && sess.User != nil {
		if sess.Expired(s.now()) {
			return nil, nil
		}
		return sess.User.Profile(), nil
	}
	return nil, nil
}
