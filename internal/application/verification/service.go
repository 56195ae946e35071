package verification

import (
	"context"
	"time"

	"github.com/go-menu-auth/internal/domain"
)

const (
	defaultCodeTTL       = 10 * time.Minute
	defaultNotifyTimeout = 10 * time.Second
)

// Notifier delivers a message to an address. Delivery is best-effort: the
// issuer logs and discards any error it returns.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Service issues and redeems one-time login codes.
type Service interface {
	// IssueCode replaces any code for email with a fresh one, dispatches it
	// through the notifier and returns it.
	IssueCode(ctx context.Context, email string) (string, error)
	// Verify reports whether code is the live code for email, consuming it
	// (and every other code for email) on success.
	Verify(ctx context.Context, email, code string) (bool, error)
}

type codeStore interface {
	// Replace atomically drops every code for v.Email and stores v.
	Replace(ctx context.Context, v *domain.VerificationCode) error
	// Consume atomically deletes every code for email if one of them matches
	// code and is live at now. It reports whether a match was deleted.
	Consume(ctx context.Context, email, code string, now time.Time) (bool, error)
	// DeleteExpired removes codes of any email that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	repo          codeStore
	notifier      Notifier
	codeTTL       time.Duration
	notifyTimeout time.Duration
	now           func() time.Time
}

type ServiceDeps struct {
	CodeRepo      codeStore
	Notifier      Notifier
	CodeTTL       time.Duration
	NotifyTimeout time.Duration
	Now           func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:          deps.CodeRepo,
		notifier:      deps.Notifier,
		codeTTL:       deps.CodeTTL,
		notifyTimeout: deps.NotifyTimeout,
		now:           deps.Now,
	}
	if s.codeTTL <= 0 {
		s.codeTTL = defaultCodeTTL
	}
	if s.notifyTimeout <= 0 {
		s.notifyTimeout = defaultNotifyTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}
