package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/go-menu-auth/internal/domain"
)

func (s *service) IssueCode(ctx context.Context, email string) (string, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return "", fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}
	v := &domain.VerificationCode{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().Add(s.codeTTL).Unix(),
	}
	if err := s.repo.Replace(ctx, v); err != nil {
		return "", fmt.Errorf("store verification code: %w", err)
	}

	s.dispatch(ctx, email, code)
	return code, nil
}

// dispatch hands the code to the notifier. It returns once the notifier
// finishes or notifyTimeout elapses, whichever comes first; failures are
// only logged.
func (s *service) dispatch(ctx context.Context, email, code string) {
	if s.notifier == nil {
		slog.Warn("no notifier configured, verification code not delivered", "email", email)
		return
	}
	body, err := renderCodeMessage(code, s.codeTTL)
	if err != nil {
		slog.Warn("failed to render verification email", "email", email, "err", err)
		return
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("notifier panic: %v", r)
			}
		}()
		done <- s.notifier.Send(nctx, email, codeMessageSubject, body)
	}()

	select {
	case err := <-done:
		if err != nil {
			slog.Warn("failed to deliver verification code", "email", email, "err", err)
			return
		}
		slog.Info("verification code sent", "email", email)
	case <-nctx.Done():
		slog.Warn("verification code delivery timed out", "email", email, "timeout", s.notifyTimeout)
	}
}

// generateCode returns a 6-digit numeric code (100000–999999).
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
