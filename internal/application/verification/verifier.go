package verification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-menu-auth/internal/domain"
)

func (s *service) Verify(ctx context.Context, email, code string) (bool, error) {
	email = domain.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	now := s.now()

	n, err := s.repo.DeleteExpired(ctx, now)
	if err != nil {
		return false, fmt.Errorf("sweep expired codes: %w", err)
	}
	if n > 0 {
		slog.Debug("swept expired verification codes", "count", n)
	}

	if email == "" || code == "" {
		return false, nil
	}
	ok, err := s.repo.Consume(ctx, email, code, now)
	if err != nil {
		return false, fmt.Errorf("consume verification code: %w", err)
	}
	return ok, nil
}
