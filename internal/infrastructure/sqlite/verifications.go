package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-menu-auth/internal/domain"
)

type VerificationStore struct {
	db *sql.DB
}

func NewVerificationStore(db *sql.DB) *VerificationStore {
	return &VerificationStore{db: db}
}

// Replace drops every code for v.Email and inserts v in one transaction.
func (s *VerificationStore) Replace(ctx context.Context, v *domain.VerificationCode) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM verification_codes WHERE email = ?`, v.Email); err != nil {
		return fmt.Errorf("invalidate previous codes: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO verification_codes (email, code, expires_at) VALUES (?, ?, ?)`,
		v.Email, v.Code, v.ExpiresAt,
	); err != nil {
		return fmt.Errorf("insert verification code: %w", err)
	}
	return tx.Commit()
}

// Consume removes every code for email when one of them matches code and is
// still live at now. The check and the delete are one statement.
func (s *VerificationStore) Consume(ctx context.Context, email, code string, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM verification_codes
		 WHERE email = ?
		   AND EXISTS (SELECT 1 FROM verification_codes WHERE email = ? AND code = ? AND expires_at > ?)`,
		email, email, code, now.Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("consume code: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *VerificationStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM verification_codes WHERE expires_at < ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired codes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// List returns the codes stored for email, oldest first.
func (s *VerificationStore) List(ctx context.Context, email string) ([]domain.VerificationCode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email, code, expires_at FROM verification_codes WHERE email = ? ORDER BY id`, email)
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	defer rows.Close()

	var codes []domain.VerificationCode
	for rows.Next() {
		var v domain.VerificationCode
		if err := rows.Scan(&v.Email, &v.Code, &v.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan code: %w", err)
		}
		codes = append(codes, v)
	}
	return codes, rows.Err()
}
