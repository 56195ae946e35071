package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-menu-auth/internal/domain"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	var created, updated int64
	err := scanner.Scan(&u.UserID, &u.Email, &u.FullName, &u.Country, &u.EmailVerified, &created, &updated)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	u.UpdatedAt = time.Unix(updated, 0).UTC()
	return &u, nil
}

const userCols = `user_id, email, full_name, country, email_verified, created_at, updated_at`

// Create inserts u. A duplicate email or id yields ErrConflict.
func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.UserID, u.Email, u.FullName, u.Country, u.EmailVerified,
		u.CreatedAt.Unix(), u.UpdatedAt.Unix(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.getBy(ctx, "user_id", userID)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getBy(ctx, "email", email)
}

func (s *UserStore) getBy(ctx context.Context, col, value string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE `+col+` = ?`, value)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) MarkEmailVerified(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET email_verified = 1, updated_at = ? WHERE user_id = ?`,
		time.Now().Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return nil
}
