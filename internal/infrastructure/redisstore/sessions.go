package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-menu-auth/internal/domain"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "menu:session:"

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// SessionStore keeps sessions as JSON strings keyed by token. Each key
// expires with its session, so Redis evicts stale sessions by itself.
type SessionStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb, now: time.Now}
}

type sessionRecord struct {
	UserID    string    `json:"user_id"`
	ExpiresAt int64     `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func (s *SessionStore) Put(ctx context.Context, sess *domain.Session) error {
	b, err := json.Marshal(sessionRecord{
		UserID:    sess.UserID,
		ExpiresAt: sess.ExpiresAt,
		CreatedAt: sess.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	// Keep the key one second past expiry so reads at the boundary still
	// see the session.
	ttl := time.Unix(sess.ExpiresAt, 0).Sub(s.now()) + time.Second
	if ttl < time.Second {
		ttl = time.Second
	}
	return s.rdb.Set(ctx, sessionKey(sess.Token), b, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	b, err := s.rdb.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var rec sessionRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &domain.Session{
		Token:     token,
		UserID:    rec.UserID,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKey(token)).Err()
}
