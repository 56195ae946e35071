package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-menu-auth/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*miniredis.Miniredis, *SessionStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	s := NewSessionStore(rdb)
	s.now = func() time.Time { return now }
	return mr, s
}

func TestSessionStore_PutGet(t *testing.T) {
	mr, s := setup(t)
	ctx := context.Background()
	sess := &domain.Session{Token: "tok", UserID: "u1", ExpiresAt: now.Add(time.Hour).Unix(), CreatedAt: now}

	require.NoError(t, s.Put(ctx, sess))

	got, err := s.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, sess, got)
	assert.Equal(t, time.Hour+time.Second, mr.TTL(sessionKeyPrefix+"tok"))
}

func TestSessionStore_Missing(t *testing.T) {
	_, s := setup(t)

	_, err := s.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore_KeyExpiresWithSession(t *testing.T) {
	mr, s := setup(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, &domain.Session{
		Token: "tok", UserID: "u1", ExpiresAt: now.Add(time.Minute).Unix(), CreatedAt: now,
	}))

	mr.FastForward(2 * time.Minute)

	_, err := s.Get(ctx, "tok")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore_PastExpiryStillStoredBriefly(t *testing.T) {
	mr, s := setup(t)
	require.NoError(t, s.Put(context.Background(), &domain.Session{
		Token: "old", UserID: "u1", ExpiresAt: now.Add(-time.Hour).Unix(), CreatedAt: now,
	}))

	assert.Equal(t, time.Second, mr.TTL(sessionKeyPrefix+"old"))
}

func TestSessionStore_DeleteIdempotent(t *testing.T) {
	mr, s := setup(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, &domain.Session{
		Token: "tok", UserID: "u1", ExpiresAt: now.Add(time.Hour).Unix(), CreatedAt: now,
	}))

	require.NoError(t, s.Delete(ctx, "tok"))
	require.NoError(t, s.Delete(ctx, "tok"))

	assert.False(t, mr.Exists(sessionKeyPrefix+"tok"))
}

func TestNewClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	rdb.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = NewClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
