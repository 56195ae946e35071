package domain

import "time"

// Session is an opaque bearer token bound to a user.
// ExpiresAt is a Unix timestamp, also used as DynamoDB TTL.
type Session struct {
	Token     string    `json:"-" dynamodbav:"token"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	User      *User     `json:"user,omitempty" dynamodbav:"-"`
}

// Expired reports whether the session is past its expiry at now.
// A session expiring exactly at now is still valid.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt < now.Unix()
}
