package domain

import "time"

// VerificationCode is the one-time login code for an email address.
// PK: email. At most one live code exists per email.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type VerificationCode struct {
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// Live reports whether the code can still be redeemed at now.
func (v *VerificationCode) Live(now time.Time) bool {
	return v.ExpiresAt > now.Unix()
}
