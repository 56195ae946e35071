package domain

import (
	"strings"
	"time"
)

type User struct {
	UserID        string    `json:"id" dynamodbav:"user_id"`
	Email         string    `json:"email" dynamodbav:"email"`
	FullName      string    `json:"full_name" dynamodbav:"full_name"`
	Country       string    `json:"country" dynamodbav:"country"`
	EmailVerified bool      `json:"email_verified" dynamodbav:"email_verified"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Profile is the minimal identity handed back to callers after login or
// session resolution.
type Profile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Country  string `json:"country"`
}

func (u *User) Profile() *Profile {
	return &Profile{ID: u.UserID, Email: u.Email, FullName: u.FullName, Country: u.Country}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,notblank"`
	Country  string `json:"country" validate:"required,notblank"`
}

// NormalizeEmail lower-cases and trims an address. Every lookup and every
// stored row uses this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
