package models

import "time"

// Account is the sign-in identity an email address maps to. Its ID is the
// accountId stored on User.
type Account struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// OneTimeCode is a pending emailed sign-in code. Only the argon2 hash is kept.
type OneTimeCode struct {
	AccountID string
	Hash      []byte
	Salt      []byte
	ExpiresAt time.Time
	Attempts  int
}

// Session binds a session secret to an account until ExpiresAt.
type Session struct {
	ID        string
	AccountID string
	ExpiresAt time.Time
	CreatedAt time.Time
}
