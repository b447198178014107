package domain

import "time"

// User mirrors the persisted representation in the users table.
type User struct {
	ID            string
	Email         string
	EmailVerified bool
	Name          string
	PasswordHash  *string
	GoogleSub     *string
	PhoneNumber   string
	CreatedAt     time.Time
	LastSeenAt    *time.Time
	Picture       *string
}

// HasPassword reports whether the account carries a local password credential.
func (u User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Sanitized returns a copy safe to hand to transport layers.
func (u User) Sanitized() User {
	copy := u
	copy.PasswordHash = nil
	return copy
}
