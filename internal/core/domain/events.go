package domain

import "time"

// SignedInEvent represents the payload for auth.user.signed_in messages.
type SignedInEvent struct {
	EventID  string
	UserID   string
	Method   string
	SignedAt time.Time
	Metadata map[string]any
}

// SignUpCompletedEvent represents the payload for auth.user.sign_up_completed messages.
type SignUpCompletedEvent struct {
	EventID     string
	UserID      string
	Email       string
	Method      string
	CompletedAt time.Time
	Metadata    map[string]any
}
