package port

import (
	"context"
	"time"
)

// CodeOutcome is the result of checking a submitted one-time code.
type CodeOutcome int

const (
	// CodeCorrect means the submitted code matched.
	CodeCorrect CodeOutcome = iota
	// CodeWrong means the code did not match; the attempt was counted.
	CodeWrong
	// CodeTooManyAttempts means the attempt budget is exhausted until a fresh code is issued.
	CodeTooManyAttempts
)

// SMSCodeStore holds the one-time code issued for a sign-up session.
//
// Issue unconditionally overwrites any prior record, resetting the attempt
// counter. Verify against an absent or expired record returns
// repository.ErrNotFound so callers can tell "request a new code" apart from
// "wrong code".
type SMSCodeStore interface {
	Issue(ctx context.Context, sessionID, code string, ttl time.Duration) error
	Verify(ctx context.Context, sessionID, submitted string, maxAttempts int) (CodeOutcome, error)
	Exists(ctx context.Context, sessionID string) (bool, error)
}
