package port

import (
	"context"
	"time"
)

// LockoutStore tracks failed sign-in attempts per identifier.
//
// The counter opens its lock window on the first failure only; later failures
// grow the count without extending the expiry. Implementations must treat an
// absent counter as zero. Callers are expected to swallow store failures so a
// cache outage degrades to no lockout enforcement rather than blocking
// legitimate sign-ins.
type LockoutStore interface {
	RecordFailure(ctx context.Context, identifier string, lockWindow time.Duration) error
	IsLocked(ctx context.Context, identifier string, maxAttempts int) (bool, error)
	Clear(ctx context.Context, identifier string) error
}
