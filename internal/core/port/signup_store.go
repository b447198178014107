package port

import (
	"context"
	"time"

	"github.com/getly/auth-service/internal/core/domain"
)

// SignupSessionStore persists in-flight registration sessions with a TTL.
//
// Load returns repository.ErrNotFound once the TTL elapsed or the session was
// consumed; callers treat that as "start over", not as an internal failure.
// Field updates are load-modify-store and therefore not atomic across
// concurrent requests on the same session; acceptable for one user racing a
// handful of devices.
type SignupSessionStore interface {
	BeginWithPassword(ctx context.Context, email, passwordHash, name string, ttl time.Duration) (string, error)
	BeginWithFederatedIdentity(ctx context.Context, claims domain.IdentityClaims, ttl time.Duration) (string, error)
	Load(ctx context.Context, sessionID string) (*domain.SignupSession, error)
	AttachPhoneNumber(ctx context.Context, sessionID, phoneNumber string) error
	MarkCodeSent(ctx context.Context, sessionID string, at time.Time) error
	MarkPhoneVerified(ctx context.Context, sessionID string) error
	Consume(ctx context.Context, sessionID string) error
}
