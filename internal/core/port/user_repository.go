package port

import (
	"context"

	"github.com/getly/auth-service/internal/core/domain"
)

// UserRepository exposes persistence behavior for durable user accounts.
type UserRepository interface {
	Create(ctx context.Context, session domain.SignupSession) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByGoogleSub(ctx context.Context, sub string) (*domain.User, error)
	LinkGoogleSub(ctx context.Context, id, sub string) error
	TouchLastSeen(ctx context.Context, id string) error
}
