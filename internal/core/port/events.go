package port

import (
	"context"

	"github.com/getly/auth-service/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishSignedIn(ctx context.Context, event domain.SignedInEvent) error
	PublishSignUpCompleted(ctx context.Context, event domain.SignUpCompletedEvent) error
}
