package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/getly/auth-service/internal/core/domain"
	"github.com/getly/auth-service/internal/core/port"
	"github.com/getly/auth-service/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: log}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishSignedIn logs auth.user.signed_in events.
func (p *StubPublisher) PublishSignedIn(_ context.Context, event domain.SignedInEvent) error {
	payload := map[string]any{
		"user_id":   event.UserID,
		"method":    event.Method,
		"signed_at": event.SignedAt,
		"metadata":  event.Metadata,
	}
	p.logEvent("auth.user.signed_in", event.UserID, event.SignedAt, payload)
	return nil
}

// PublishSignUpCompleted logs auth.user.sign_up_completed events.
func (p *StubPublisher) PublishSignUpCompleted(_ context.Context, event domain.SignUpCompletedEvent) error {
	payload := map[string]any{
		"user_id":      event.UserID,
		"email":        logger.MaskEmail(event.Email),
		"method":       event.Method,
		"completed_at": event.CompletedAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("auth.user.sign_up_completed", event.UserID, event.CompletedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
