package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/getly/auth-service/internal/core/domain"
	"github.com/getly/auth-service/internal/core/port"
	"github.com/getly/auth-service/internal/infra/config"
	"github.com/getly/auth-service/internal/infra/logger"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, log *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: log}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishSignedIn publishes auth.user.signed_in events.
func (p *EventPublisher) PublishSignedIn(ctx context.Context, event domain.SignedInEvent) error {
	payload := struct {
		UserID   string         `json:"user_id"`
		Method   string         `json:"method"`
		SignedAt time.Time      `json:"signed_at"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}{
		UserID:   event.UserID,
		Method:   event.Method,
		SignedAt: event.SignedAt.UTC(),
		Metadata: event.Metadata,
	}

	return p.publish(ctx, event.EventID, "auth.user.signed_in", event.UserID, event.SignedAt, payload)
}

// PublishSignUpCompleted publishes auth.user.sign_up_completed events. The
// email is masked in the payload.
func (p *EventPublisher) PublishSignUpCompleted(ctx context.Context, event domain.SignUpCompletedEvent) error {
	payload := struct {
		UserID      string         `json:"user_id"`
		Email       string         `json:"email"`
		Method      string         `json:"method"`
		CompletedAt time.Time      `json:"completed_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		UserID:      event.UserID,
		Email:       logger.MaskEmail(event.Email),
		Method:      event.Method,
		CompletedAt: event.CompletedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "auth.user.sign_up_completed", event.UserID, event.CompletedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
