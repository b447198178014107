package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"
	uuid "github.com/google/uuid"

	"github.com/getly/auth-service/internal/core/domain"
	"github.com/getly/auth-service/internal/core/port"
	"github.com/getly/auth-service/internal/repository"
)

const defaultSignupSessionPrefix = "sign_up_session"

// signupSessionRecord is the JSON payload stored per session. The layout is
// owned exclusively by this repository; no other component interprets it.
type signupSessionRecord struct {
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	PasswordHash  *string `json:"password_hash"`
	GoogleSub     *string `json:"google_sub"`
	Picture       *string `json:"picture"`
	PhoneNumber   *string `json:"phone_num"`
	CodeSentAt    *int64  `json:"sms_sent_at"`
	PhoneVerified bool    `json:"sms_verified"`
}

// SignupSessionRepository persists sign-up sessions in Redis with a TTL.
type SignupSessionRepository struct {
	client *red.Client
	prefix string
	newID  func() string
}

// NewSignupSessionRepository constructs the repository with the provided Redis client and key prefix.
func NewSignupSessionRepository(client *red.Client, keyPrefix string) *SignupSessionRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultSignupSessionPrefix
	}

	return &SignupSessionRepository{
		client: client,
		prefix: prefix,
		newID:  uuid.NewString,
	}
}

// BeginWithPassword allocates a fresh session carrying a password credential.
func (r *SignupSessionRepository) BeginWithPassword(ctx context.Context, email, passwordHash, name string, ttl time.Duration) (string, error) {
	switch {
	case strings.TrimSpace(email) == "":
		return "", errors.New("email is required")
	case passwordHash == "":
		return "", errors.New("password hash is required")
	case ttl <= 0:
		return "", errors.New("ttl must be positive")
	}

	record := signupSessionRecord{
		Email:        email,
		Name:         name,
		PasswordHash: &passwordHash,
	}

	return r.create(ctx, record, ttl)
}

// BeginWithFederatedIdentity allocates a fresh session from verified provider claims.
func (r *SignupSessionRepository) BeginWithFederatedIdentity(ctx context.Context, claims domain.IdentityClaims, ttl time.Duration) (string, error) {
	switch {
	case strings.TrimSpace(claims.Subject) == "":
		return "", errors.New("federated subject is required")
	case strings.TrimSpace(claims.Email) == "":
		return "", errors.New("email is required")
	case ttl <= 0:
		return "", errors.New("ttl must be positive")
	}

	sub := claims.Subject
	record := signupSessionRecord{
		Email:     claims.Email,
		Name:      claims.Name,
		GoogleSub: &sub,
	}
	if claims.Picture != "" {
		picture := claims.Picture
		record.Picture = &picture
	}

	return r.create(ctx, record, ttl)
}

func (r *SignupSessionRepository) create(ctx context.Context, record signupSessionRecord, ttl time.Duration) (string, error) {
	id := r.newID()

	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal signup session: %w", err)
	}

	if err := r.client.Set(ctx, r.key(id), payload, ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set signup session: %w", err)
	}

	return id, nil
}

// Load fetches the session, returning repository.ErrNotFound once expired or consumed.
func (r *SignupSessionRepository) Load(ctx context.Context, sessionID string) (*domain.SignupSession, error) {
	record, err := r.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session := &domain.SignupSession{
		ID:            sessionID,
		Email:         record.Email,
		Name:          record.Name,
		PhoneVerified: record.PhoneVerified,
	}

	switch {
	case record.PasswordHash != nil:
		session.Credential = domain.NewPasswordCredential(*record.PasswordHash)
	case record.GoogleSub != nil:
		picture := ""
		if record.Picture != nil {
			picture = *record.Picture
		}
		session.Credential = domain.NewFederatedCredential(*record.GoogleSub, picture)
	default:
		return nil, fmt.Errorf("signup session %s carries no credential", sessionID)
	}

	if record.PhoneNumber != nil {
		session.PhoneNumber = *record.PhoneNumber
	}
	if record.CodeSentAt != nil {
		at := time.Unix(*record.CodeSentAt, 0).UTC()
		session.CodeSentAt = &at
	}

	return session, nil
}

// AttachPhoneNumber writes the phone number into the session record.
// Callers enforce first-number immutability by comparing before writing.
func (r *SignupSessionRepository) AttachPhoneNumber(ctx context.Context, sessionID, phoneNumber string) error {
	if strings.TrimSpace(phoneNumber) == "" {
		return errors.New("phone number is required")
	}

	return r.update(ctx, sessionID, func(record *signupSessionRecord) {
		record.PhoneNumber = &phoneNumber
	})
}

// MarkCodeSent records the timestamp of the latest code dispatch.
func (r *SignupSessionRepository) MarkCodeSent(ctx context.Context, sessionID string, at time.Time) error {
	ts := at.UTC().Unix()
	return r.update(ctx, sessionID, func(record *signupSessionRecord) {
		record.CodeSentAt = &ts
	})
}

// MarkPhoneVerified flips the verified flag. Idempotent; the flag never resets.
func (r *SignupSessionRepository) MarkPhoneVerified(ctx context.Context, sessionID string) error {
	return r.update(ctx, sessionID, func(record *signupSessionRecord) {
		record.PhoneVerified = true
	})
}

// Consume deletes the session so a completed registration cannot be replayed.
func (r *SignupSessionRepository) Consume(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete signup session: %w", err)
	}
	return nil
}

// update is load-modify-store and keeps the key's remaining TTL. Two
// concurrent updates to the same session can clobber each other; accepted
// given a single user owns any one session.
func (r *SignupSessionRepository) update(ctx context.Context, sessionID string, mutate func(*signupSessionRecord)) error {
	record, err := r.fetch(ctx, sessionID)
	if err != nil {
		return err
	}

	mutate(record)

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal signup session: %w", err)
	}

	if err := r.client.Set(ctx, r.key(sessionID), payload, red.KeepTTL).Err(); err != nil {
		return fmt.Errorf("redis set signup session: %w", err)
	}

	return nil
}

func (r *SignupSessionRepository) fetch(ctx context.Context, sessionID string) (*signupSessionRecord, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("session id is required")
	}

	payload, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get signup session: %w", err)
	}

	var record signupSessionRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("parse signup session: %w", err)
	}

	return &record, nil
}

// WithIDGenerator overrides session id allocation, used in tests.
func (r *SignupSessionRepository) WithIDGenerator(gen func() string) {
	if gen != nil {
		r.newID = gen
	}
}

func (r *SignupSessionRepository) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionID)
}

var _ port.SignupSessionStore = (*SignupSessionRepository)(nil)
