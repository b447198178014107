package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/getly/auth-service/internal/core/port"
	"github.com/getly/auth-service/internal/repository"
)

const defaultSMSCodePrefix = "sms_code"

// smsCodeRecord is the JSON payload stored per issued code.
type smsCodeRecord struct {
	Code     string `json:"code"`
	Attempts int    `json:"attempts_count"`
}

// SMSCodeRepository persists one-time SMS codes in Redis with an independent TTL.
type SMSCodeRepository struct {
	client *red.Client
	prefix string
}

// NewSMSCodeRepository constructs the repository with the provided Redis client and key prefix.
func NewSMSCodeRepository(client *red.Client, keyPrefix string) *SMSCodeRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultSMSCodePrefix
	}

	return &SMSCodeRepository{client: client, prefix: prefix}
}

// Issue writes a fresh code record with a zeroed attempt counter, overwriting
// any previous record. A resend therefore invalidates the prior code and
// resets the attempt budget.
func (r *SMSCodeRepository) Issue(ctx context.Context, sessionID, code string, ttl time.Duration) error {
	switch {
	case strings.TrimSpace(sessionID) == "":
		return errors.New("session id is required")
	case strings.TrimSpace(code) == "":
		return errors.New("code is required")
	case ttl <= 0:
		return errors.New("ttl must be positive")
	}

	payload, err := json.Marshal(smsCodeRecord{Code: code})
	if err != nil {
		return fmt.Errorf("marshal sms code: %w", err)
	}

	if err := r.client.Set(ctx, r.key(sessionID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set sms code: %w", err)
	}

	return nil
}

// Verify compares the submitted code against the stored record.
//
// An exhausted attempt budget short-circuits without touching the record, so
// the outcome stays stable until a fresh code is issued. A mismatch persists
// the incremented counter; a match mutates nothing and leaves the record to
// expire naturally or be overwritten by the next Issue.
func (r *SMSCodeRepository) Verify(ctx context.Context, sessionID, submitted string, maxAttempts int) (port.CodeOutcome, error) {
	record, err := r.fetch(ctx, sessionID)
	if err != nil {
		return port.CodeWrong, err
	}

	if record.Attempts > maxAttempts {
		return port.CodeTooManyAttempts, nil
	}

	if record.Code != submitted {
		record.Attempts++
		payload, err := json.Marshal(record)
		if err != nil {
			return port.CodeWrong, fmt.Errorf("marshal sms code: %w", err)
		}
		if err := r.client.Set(ctx, r.key(sessionID), payload, red.KeepTTL).Err(); err != nil {
			return port.CodeWrong, fmt.Errorf("redis set sms code: %w", err)
		}
		return port.CodeWrong, nil
	}

	return port.CodeCorrect, nil
}

// Exists reports whether a live code record is present for the session.
func (r *SMSCodeRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	_, err := r.fetch(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *SMSCodeRepository) fetch(ctx context.Context, sessionID string) (*smsCodeRecord, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("session id is required")
	}

	payload, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get sms code: %w", err)
	}

	var record smsCodeRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("parse sms code: %w", err)
	}

	return &record, nil
}

func (r *SMSCodeRepository) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionID)
}

var _ port.SMSCodeStore = (*SMSCodeRepository)(nil)
