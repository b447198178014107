package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/getly/auth-service/internal/core/port"
)

const defaultSignInAttemptsPrefix = "sign_in_attempts"

// SignInAttemptsRepository counts failed sign-ins per identifier in Redis.
type SignInAttemptsRepository struct {
	client *red.Client
	prefix string
}

// NewSignInAttemptsRepository constructs the repository with the provided Redis client and key prefix.
func NewSignInAttemptsRepository(client *red.Client, keyPrefix string) *SignInAttemptsRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultSignInAttemptsPrefix
	}

	return &SignInAttemptsRepository{client: client, prefix: prefix}
}

// RecordFailure increments the counter. The expiry is set only on the
// absent-to-one transition: the first failure opens the lock window, later
// failures grow the count without extending it.
func (r *SignInAttemptsRepository) RecordFailure(ctx context.Context, identifier string, lockWindow time.Duration) error {
	if strings.TrimSpace(identifier) == "" {
		return errors.New("identifier is required")
	}
	if lockWindow <= 0 {
		return errors.New("lock window must be positive")
	}

	key := r.key(identifier)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis incr sign-in attempts: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, lockWindow).Err(); err != nil {
			return fmt.Errorf("redis expire sign-in attempts: %w", err)
		}
	}

	return nil
}

// IsLocked reports whether the identifier reached the attempt ceiling.
// An absent counter counts as zero.
func (r *SignInAttemptsRepository) IsLocked(ctx context.Context, identifier string, maxAttempts int) (bool, error) {
	if strings.TrimSpace(identifier) == "" {
		return false, errors.New("identifier is required")
	}

	raw, err := r.client.Get(ctx, r.key(identifier)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get sign-in attempts: %w", err)
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		return false, fmt.Errorf("parse sign-in attempts: %w", err)
	}

	return count >= maxAttempts, nil
}

// Clear drops the counter outright; called after a successful sign-in.
func (r *SignInAttemptsRepository) Clear(ctx context.Context, identifier string) error {
	if strings.TrimSpace(identifier) == "" {
		return errors.New("identifier is required")
	}

	if err := r.client.Del(ctx, r.key(identifier)).Err(); err != nil {
		return fmt.Errorf("redis delete sign-in attempts: %w", err)
	}

	return nil
}

func (r *SignInAttemptsRepository) key(identifier string) string {
	return fmt.Sprintf("%s:%s", r.prefix, identifier)
}

var _ port.LockoutStore = (*SignInAttemptsRepository)(nil)
