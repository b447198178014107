package redis

import (
	"context"
	"testing"
	"time"
)

func TestSignInAttempts_LockThreshold(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSignInAttemptsRepository(client, "sign_in_attempts")

	ctx := context.Background()
	const maxAttempts = 3

	for i := 0; i < maxAttempts-1; i++ {
		if err := repo.RecordFailure(ctx, "b@x.com", 5*time.Minute); err != nil {
			t.Fatalf("RecordFailure returned error: %v", err)
		}

		locked, err := repo.IsLocked(ctx, "b@x.com", maxAttempts)
		if err != nil {
			t.Fatalf("IsLocked returned error: %v", err)
		}
		if locked {
			t.Fatalf("expected unlocked after %d failures", i+1)
		}
	}

	if err := repo.RecordFailure(ctx, "b@x.com", 5*time.Minute); err != nil {
		t.Fatalf("RecordFailure returned error: %v", err)
	}

	locked, err := repo.IsLocked(ctx, "b@x.com", maxAttempts)
	if err != nil {
		t.Fatalf("IsLocked returned error: %v", err)
	}
	if !locked {
		t.Fatalf("expected locked at %d failures", maxAttempts)
	}
}

func TestSignInAttempts_AbsentCounterIsUnlocked(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSignInAttemptsRepository(client, "sign_in_attempts")

	locked, err := repo.IsLocked(context.Background(), "nobody@x.com", 1)
	if err != nil {
		t.Fatalf("IsLocked returned error: %v", err)
	}
	if locked {
		t.Fatalf("expected absent counter to read as unlocked")
	}
}

func TestSignInAttempts_WindowOpensOnFirstFailureOnly(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewSignInAttemptsRepository(client, "sign_in_attempts")

	ctx := context.Background()
	window := 5 * time.Minute

	if err := repo.RecordFailure(ctx, "b@x.com", window); err != nil {
		t.Fatalf("RecordFailure returned error: %v", err)
	}

	server.FastForward(2 * time.Minute)

	if err := repo.RecordFailure(ctx, "b@x.com", window); err != nil {
		t.Fatalf("RecordFailure returned error: %v", err)
	}

	// A second failure must not push the expiry back out to the full window.
	remaining := server.TTL("sign_in_attempts:b@x.com")
	if remaining > 3*time.Minute {
		t.Fatalf("expected ttl at most 3m after fast-forward, got %v", remaining)
	}
}

func TestSignInAttempts_LockExpiresWithWindow(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewSignInAttemptsRepository(client, "sign_in_attempts")

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := repo.RecordFailure(ctx, "b@x.com", time.Minute); err != nil {
			t.Fatalf("RecordFailure returned error: %v", err)
		}
	}

	locked, err := repo.IsLocked(ctx, "b@x.com", 2)
	if err != nil {
		t.Fatalf("IsLocked returned error: %v", err)
	}
	if !locked {
		t.Fatalf("expected locked before window elapsed")
	}

	server.FastForward(2 * time.Minute)

	locked, err = repo.IsLocked(ctx, "b@x.com", 2)
	if err != nil {
		t.Fatalf("IsLocked returned error: %v", err)
	}
	if locked {
		t.Fatalf("expected unlocked after window elapsed")
	}
}

func TestSignInAttempts_ClearUnlocks(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSignInAttemptsRepository(client, "sign_in_attempts")

	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := repo.RecordFailure(ctx, "b@x.com", time.Minute); err != nil {
			t.Fatalf("RecordFailure returned error: %v", err)
		}
	}

	if err := repo.Clear(ctx, "b@x.com"); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}

	locked, err := repo.IsLocked(ctx, "b@x.com", 1)
	if err != nil {
		t.Fatalf("IsLocked returned error: %v", err)
	}
	if locked {
		t.Fatalf("expected unlocked after Clear")
	}
}

func TestSignInAttempts_InvalidInput(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSignInAttemptsRepository(client, "sign_in_attempts")

	if err := repo.RecordFailure(context.Background(), "", time.Minute); err == nil {
		t.Fatalf("expected error for empty identifier")
	}
	if err := repo.RecordFailure(context.Background(), "b@x.com", 0); err == nil {
		t.Fatalf("expected error for non-positive lock window")
	}
}
