package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/getly/auth-service/internal/core/domain"
	"github.com/getly/auth-service/internal/repository"
)

func TestSignupSession_PasswordLifecycle(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSignupSessionRepository(client, "sign_up_session")

	ctx := context.Background()

	id, err := repo.BeginWithPassword(ctx, "a@x.com", "argon2-hash", "Ann", 15*time.Minute)
	if err != nil {
		t.Fatalf("BeginWithPassword returned error: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a session id")
	}

	session, err := repo.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if session.Email != "a@x.com" || session.Name != "Ann" {
		t.Fatalf("unexpected session identity: %+v", session)
	}
	if session.Credential.Kind() != domain.CredentialKindPassword {
		t.Fatalf("expected password credential, got %s", session.Credential.Kind())
	}
	hash, err := session.Credential.PasswordHash()
	if err != nil || hash != "argon2-hash" {
		t.Fatalf("unexpected password hash %q (err %v)", hash, err)
	}
	if session.HasPhoneNumber() || session.PhoneVerified || session.CodeSentAt != nil {
		t.Fatalf("expected pristine phone state: %+v", session)
	}

	if err := repo.AttachPhoneNumber(ctx, id, "+1555"); err != nil {
		t.Fatalf("AttachPhoneNumber returned error: %v", err)
	}

	sentAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.MarkCodeSent(ctx, id, sentAt); err != nil {
		t.Fatalf("MarkCodeSent returned error: %v", err)
	}

	if err := repo.MarkPhoneVerified(ctx, id); err != nil {
		t.Fatalf("MarkPhoneVerified returned error: %v", err)
	}

	session, err = repo.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if session.PhoneNumber != "+1555" {
		t.Fatalf("expected phone +1555, got %q", session.PhoneNumber)
	}
	if session.CodeSentAt == nil || !session.CodeSentAt.Equal(sentAt) {
		t.Fatalf("expected code sent at %v, got %v", sentAt, session.CodeSentAt)
	}
	if !session.PhoneVerified {
		t.Fatalf("expected phone verified")
	}

	if err := repo.Consume(ctx, id); err != nil {
		t.Fatalf("Consume returned error: %v", err)
	}

	if _, err := repo.Load(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after Consume, got %v", err)
	}
}

func TestSignupSession_FederatedCredential(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSignupSessionRepository(client, "sign_up_session")

	ctx := context.Background()

	claims := domain.IdentityClaims{
		Subject:       "google-sub-42",
		Email:         "g@x.com",
		EmailVerified: true,
		Name:          "Gee",
		Picture:       "https://pics.example.com/g.png",
	}

	id, err := repo.BeginWithFederatedIdentity(ctx, claims, 15*time.Minute)
	if err != nil {
		t.Fatalf("BeginWithFederatedIdentity returned error: %v", err)
	}

	session, err := repo.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if session.Credential.Kind() != domain.CredentialKindFederated {
		t.Fatalf("expected federated credential, got %s", session.Credential.Kind())
	}
	sub, err := session.Credential.FederatedSubject()
	if err != nil || sub != "google-sub-42" {
		t.Fatalf("unexpected subject %q (err %v)", sub, err)
	}
	if session.Credential.PictureURL() != "https://pics.example.com/g.png" {
		t.Fatalf("unexpected picture %q", session.Credential.PictureURL())
	}
	if _, err := session.Credential.PasswordHash(); !errors.Is(err, domain.ErrCredentialKindMismatch) {
		t.Fatalf("expected kind mismatch for password accessor, got %v", err)
	}
}

func TestSignupSession_MarkPhoneVerifiedIsIdempotent(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSignupSessionRepository(client, "sign_up_session")

	ctx := context.Background()

	id, err := repo.BeginWithPassword(ctx, "a@x.com", "hash", "Ann", 15*time.Minute)
	if err != nil {
		t.Fatalf("BeginWithPassword returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := repo.MarkPhoneVerified(ctx, id); err != nil {
			t.Fatalf("MarkPhoneVerified returned error: %v", err)
		}

		session, err := repo.Load(ctx, id)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if !session.PhoneVerified {
			t.Fatalf("expected verified flag to stay true")
		}
	}
}

func TestSignupSession_UpdatesKeepTTL(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewSignupSessionRepository(client, "sign_up_session")
	repo.WithIDGenerator(func() string { return "fixed-id" })

	ctx := context.Background()

	if _, err := repo.BeginWithPassword(ctx, "a@x.com", "hash", "Ann", 10*time.Minute); err != nil {
		t.Fatalf("BeginWithPassword returned error: %v", err)
	}

	server.FastForward(4 * time.Minute)

	if err := repo.AttachPhoneNumber(ctx, "fixed-id", "+1555"); err != nil {
		t.Fatalf("AttachPhoneNumber returned error: %v", err)
	}

	remaining := server.TTL("sign_up_session:fixed-id")
	if remaining <= 0 || remaining > 6*time.Minute {
		t.Fatalf("expected field update to keep remaining ttl, got %v", remaining)
	}
}

func TestSignupSession_ExpiresWithTTL(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewSignupSessionRepository(client, "sign_up_session")

	ctx := context.Background()

	id, err := repo.BeginWithPassword(ctx, "a@x.com", "hash", "Ann", time.Minute)
	if err != nil {
		t.Fatalf("BeginWithPassword returned error: %v", err)
	}

	server.FastForward(2 * time.Minute)

	if _, err := repo.Load(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestSignupSession_InvalidInput(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSignupSessionRepository(client, "sign_up_session")

	ctx := context.Background()

	if _, err := repo.BeginWithPassword(ctx, "", "hash", "Ann", time.Minute); err == nil {
		t.Fatalf("expected error for empty email")
	}
	if _, err := repo.BeginWithPassword(ctx, "a@x.com", "hash", "Ann", 0); err == nil {
		t.Fatalf("expected error for non-positive ttl")
	}
	if _, err := repo.BeginWithFederatedIdentity(ctx, domain.IdentityClaims{Email: "g@x.com"}, time.Minute); err == nil {
		t.Fatalf("expected error for missing subject")
	}
}
