package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/getly/auth-service/internal/core/domain"
	"github.com/getly/auth-service/internal/repository"
)

func TestUserRepository_CreateFromPasswordSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)
	repo.WithIDGenerator(func() string { return "user-1" })

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.WithClock(func() time.Time { return now })

	hash := "argon2-hash"
	session := domain.SignupSession{
		ID:            "session-1",
		Email:         "a@x.com",
		Name:          "Ann",
		Credential:    domain.NewPasswordCredential(hash),
		PhoneNumber:   "+1555",
		PhoneVerified: true,
	}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(
			"user-1",
			"a@x.com",
			false,
			"Ann",
			&hash,
			(*string)(nil),
			"+1555",
			now,
			&now,
			(*string)(nil),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	user, err := repo.Create(context.Background(), session)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("expected user id user-1, got %s", user.ID)
	}
	if user.PasswordHash == nil || *user.PasswordHash != hash {
		t.Fatalf("expected password hash to be materialized")
	}
	if user.GoogleSub != nil {
		t.Fatalf("expected no federated subject for password sign-up")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_CreateFromFederatedSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)
	repo.WithIDGenerator(func() string { return "user-2" })

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.WithClock(func() time.Time { return now })

	sub := "google-sub-42"
	picture := "https://pics.example.com/g.png"
	session := domain.SignupSession{
		ID:            "session-2",
		Email:         "g@x.com",
		Name:          "Gee",
		Credential:    domain.NewFederatedCredential(sub, picture),
		PhoneNumber:   "+1444",
		PhoneVerified: true,
	}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(
			"user-2",
			"g@x.com",
			false,
			"Gee",
			(*string)(nil),
			&sub,
			"+1444",
			now,
			&now,
			&picture,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	user, err := repo.Create(context.Background(), session)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if user.GoogleSub == nil || *user.GoogleSub != sub {
		t.Fatalf("expected federated subject to be materialized")
	}
	if user.PasswordHash != nil {
		t.Fatalf("expected no password hash for federated sign-up")
	}
	if user.Picture == nil || *user.Picture != picture {
		t.Fatalf("expected picture to be materialized")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	hash := "argon2-hash"

	rows := pgxmock.NewRows([]string{
		"uuid", "email", "email_verified", "name", "password_hash", "google_sub", "phone_num", "created_at", "last_seen_at", "picture",
	}).AddRow(
		"user-1", "a@x.com", true, "Ann", &hash, (*string)(nil), "+1555", createdAt, &createdAt, (*string)(nil),
	)

	mock.ExpectQuery(`SELECT .*FROM users`).WithArgs("a@x.com").WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("expected user id user-1, got %s", user.ID)
	}
	if !user.EmailVerified {
		t.Fatalf("expected email verified flag to round-trip")
	}
	if user.PasswordHash == nil || *user.PasswordHash != hash {
		t.Fatalf("expected password hash pointer populated")
	}
	if user.GoogleSub != nil {
		t.Fatalf("expected nil federated subject")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	rows := pgxmock.NewRows([]string{
		"uuid", "email", "email_verified", "name", "password_hash", "google_sub", "phone_num", "created_at", "last_seen_at", "picture",
	})

	mock.ExpectQuery(`SELECT .*FROM users`).WithArgs("nobody@x.com").WillReturnRows(rows)

	if _, err := repo.GetByEmail(context.Background(), "nobody@x.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByGoogleSub(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	sub := "google-sub-42"
	picture := "https://pics.example.com/g.png"

	rows := pgxmock.NewRows([]string{
		"uuid", "email", "email_verified", "name", "password_hash", "google_sub", "phone_num", "created_at", "last_seen_at", "picture",
	}).AddRow(
		"user-2", "g@x.com", true, "Gee", (*string)(nil), &sub, "+1444", createdAt, &createdAt, &picture,
	)

	mock.ExpectQuery(`SELECT .*FROM users`).WithArgs(sub).WillReturnRows(rows)

	user, err := repo.GetByGoogleSub(context.Background(), sub)
	if err != nil {
		t.Fatalf("GetByGoogleSub returned error: %v", err)
	}
	if user.GoogleSub == nil || *user.GoogleSub != sub {
		t.Fatalf("expected federated subject populated")
	}
	if user.HasPassword() {
		t.Fatalf("expected federated-only account")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_LinkGoogleSub(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users SET google_sub`).
		WithArgs("google-sub-42", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.LinkGoogleSub(context.Background(), "user-1", "google-sub-42"); err != nil {
		t.Fatalf("LinkGoogleSub returned error: %v", err)
	}

	mock.ExpectExec(`UPDATE users SET google_sub`).
		WithArgs("google-sub-42", "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.LinkGoogleSub(context.Background(), "missing", "google-sub-42"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_TouchLastSeen(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.WithClock(func() time.Time { return now })

	mock.ExpectExec(`UPDATE users SET last_seen_at`).
		WithArgs(now, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.TouchLastSeen(context.Background(), "user-1"); err != nil {
		t.Fatalf("TouchLastSeen returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
