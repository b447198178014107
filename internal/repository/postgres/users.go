package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/getly/auth-service/internal/core/domain"
	"github.com/getly/auth-service/internal/core/port"
	"github.com/getly/auth-service/internal/repository"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var userColumns = []string{
	"uuid",
	"email",
	"email_verified",
	"name",
	"password_hash",
	"google_sub",
	"phone_num",
	"created_at",
	"last_seen_at",
	"picture",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
	newID   func() string
	now     func() time.Time
}

// NewUserRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		newID:   newUUID,
		now:     time.Now,
	}
}

// Create inserts a durable user row from a consumed sign-up session.
func (r *UserRepository) Create(ctx context.Context, session domain.SignupSession) (*domain.User, error) {
	var (
		passwordHash *string
		googleSub    *string
		picture      *string
	)

	switch session.Credential.Kind() {
	case domain.CredentialKindPassword:
		hash, err := session.Credential.PasswordHash()
		if err != nil {
			return nil, err
		}
		passwordHash = &hash
	case domain.CredentialKindFederated:
		sub, err := session.Credential.FederatedSubject()
		if err != nil {
			return nil, err
		}
		googleSub = &sub
		if url := session.Credential.PictureURL(); url != "" {
			picture = &url
		}
	default:
		return nil, fmt.Errorf("signup session carries no credential")
	}

	now := r.now().UTC()
	user := domain.User{
		ID:           r.newID(),
		Email:        session.Email,
		Name:         session.Name,
		PasswordHash: passwordHash,
		GoogleSub:    googleSub,
		PhoneNumber:  session.PhoneNumber,
		CreatedAt:    now,
		LastSeenAt:   &now,
		Picture:      picture,
	}

	stmt, args, err := r.builder.Insert("users").
		Columns(userColumns...).
		Values(
			user.ID,
			user.Email,
			user.EmailVerified,
			user.Name,
			user.PasswordHash,
			user.GoogleSub,
			user.PhoneNumber,
			user.CreatedAt,
			user.LastSeenAt,
			user.Picture,
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &user, nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"uuid": id})
}

// GetByEmail retrieves a user by exact email equality.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email})
}

// GetByGoogleSub retrieves a user by linked federated subject.
func (r *UserRepository) GetByGoogleSub(ctx context.Context, sub string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"google_sub": sub})
}

// LinkGoogleSub attaches a federated subject to an existing account.
func (r *UserRepository) LinkGoogleSub(ctx context.Context, id, sub string) error {
	stmt, args, err := r.builder.Update("users").
		Set("google_sub", sub).
		Where(squirrel.Eq{"uuid": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build link google sub sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("link google sub: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// TouchLastSeen stamps the account's last successful authentication.
func (r *UserRepository) TouchLastSeen(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("users").
		Set("last_seen_at", r.now().UTC()).
		Where(squirrel.Eq{"uuid": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build touch last seen sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("touch last seen: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) getBy(ctx context.Context, pred squirrel.Eq) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("users").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.EmailVerified,
		&user.Name,
		&user.PasswordHash,
		&user.GoogleSub,
		&user.PhoneNumber,
		&user.CreatedAt,
		&user.LastSeenAt,
		&user.Picture,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &user, nil
}

// WithIDGenerator overrides user id allocation, used in tests.
func (r *UserRepository) WithIDGenerator(gen func() string) {
	if gen != nil {
		r.newID = gen
	}
}

// WithClock overrides the internal clock, used in tests.
func (r *UserRepository) WithClock(clock func() time.Time) {
	if clock != nil {
		r.now = clock
	}
}

var _ port.UserRepository = (*UserRepository)(nil)
