package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/getly/auth-service/internal/core/domain"
	"github.com/getly/auth-service/internal/core/port"
	"github.com/getly/auth-service/internal/infra/config"
	"github.com/getly/auth-service/internal/infra/logger"
	"github.com/getly/auth-service/internal/infra/security"
	"github.com/getly/auth-service/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked indicates too many failed sign-in attempts inside the lock window.
	ErrAccountLocked = errors.New("account temporarily locked")
	// ErrInvalidToken indicates a bearer token failed verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserNotFound indicates no account matches the resolved identity.
	ErrUserNotFound = errors.New("user not found")
	// ErrGoogleTokenInvalid indicates the Google ID token failed verification.
	ErrGoogleTokenInvalid = errors.New("google token invalid")
	// ErrEmailNotVerified indicates Google has not verified ownership of the email.
	ErrEmailNotVerified = errors.New("email not verified")
)

// SignInService coordinates sign-in flows and lockout bookkeeping.
type SignInService struct {
	cfg      *config.AppConfig
	users    port.UserRepository
	lockout  port.LockoutStore
	hasher   *security.Hasher
	tokens   *security.TokenIssuer
	identity port.IdentityVerifier
	events   port.EventPublisher
}

// NewSignInService constructs a SignInService instance.
func NewSignInService(
	cfg *config.AppConfig,
	users port.UserRepository,
	lockout port.LockoutStore,
	hasher *security.Hasher,
	tokens *security.TokenIssuer,
	identity port.IdentityVerifier,
	events port.EventPublisher,
) (*SignInService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	return &SignInService{
		cfg:      cfg,
		users:    users,
		lockout:  lockout,
		hasher:   hasher,
		tokens:   tokens,
		identity: identity,
		events:   events,
	}, nil
}

// SignInWithPassword validates credentials and issues a bearer token.
//
// Lockout state is consulted before any credential work, so a locked account
// rejects even a correct password. A miss against a missing account still
// burns one hash verification to keep timing flat.
func (s *SignInService) SignInWithPassword(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	log := logger.WithContext(ctx)

	locked, err := s.lockout.IsLocked(ctx, email, s.cfg.Auth.MaxSignInAttempts)
	if err != nil {
		log.Warn("lockout check failed, proceeding without enforcement",
			zap.String("email", logger.MaskEmail(email)), zap.Error(err))
	} else if locked {
		return "", nil, ErrAccountLocked
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.VerifyDummy(password)
			s.recordFailure(ctx, email)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.HasPassword() {
		// Federated-only account; equalize timing before rejecting.
		s.hasher.VerifyDummy(password)
		s.recordFailure(ctx, email)
		return "", nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, *user.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.recordFailure(ctx, email)
		return "", nil, ErrInvalidCredentials
	}

	if err := s.lockout.Clear(ctx, email); err != nil {
		log.Warn("clear lockout counter failed",
			zap.String("email", logger.MaskEmail(email)), zap.Error(err))
	}

	return s.finishSignIn(ctx, user, "password")
}

// SignInWithGoogle validates a Google ID token and issues a bearer token.
//
// An account keyed by the Google subject wins; otherwise an account with the
// asserted email gets the subject linked, provided Google vouches for the
// email. A total miss is reported as ErrUserNotFound so the client can route
// to sign-up.
func (s *SignInService) SignInWithGoogle(ctx context.Context, idToken string) (string, *domain.User, error) {
	if idToken == "" || s.identity == nil {
		return "", nil, ErrGoogleTokenInvalid
	}

	log := logger.WithContext(ctx)

	claims, err := s.identity.Verify(ctx, idToken)
	if err != nil {
		log.Info("google id token rejected", zap.Error(err))
		return "", nil, ErrGoogleTokenInvalid
	}

	user, err := s.users.GetByGoogleSub(ctx, claims.Subject)
	if err == nil {
		return s.finishSignIn(ctx, user, "google")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", nil, fmt.Errorf("lookup user by subject: %w", err)
	}

	user, err = s.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrUserNotFound
		}
		return "", nil, fmt.Errorf("lookup user by email: %w", err)
	}

	if !claims.EmailVerified {
		return "", nil, ErrEmailNotVerified
	}

	if err := s.users.LinkGoogleSub(ctx, user.ID, claims.Subject); err != nil {
		return "", nil, fmt.Errorf("link google subject: %w", err)
	}

	return s.finishSignIn(ctx, user, "google")
}

// ResolveToken maps a bearer token back to the account it was issued for.
func (s *SignInService) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	return user, nil
}

func (s *SignInService) finishSignIn(ctx context.Context, user *domain.User, method string) (string, *domain.User, error) {
	log := logger.WithContext(ctx)

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	if err := s.users.TouchLastSeen(ctx, user.ID); err != nil {
		log.Warn("touch last seen failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	if s.events != nil {
		event := domain.SignedInEvent{
			UserID:   user.ID,
			Method:   method,
			SignedAt: time.Now().UTC(),
		}
		if err := s.events.PublishSignedIn(ctx, event); err != nil {
			log.Warn("publish signed_in event failed", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	sanitized := user.Sanitized()
	return token, &sanitized, nil
}

func (s *SignInService) recordFailure(ctx context.Context, email string) {
	if err := s.lockout.RecordFailure(ctx, email, s.cfg.Auth.LockWindow); err != nil {
		logger.WithContext(ctx).Warn("record sign-in failure failed",
			zap.String("email", logger.MaskEmail(email)), zap.Error(err))
	}
}
