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

const smsCodeLength = 6

var (
	// ErrEmailTaken indicates an account with the requested email already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrWeakPassword indicates the candidate password failed policy checks.
	ErrWeakPassword = errors.New("password too weak")
	// ErrCaptchaFailed indicates the captcha challenge was not passed.
	ErrCaptchaFailed = errors.New("captcha verification failed")
	// ErrSessionNotFound indicates the sign-up session expired or never existed.
	ErrSessionNotFound = errors.New("sign-up session not found")
	// ErrPhoneMismatch indicates a different phone number than the one bound to the session.
	ErrPhoneMismatch = errors.New("phone number does not match session")
	// ErrPhoneAlreadyVerified indicates the session already confirmed its phone number.
	ErrPhoneAlreadyVerified = errors.New("phone already verified")
	// ErrInvalidPhoneNumber indicates the SMS provider rejected the destination.
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	// ErrResendCooldown indicates a code was requested again too soon.
	ErrResendCooldown = errors.New("code recently sent, wait before retrying")
	// ErrCodeExpired indicates no live code exists for the session.
	ErrCodeExpired = errors.New("code expired or not issued")
	// ErrCodeWrong indicates the submitted code did not match.
	ErrCodeWrong = errors.New("wrong code")
	// ErrTooManyCodeAttempts indicates the attempt budget for the current code is spent.
	ErrTooManyCodeAttempts = errors.New("too many code attempts")
	// ErrPhoneNotVerified indicates completion was requested before phone verification.
	ErrPhoneNotVerified = errors.New("phone not verified")
	// ErrSMSDeliveryFailed indicates the provider could not deliver the code.
	ErrSMSDeliveryFailed = errors.New("sms delivery failed")
)

// SignUpService coordinates the multi-step registration flow.
type SignUpService struct {
	cfg      *config.AppConfig
	sessions port.SignupSessionStore
	codes    port.SMSCodeStore
	users    port.UserRepository
	hasher   *security.Hasher
	tokens   *security.TokenIssuer
	identity port.IdentityVerifier
	captcha  port.CaptchaVerifier
	sms      port.SMSDispatcher
	mail     port.MailSender
	events   port.EventPublisher
	now      func() time.Time
}

// NewSignUpService constructs a SignUpService instance.
func NewSignUpService(
	cfg *config.AppConfig,
	sessions port.SignupSessionStore,
	codes port.SMSCodeStore,
	users port.UserRepository,
	hasher *security.Hasher,
	tokens *security.TokenIssuer,
	identity port.IdentityVerifier,
	captcha port.CaptchaVerifier,
	sms port.SMSDispatcher,
	mail port.MailSender,
	events port.EventPublisher,
) (*SignUpService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	return &SignUpService{
		cfg:      cfg,
		sessions: sessions,
		codes:    codes,
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		identity: identity,
		captcha:  captcha,
		sms:      sms,
		mail:     mail,
		events:   events,
		now:      time.Now,
	}, nil
}

// StartWithPassword opens a sign-up session for a local-password account.
func (s *SignUpService) StartWithPassword(ctx context.Context, email, name, password, captchaToken string) (string, error) {
	if email == "" || name == "" || password == "" {
		return "", fmt.Errorf("email, name and password are required")
	}

	ok, err := s.captcha.Verify(ctx, captchaToken)
	if err != nil {
		return "", fmt.Errorf("verify captcha: %w", err)
	}
	if !ok {
		return "", ErrCaptchaFailed
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	validator := security.NewPasswordValidator(
		security.MinLengthRule(8),
		security.RequirePasswordStrengthRule(s.cfg.Auth.MinPasswordScore, email, name),
	)
	if err := validator.Validate(password); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	sessionID, err := s.sessions.BeginWithPassword(ctx, email, hash, name, s.cfg.Auth.SignupSessionTTL)
	if err != nil {
		return "", fmt.Errorf("begin sign-up session: %w", err)
	}

	logger.WithContext(ctx).Info("sign-up session opened",
		zap.String("email", logger.MaskEmail(email)),
		zap.String("method", "password"),
	)

	return sessionID, nil
}

// StartWithGoogle opens a sign-up session from a verified Google identity.
func (s *SignUpService) StartWithGoogle(ctx context.Context, idToken string) (string, error) {
	if idToken == "" || s.identity == nil {
		return "", ErrGoogleTokenInvalid
	}

	claims, err := s.identity.Verify(ctx, idToken)
	if err != nil {
		return "", ErrGoogleTokenInvalid
	}
	if !claims.EmailVerified {
		return "", ErrEmailNotVerified
	}

	if _, err := s.users.GetByEmail(ctx, claims.Email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	sessionID, err := s.sessions.BeginWithFederatedIdentity(ctx, *claims, s.cfg.Auth.SignupSessionTTL)
	if err != nil {
		return "", fmt.Errorf("begin sign-up session: %w", err)
	}

	logger.WithContext(ctx).Info("sign-up session opened",
		zap.String("email", logger.MaskEmail(claims.Email)),
		zap.String("method", "google"),
	)

	return sessionID, nil
}

// RequestCode issues a one-time code and delivers it to the given phone
// number. The first successful delivery binds the number to the session;
// later requests must repeat it and honor the resend cooldown.
func (s *SignUpService) RequestCode(ctx context.Context, sessionID, phoneNumber string) error {
	if phoneNumber == "" {
		return ErrInvalidPhoneNumber
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.PhoneVerified {
		return ErrPhoneAlreadyVerified
	}
	if session.HasPhoneNumber() && session.PhoneNumber != phoneNumber {
		return ErrPhoneMismatch
	}
	if session.CodeSentAt != nil {
		elapsed := s.now().UTC().Sub(session.CodeSentAt.UTC())
		if elapsed < s.cfg.Auth.SMSResendCooldown {
			return ErrResendCooldown
		}
	}

	code, err := security.GenerateNumericCode(smsCodeLength)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	if err := s.codes.Issue(ctx, sessionID, code, s.cfg.Auth.SMSCodeTTL); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	body := fmt.Sprintf("%s is your Getly verification code", code)
	if err := s.sms.Send(ctx, s.cfg.SMS.From, phoneNumber, body); err != nil {
		if errors.Is(err, port.ErrSMSInvalidNumber) {
			return ErrInvalidPhoneNumber
		}
		logger.WithContext(ctx).Error("sms delivery failed",
			zap.String("phone", logger.MaskPhone(phoneNumber)), zap.Error(err))
		return ErrSMSDeliveryFailed
	}

	if !session.HasPhoneNumber() {
		if err := s.sessions.AttachPhoneNumber(ctx, sessionID, phoneNumber); err != nil {
			return fmt.Errorf("attach phone number: %w", err)
		}
	}
	if err := s.sessions.MarkCodeSent(ctx, sessionID, s.now().UTC()); err != nil {
		return fmt.Errorf("mark code sent: %w", err)
	}

	logger.WithContext(ctx).Info("verification code sent",
		zap.String("phone", logger.MaskPhone(phoneNumber)))

	return nil
}

// VerifyCode checks a submitted code against the session's live code.
// A session whose phone is already verified accepts any submission as a
// no-op so retried requests stay idempotent.
func (s *SignUpService) VerifyCode(ctx context.Context, sessionID, submitted string) error {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.PhoneVerified {
		return nil
	}

	exists, err := s.codes.Exists(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("check code: %w", err)
	}
	if !exists {
		return ErrCodeExpired
	}

	outcome, err := s.codes.Verify(ctx, sessionID, submitted, s.cfg.Auth.MaxSMSCodeAttempts)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCodeExpired
		}
		return fmt.Errorf("verify code: %w", err)
	}

	switch outcome {
	case port.CodeWrong:
		return ErrCodeWrong
	case port.CodeTooManyAttempts:
		return ErrTooManyCodeAttempts
	}

	if err := s.sessions.MarkPhoneVerified(ctx, sessionID); err != nil {
		return fmt.Errorf("mark phone verified: %w", err)
	}

	return nil
}

// Complete turns a fully verified session into a durable account and issues
// the first bearer token. The session is consumed before the account is
// created, so a crash in between costs the user a restart rather than
// leaving a replayable session around.
func (s *SignUpService) Complete(ctx context.Context, sessionID string) (string, *domain.User, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}

	if !session.PhoneVerified {
		return "", nil, ErrPhoneNotVerified
	}

	if err := s.sessions.Consume(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrSessionNotFound
		}
		return "", nil, fmt.Errorf("consume session: %w", err)
	}

	user, err := s.users.Create(ctx, *session)
	if err != nil {
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	log := logger.WithContext(ctx)
	method := "password"
	if session.Credential.Kind() == domain.CredentialKindFederated {
		method = "google"
	}

	if s.mail != nil && method == "password" {
		subject := "Welcome to Getly"
		html := fmt.Sprintf("<p>Hi %s,</p><p>Your Getly account is ready. Please confirm your email address from the app to unlock all features.</p>", user.Name)
		if err := s.mail.Send(ctx, s.cfg.Mail.From, []string{user.Email}, subject, html); err != nil {
			log.Warn("welcome email failed",
				zap.String("email", logger.MaskEmail(user.Email)), zap.Error(err))
		}
	}

	if s.events != nil {
		event := domain.SignUpCompletedEvent{
			UserID:      user.ID,
			Email:       user.Email,
			Method:      method,
			CompletedAt: s.now().UTC(),
		}
		if err := s.events.PublishSignUpCompleted(ctx, event); err != nil {
			log.Warn("publish sign_up_completed event failed",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	log.Info("sign-up completed",
		zap.String("user_id", user.ID),
		zap.String("method", method),
	)

	sanitized := user.Sanitized()
	return token, &sanitized, nil
}

func (s *SignUpService) loadSession(ctx context.Context, sessionID string) (*domain.SignupSession, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load sign-up session: %w", err)
	}

	return session, nil
}

// WithClock overrides the internal clock, used in tests.
func (s *SignUpService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}
