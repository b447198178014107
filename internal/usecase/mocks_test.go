package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/getly/auth-service/internal/core/domain"
	"github.com/getly/auth-service/internal/core/port"
	"github.com/getly/auth-service/internal/infra/config"
	"github.com/getly/auth-service/internal/infra/security"
	"github.com/getly/auth-service/internal/repository"
)

func newTestConfig() *config.AppConfig {
	return &config.AppConfig{
		Auth: config.AuthSettings{
			MaxSignInAttempts:  5,
			LockWindow:         5 * time.Minute,
			SignupSessionTTL:   15 * time.Minute,
			SMSCodeTTL:         5 * time.Minute,
			SMSResendCooldown:  3 * time.Minute,
			MaxSMSCodeAttempts: 5,
			MinPasswordScore:   2,
		},
		SMS:  config.SMSSettings{From: "Getly"},
		Mail: config.MailSettings{From: "Getly <no-reply@getly.app>"},
	}
}

func newTestHasher(t *testing.T) *security.Hasher {
	t.Helper()

	hasher, err := security.NewHasher(config.Argon2Settings{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewHasher returned error: %v", err)
	}
	return hasher
}

func newTestIssuer(t *testing.T) *security.TokenIssuer {
	t.Helper()

	issuer, err := security.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer returned error: %v", err)
	}
	return issuer
}

type mockUserRepository struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	bySub   map[string]*domain.User

	createErr   error
	createCalls int
	lastCreated domain.SignupSession

	linkCalls  int
	linkUserID string
	linkSub    string
	linkErr    error

	touchCalls int
	touchErr   error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
		bySub:   make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) add(user *domain.User) {
	m.byID[user.ID] = user
	m.byEmail[user.Email] = user
	if user.GoogleSub != nil {
		m.bySub[*user.GoogleSub] = user
	}
}

func (m *mockUserRepository) Create(_ context.Context, session domain.SignupSession) (*domain.User, error) {
	m.createCalls++
	m.lastCreated = session
	if m.createErr != nil {
		return nil, m.createErr
	}

	user := &domain.User{
		ID:          fmt.Sprintf("user-%d", m.createCalls),
		Email:       session.Email,
		Name:        session.Name,
		PhoneNumber: session.PhoneNumber,
		CreatedAt:   time.Now().UTC(),
	}
	if hash, err := session.Credential.PasswordHash(); err == nil {
		user.PasswordHash = &hash
	}
	if sub, err := session.Credential.FederatedSubject(); err == nil {
		user.GoogleSub = &sub
	}
	m.add(user)
	return user, nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := m.byID[id]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if user, ok := m.byEmail[email]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) GetByGoogleSub(_ context.Context, sub string) (*domain.User, error) {
	if user, ok := m.bySub[sub]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) LinkGoogleSub(_ context.Context, id, sub string) error {
	m.linkCalls++
	m.linkUserID = id
	m.linkSub = sub
	if m.linkErr != nil {
		return m.linkErr
	}
	user, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.GoogleSub = &sub
	m.bySub[sub] = user
	return nil
}

func (m *mockUserRepository) TouchLastSeen(_ context.Context, id string) error {
	m.touchCalls++
	return m.touchErr
}

var _ port.UserRepository = (*mockUserRepository)(nil)

type mockLockoutStore struct {
	failures map[string]int

	recordCalls int
	recordErr   error
	isLockedErr error
	clearCalls  int
	clearErr    error
}

func newMockLockoutStore() *mockLockoutStore {
	return &mockLockoutStore{failures: make(map[string]int)}
}

func (m *mockLockoutStore) RecordFailure(_ context.Context, identifier string, _ time.Duration) error {
	m.recordCalls++
	if m.recordErr != nil {
		return m.recordErr
	}
	m.failures[identifier]++
	return nil
}

func (m *mockLockoutStore) IsLocked(_ context.Context, identifier string, maxAttempts int) (bool, error) {
	if m.isLockedErr != nil {
		return false, m.isLockedErr
	}
	return m.failures[identifier] >= maxAttempts, nil
}

func (m *mockLockoutStore) Clear(_ context.Context, identifier string) error {
	m.clearCalls++
	if m.clearErr != nil {
		return m.clearErr
	}
	delete(m.failures, identifier)
	return nil
}

var _ port.LockoutStore = (*mockLockoutStore)(nil)

type mockSignupStore struct {
	sessions map[string]*domain.SignupSession
	nextID   int

	beginErr   error
	loadErr    error
	consumeErr error
}

func newMockSignupStore() *mockSignupStore {
	return &mockSignupStore{sessions: make(map[string]*domain.SignupSession)}
}

func (m *mockSignupStore) BeginWithPassword(_ context.Context, email, passwordHash, name string, _ time.Duration) (string, error) {
	if m.beginErr != nil {
		return "", m.beginErr
	}
	m.nextID++
	id := fmt.Sprintf("session-%d", m.nextID)
	m.sessions[id] = &domain.SignupSession{
		ID:         id,
		Email:      email,
		Name:       name,
		Credential: domain.NewPasswordCredential(passwordHash),
	}
	return id, nil
}

func (m *mockSignupStore) BeginWithFederatedIdentity(_ context.Context, claims domain.IdentityClaims, _ time.Duration) (string, error) {
	if m.beginErr != nil {
		return "", m.beginErr
	}
	m.nextID++
	id := fmt.Sprintf("session-%d", m.nextID)
	m.sessions[id] = &domain.SignupSession{
		ID:         id,
		Email:      claims.Email,
		Name:       claims.Name,
		Credential: domain.NewFederatedCredential(claims.Subject, claims.Picture),
	}
	return id, nil
}

func (m *mockSignupStore) Load(_ context.Context, sessionID string) (*domain.SignupSession, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if session, ok := m.sessions[sessionID]; ok {
		copy := *session
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockSignupStore) AttachPhoneNumber(_ context.Context, sessionID, phoneNumber string) error {
	session, ok := m.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	session.PhoneNumber = phoneNumber
	return nil
}

func (m *mockSignupStore) MarkCodeSent(_ context.Context, sessionID string, at time.Time) error {
	session, ok := m.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	session.CodeSentAt = &at
	return nil
}

func (m *mockSignupStore) MarkPhoneVerified(_ context.Context, sessionID string) error {
	session, ok := m.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	session.PhoneVerified = true
	return nil
}

func (m *mockSignupStore) Consume(_ context.Context, sessionID string) error {
	if m.consumeErr != nil {
		return m.consumeErr
	}
	if _, ok := m.sessions[sessionID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.sessions, sessionID)
	return nil
}

var _ port.SignupSessionStore = (*mockSignupStore)(nil)

type mockCodeStore struct {
	codes    map[string]string
	attempts map[string]int

	issueCalls int
	issueErr   error
	lastCode   string
}

func newMockCodeStore() *mockCodeStore {
	return &mockCodeStore{
		codes:    make(map[string]string),
		attempts: make(map[string]int),
	}
}

func (m *mockCodeStore) Issue(_ context.Context, sessionID, code string, _ time.Duration) error {
	m.issueCalls++
	if m.issueErr != nil {
		return m.issueErr
	}
	m.codes[sessionID] = code
	m.attempts[sessionID] = 0
	m.lastCode = code
	return nil
}

func (m *mockCodeStore) Verify(_ context.Context, sessionID, submitted string, maxAttempts int) (port.CodeOutcome, error) {
	code, ok := m.codes[sessionID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if m.attempts[sessionID] > maxAttempts {
		return port.CodeTooManyAttempts, nil
	}
	if submitted != code {
		m.attempts[sessionID]++
		return port.CodeWrong, nil
	}
	return port.CodeCorrect, nil
}

func (m *mockCodeStore) Exists(_ context.Context, sessionID string) (bool, error) {
	_, ok := m.codes[sessionID]
	return ok, nil
}

var _ port.SMSCodeStore = (*mockCodeStore)(nil)

type mockIdentityVerifier struct {
	claims *domain.IdentityClaims
	err    error
}

func (m *mockIdentityVerifier) Verify(context.Context, string) (*domain.IdentityClaims, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.claims == nil {
		return nil, errors.New("no claims configured")
	}
	copy := *m.claims
	return &copy, nil
}

var _ port.IdentityVerifier = (*mockIdentityVerifier)(nil)

type mockCaptchaVerifier struct {
	ok  bool
	err error
}

func (m *mockCaptchaVerifier) Verify(context.Context, string) (bool, error) {
	return m.ok, m.err
}

var _ port.CaptchaVerifier = (*mockCaptchaVerifier)(nil)

type sentSMS struct {
	from string
	to   string
	body string
}

type mockSMSDispatcher struct {
	sent []sentSMS
	err  error
}

func (m *mockSMSDispatcher) Send(_ context.Context, from, to, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentSMS{from: from, to: to, body: body})
	return nil
}

var _ port.SMSDispatcher = (*mockSMSDispatcher)(nil)

type mockMailSender struct {
	sendCalls   int
	lastTo      []string
	lastSubject string
	err         error
}

func (m *mockMailSender) Send(_ context.Context, _ string, to []string, subject, _ string) error {
	m.sendCalls++
	m.lastTo = to
	m.lastSubject = subject
	return m.err
}

var _ port.MailSender = (*mockMailSender)(nil)

type mockEventPublisher struct {
	signedIn  []domain.SignedInEvent
	completed []domain.SignUpCompletedEvent
	err       error
}

func (m *mockEventPublisher) PublishSignedIn(_ context.Context, event domain.SignedInEvent) error {
	if m.err != nil {
		return m.err
	}
	m.signedIn = append(m.signedIn, event)
	return nil
}

func (m *mockEventPublisher) PublishSignUpCompleted(_ context.Context, event domain.SignUpCompletedEvent) error {
	if m.err != nil {
		return m.err
	}
	m.completed = append(m.completed, event)
	return nil
}

var _ port.EventPublisher = (*mockEventPublisher)(nil)
