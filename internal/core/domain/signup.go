package domain

import (
	"errors"
	"time"
)

// CredentialKind discriminates the sign-up credential union.
type CredentialKind string

const (
	// CredentialKindPassword marks a local password sign-up.
	CredentialKindPassword CredentialKind = "password"
	// CredentialKindFederated marks a federated (Google) sign-up.
	CredentialKindFederated CredentialKind = "federated"
)

// ErrCredentialKindMismatch indicates an accessor was called for the wrong variant.
var ErrCredentialKindMismatch = errors.New("domain: credential kind mismatch")

// Credential is a two-variant union: either a password hash or a federated
// subject (with an optional picture URL), never both. The unexported fields
// and the two constructors make the exclusivity a type-level guarantee.
type Credential struct {
	kind             CredentialKind
	passwordHash     string
	federatedSubject string
	pictureURL       string
}

// NewPasswordCredential builds the password variant.
func NewPasswordCredential(passwordHash string) Credential {
	return Credential{kind: CredentialKindPassword, passwordHash: passwordHash}
}

// NewFederatedCredential builds the federated variant.
func NewFederatedCredential(subject, pictureURL string) Credential {
	return Credential{kind: CredentialKindFederated, federatedSubject: subject, pictureURL: pictureURL}
}

// Kind returns the active variant discriminator.
func (c Credential) Kind() CredentialKind {
	return c.kind
}

// PasswordHash returns the stored hash for the password variant.
func (c Credential) PasswordHash() (string, error) {
	if c.kind != CredentialKindPassword {
		return "", ErrCredentialKindMismatch
	}
	return c.passwordHash, nil
}

// FederatedSubject returns the provider subject for the federated variant.
func (c Credential) FederatedSubject() (string, error) {
	if c.kind != CredentialKindFederated {
		return "", ErrCredentialKindMismatch
	}
	return c.federatedSubject, nil
}

// PictureURL returns the federated profile picture, empty for password sign-ups.
func (c Credential) PictureURL() string {
	return c.pictureURL
}

// SignupSession is the ephemeral record tracking one in-flight registration.
// Email, Name, and Credential are fixed at creation. PhoneNumber is bound to
// the first number the session claims. PhoneVerified moves false to true once
// and never back.
type SignupSession struct {
	ID            string
	Email         string
	Name          string
	Credential    Credential
	PhoneNumber   string
	CodeSentAt    *time.Time
	PhoneVerified bool
}

// HasPhoneNumber reports whether a phone number was attached.
func (s SignupSession) HasPhoneNumber() bool {
	return s.PhoneNumber != ""
}
