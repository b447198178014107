package google

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/getly/auth-service/internal/core/domain"
	"github.com/getly/auth-service/internal/core/port"
)

// Verifier validates Google ID tokens against the configured OAuth client ID.
type Verifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// NewVerifier constructs a Verifier for the given OAuth client ID.
func NewVerifier(clientID string) (*Verifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("google: empty client id")
	}

	return &Verifier{
		clientID: clientID,
		validate: idtoken.Validate,
	}, nil
}

// Verify checks the token signature and audience, returning the identity
// claims Google asserted.
func (v *Verifier) Verify(ctx context.Context, token string) (*domain.IdentityClaims, error) {
	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate google id token: %w", err)
	}

	claims := &domain.IdentityClaims{
		Subject:       payload.Subject,
		Email:         stringClaim(payload, "email"),
		EmailVerified: boolClaim(payload, "email_verified"),
		Name:          stringClaim(payload, "name"),
		Picture:       stringClaim(payload, "picture"),
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("google id token missing identity claims")
	}

	return claims, nil
}

func stringClaim(payload *idtoken.Payload, key string) string {
	if val, ok := payload.Claims[key].(string); ok {
		return val
	}
	return ""
}

func boolClaim(payload *idtoken.Payload, key string) bool {
	if val, ok := payload.Claims[key].(bool); ok {
		return val
	}
	return false
}

var _ port.IdentityVerifier = (*Verifier)(nil)
