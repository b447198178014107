package port

import (
	"context"

	"github.com/getly/auth-service/internal/core/domain"
)

// IdentityVerifier validates a federated ID token and extracts its claims.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*domain.IdentityClaims, error)
}

// CaptchaVerifier checks a CAPTCHA response token against the provider.
type CaptchaVerifier interface {
	Verify(ctx context.Context, responseToken string) (bool, error)
}
