package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenEncoding indicates a token could not be signed.
	ErrTokenEncoding = errors.New("jwt: token encoding failed")
	// ErrTokenDecoding indicates a token could not be parsed at all.
	ErrTokenDecoding = errors.New("jwt: token decoding failed")
	// ErrTokenInvalid indicates a structurally valid token failed verification.
	ErrTokenInvalid = errors.New("jwt: token invalid")
)

// TokenIssuer signs and verifies HMAC-SHA256 bearer tokens carrying a user
// identifier as the subject claim.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer with the shared signing secret.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: empty signing secret")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt: non-positive token ttl")
	}

	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue mints a signed token for the given user identifier.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("jwt: empty subject")
	}

	now := t.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenEncoding, err)
	}

	return signed, nil
}

// Parse verifies a token and returns the embedded user identifier. Expired,
// tampered, and not-yet-issued tokens all map to ErrTokenInvalid.
func (t *TokenIssuer) Parse(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return "", fmt.Errorf("%w: %v", ErrTokenDecoding, err)
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return "", ErrTokenInvalid
	}

	// A token stamped in the future cannot have been minted by us.
	if claims.IssuedAt == nil || claims.IssuedAt.After(t.now().UTC()) {
		return "", ErrTokenInvalid
	}
	if claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}

// WithClock overrides the internal clock, used in tests.
func (t *TokenIssuer) WithClock(clock func() time.Time) {
	if clock != nil {
		t.now = clock
	}
}
