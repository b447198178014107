package domain

// IdentityClaims captures the verified assertions returned by a federated
// identity provider for an ID token.
type IdentityClaims struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}
