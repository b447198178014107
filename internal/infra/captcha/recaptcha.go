package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getly/auth-service/internal/core/port"
)

// Verifier checks reCAPTCHA response tokens with Google's siteverify endpoint.
type Verifier struct {
	secret    string
	verifyURL string
	client    *http.Client
	enabled   bool
}

// NewVerifier constructs a Verifier. A disabled verifier accepts every token,
// intended for local development.
func NewVerifier(secret, verifyURL string, enabled bool) *Verifier {
	return &Verifier{
		secret:    secret,
		verifyURL: verifyURL,
		enabled:   enabled,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify submits the response token and reports whether the challenge passed.
func (v *Verifier) Verify(ctx context.Context, responseToken string) (bool, error) {
	if !v.enabled {
		return true, nil
	}
	if responseToken == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", responseToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("build captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("verify captcha: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("captcha endpoint returned status %d", resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode captcha response: %w", err)
	}

	return body.Success, nil
}

var _ port.CaptchaVerifier = (*Verifier)(nil)
