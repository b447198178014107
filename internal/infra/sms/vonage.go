package sms

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

// VonageDispatcher delivers SMS through the Vonage (Nexmo) REST API.
type VonageDispatcher struct {
	apiKey    string
	apiSecret string
	apiURL    string
	client    *http.Client
}

// NewVonageDispatcher constructs a dispatcher with the given credentials.
func NewVonageDispatcher(apiKey, apiSecret, apiURL string) (*VonageDispatcher, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("sms: missing vonage credentials")
	}
	if apiURL == "" {
		apiURL = "https://rest.nexmo.com/sms/json"
	}

	return &VonageDispatcher{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		apiURL:    apiURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type sendResponse struct {
	Messages []struct {
		Status    string `json:"status"`
		ErrorText string `json:"error-text"`
	} `json:"messages"`
}

// Send delivers one text message. Provider rejections are mapped onto the
// port error taxonomy so callers can decide whether the sign-up can proceed.
func (d *VonageDispatcher) Send(ctx context.Context, from, to, body string) error {
	form := url.Values{}
	form.Set("api_key", d.apiKey)
	form.Set("api_secret", d.apiSecret)
	form.Set("from", from)
	form.Set("to", strings.TrimPrefix(to, "+"))
	form.Set("text", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", port.ErrSMSTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: provider returned status %d", port.ErrSMSTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: provider returned status %d", port.ErrSMSPermanent, resp.StatusCode)
	}

	var parsed sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("%w: decode provider response: %v", port.ErrSMSTransient, err)
	}
	if len(parsed.Messages) == 0 {
		return fmt.Errorf("%w: empty provider response", port.ErrSMSTransient)
	}

	msg := parsed.Messages[0]
	return mapStatus(msg.Status, msg.ErrorText)
}

// Vonage status codes: https://developer.vonage.com/messaging/sms/guides/troubleshooting-sms
func mapStatus(status, errorText string) error {
	switch status {
	case "0":
		return nil
	case "1":
		return fmt.Errorf("%w: %s", port.ErrSMSRateLimited, errorText)
	case "4":
		return fmt.Errorf("%w: %s", port.ErrSMSInvalidCredentials, errorText)
	case "3", "6", "7", "29":
		return fmt.Errorf("%w: %s", port.ErrSMSInvalidNumber, errorText)
	case "5":
		return fmt.Errorf("%w: %s", port.ErrSMSTransient, errorText)
	default:
		return fmt.Errorf("%w: status %s: %s", port.ErrSMSPermanent, status, errorText)
	}
}

var _ port.SMSDispatcher = (*VonageDispatcher)(nil)
