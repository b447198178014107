package port

import (
	"context"
	"errors"
)

// SMS dispatch failures, grouped by how the orchestrator should react.
var (
	// ErrSMSInvalidNumber indicates the destination number was rejected by the provider.
	ErrSMSInvalidNumber = errors.New("sms: invalid destination number")
	// ErrSMSInvalidCredentials indicates the provider rejected our API credentials.
	ErrSMSInvalidCredentials = errors.New("sms: invalid API credentials")
	// ErrSMSRateLimited indicates the provider throttled the request.
	ErrSMSRateLimited = errors.New("sms: provider throttled request")
	// ErrSMSTransient indicates a retryable provider or network fault.
	ErrSMSTransient = errors.New("sms: transient provider error")
	// ErrSMSPermanent indicates a non-retryable provider rejection.
	ErrSMSPermanent = errors.New("sms: permanent provider error")
)

// SMSDispatcher delivers a text message through the upstream SMS provider.
type SMSDispatcher interface {
	Send(ctx context.Context, from, to, body string) error
}
