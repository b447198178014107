package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/getly/auth-service/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status and a stable error code.
type ErrorCase struct {
	Err     error
	Status  int
	Code    string
	Message string
}

// RespondWithMappedError resolves the provided error against known cases or
// falls back to a generic internal_error response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Code, cs.Message))
			return
		}
	}

	c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "internal_error", "something went wrong"))
}

func signInErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Code: "invalid_credentials", Message: "email or password is incorrect"},
		{Err: usecase.ErrAccountLocked, Status: http.StatusTooManyRequests, Code: "too_many_attempts", Message: "too many failed attempts, try again later"},
		{Err: usecase.ErrGoogleTokenInvalid, Status: http.StatusUnauthorized, Code: "invalid_credentials", Message: "google token could not be verified"},
		{Err: usecase.ErrEmailNotVerified, Status: http.StatusForbidden, Code: "need_to_verify_email", Message: "verify the email on this google account first"},
		{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Code: "user_not_found", Message: "no account matches this identity"},
	}
}

func signUpErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrCaptchaFailed, Status: http.StatusBadRequest, Code: "captcha_verification_failed", Message: "captcha verification failed"},
		{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Code: "email_already_exists", Message: "an account with this email already exists"},
		{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Code: "weak_password", Message: "password does not meet strength requirements"},
		{Err: usecase.ErrGoogleTokenInvalid, Status: http.StatusUnauthorized, Code: "invalid_credentials", Message: "google token could not be verified"},
		{Err: usecase.ErrEmailNotVerified, Status: http.StatusForbidden, Code: "need_to_verify_email", Message: "verify the email on this google account first"},
		{Err: usecase.ErrSessionNotFound, Status: http.StatusNotFound, Code: "session_not_found", Message: "sign-up session expired or does not exist"},
		{Err: usecase.ErrResendCooldown, Status: http.StatusTooManyRequests, Code: "need_to_wait_before_resend", Message: "a code was sent recently, wait before retrying"},
		{Err: usecase.ErrPhoneMismatch, Status: http.StatusBadRequest, Code: "phone_num_not_matching", Message: "phone number does not match this session"},
		{Err: usecase.ErrPhoneAlreadyVerified, Status: http.StatusConflict, Code: "sms_already_verified", Message: "phone number already verified"},
		{Err: usecase.ErrInvalidPhoneNumber, Status: http.StatusBadRequest, Code: "invalid_number", Message: "phone number rejected by the carrier"},
		{Err: usecase.ErrSMSDeliveryFailed, Status: http.StatusBadGateway, Code: "sms_delivery_failed", Message: "could not deliver the verification code"},
		{Err: usecase.ErrCodeExpired, Status: http.StatusGone, Code: "need_to_resend_code", Message: "code expired, request a new one"},
		{Err: usecase.ErrCodeWrong, Status: http.StatusBadRequest, Code: "wrong_code", Message: "wrong code"},
		{Err: usecase.ErrTooManyCodeAttempts, Status: http.StatusTooManyRequests, Code: "too_many_attempts", Message: "too many wrong codes, request a new one"},
		{Err: usecase.ErrPhoneNotVerified, Status: http.StatusPreconditionFailed, Code: "code_not_verified", Message: "verify the phone number before completing"},
	}
}
