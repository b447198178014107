package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/getly/auth-service/internal/core/domain"
	"github.com/getly/auth-service/internal/transport/http/middleware"
)

// ErrorResponse represents a generic error payload with a machine-readable
// code and a trace ID for debugging.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, code, message string) ErrorResponse {
	return ErrorResponse{
		ErrorCode: code,
		Message:   message,
		TraceID:   middleware.GetTraceID(c),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes the view of a user returned by the API.
type UserSummary struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	EmailVerified bool       `json:"email_verified"`
	Name          string     `json:"name"`
	PhoneNumber   string     `json:"phone_num,omitempty"`
	Picture       *string    `json:"picture,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	LastSeenAt    *time.Time `json:"last_seen_at,omitempty"`
}

func newUserSummary(u domain.User) UserSummary {
	return UserSummary{
		ID:            u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Name:          u.Name,
		PhoneNumber:   u.PhoneNumber,
		Picture:       u.Picture,
		CreatedAt:     u.CreatedAt,
		LastSeenAt:    u.LastSeenAt,
	}
}

// SignInRequest defines the payload for the sign-in endpoint. Method selects
// the credential branch: "password" requires email+password, "google" requires
// id_token.
type SignInRequest struct {
	Method   string `json:"method" binding:"required,oneof=password google"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password"`
	IDToken  string `json:"id_token"`
}

// SignInResponse describes a successful authentication result.
type SignInResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// SignUpStartRequest defines the payload that opens a sign-up session.
type SignUpStartRequest struct {
	Method       string `json:"method" binding:"required,oneof=password google"`
	Email        string `json:"email" binding:"omitempty,email"`
	Name         string `json:"name"`
	Password     string `json:"password"`
	CaptchaToken string `json:"captcha_token"`
	IDToken      string `json:"id_token"`
}

// SignUpStartResponse carries the opaque token identifying the new session.
type SignUpStartResponse struct {
	SignUpToken string `json:"sign_up_token"`
}

// SendSMSRequest binds a phone number to a sign-up session and requests a code.
type SendSMSRequest struct {
	SignUpToken string `json:"sign_up_token" binding:"required"`
	PhoneNumber string `json:"phone_num" binding:"required"`
}

// VerifySMSRequest submits a one-time code for verification.
type VerifySMSRequest struct {
	SignUpToken string `json:"sign_up_token" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

// SignUpCompleteRequest finalizes a verified sign-up session.
type SignUpCompleteRequest struct {
	SignUpToken string `json:"sign_up_token" binding:"required"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}
