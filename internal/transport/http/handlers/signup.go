package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/getly/auth-service/internal/usecase"
)

// SignUpHandler exposes the staged sign-up endpoints.
type SignUpHandler struct {
	signUp *usecase.SignUpService
}

// NewSignUpHandler constructs SignUpHandler.
func NewSignUpHandler(signUp *usecase.SignUpService) *SignUpHandler {
	return &SignUpHandler{signUp: signUp}
}

// SignUpRouteMiddlewares holds optional per-route middleware chains.
type SignUpRouteMiddlewares struct {
	Start     []gin.HandlerFunc
	SendSMS   []gin.HandlerFunc
	VerifySMS []gin.HandlerFunc
}

// RegisterRoutes binds sign-up routes under the provided group, applying
// any configured middleware ahead of each handler.
func (h *SignUpHandler) RegisterRoutes(r *gin.RouterGroup, mw SignUpRouteMiddlewares) {
	register := func(path string, chain []gin.HandlerFunc, handler gin.HandlerFunc) {
		handlers := append([]gin.HandlerFunc{}, chain...)
		handlers = append(handlers, handler)
		r.POST(path, handlers...)
	}

	register("/start", mw.Start, h.start)
	register("/send-sms", mw.SendSMS, h.sendSMS)
	register("/verify-sms", mw.VerifySMS, h.verifySMS)
	register("/complete", nil, h.complete)
}

func (h *SignUpHandler) start(c *gin.Context) {
	var req SignUpStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid_payload", "invalid sign-up payload"))
		return
	}

	var (
		sessionID string
		err       error
	)

	switch req.Method {
	case "password":
		email := strings.TrimSpace(req.Email)
		name := strings.TrimSpace(req.Name)
		if email == "" || name == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid_payload", "email, name and password are required"))
			return
		}
		sessionID, err = h.signUp.StartWithPassword(c.Request.Context(), email, name, req.Password, req.CaptchaToken)
	case "google":
		if req.IDToken == "" {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid_payload", "id_token is required"))
			return
		}
		sessionID, err = h.signUp.StartWithGoogle(c.Request.Context(), req.IDToken)
	default:
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid_payload", "unsupported sign-up method"))
		return
	}

	if err != nil {
		RespondWithMappedError(c, err, signUpErrorCases())
		return
	}

	c.JSON(http.StatusCreated, SignUpStartResponse{SignUpToken: sessionID})
}

func (h *SignUpHandler) sendSMS(c *gin.Context) {
	var req SendSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid_payload", "sign_up_token and phone_num are required"))
		return
	}

	phone := strings.TrimSpace(req.PhoneNumber)
	if err := h.signUp.RequestCode(c.Request.Context(), req.SignUpToken, phone); err != nil {
		RespondWithMappedError(c, err, signUpErrorCases())
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "verification code sent"})
}

func (h *SignUpHandler) verifySMS(c *gin.Context) {
	var req VerifySMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid_payload", "sign_up_token and code are required"))
		return
	}

	if err := h.signUp.VerifyCode(c.Request.Context(), req.SignUpToken, strings.TrimSpace(req.Code)); err != nil {
		RespondWithMappedError(c, err, signUpErrorCases())
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "phone number verified"})
}

func (h *SignUpHandler) complete(c *gin.Context) {
	var req SignUpCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid_payload", "sign_up_token is required"))
		return
	}

	token, user, err := h.signUp.Complete(c.Request.Context(), req.SignUpToken)
	if err != nil {
		RespondWithMappedError(c, err, signUpErrorCases())
		return
	}

	c.JSON(http.StatusCreated, SignInResponse{
		Token: token,
		User:  newUserSummary(*user),
	})
}
