package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/getly/auth-service/internal/core/domain"
	"github.com/getly/auth-service/internal/transport/http/middleware"
	"github.com/getly/auth-service/internal/usecase"
)

// AuthHandler exposes the sign-in endpoints.
type AuthHandler struct {
	signIn *usecase.SignInService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(signIn *usecase.SignInService) *AuthHandler {
	return &AuthHandler{signIn: signIn}
}

// RegisterRoutes binds authentication routes, applying optional middleware
// ahead of the sign-in handler.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, signInMiddlewares ...gin.HandlerFunc) {
	if len(signInMiddlewares) > 0 {
		chain := append([]gin.HandlerFunc{}, signInMiddlewares...)
		chain = append(chain, h.signInHandler)
		r.POST("/sign-in", chain...)
	} else {
		r.POST("/sign-in", h.signInHandler)
	}

	r.GET("/me", middleware.RequireAuth(h.signIn), h.me)
}

func (h *AuthHandler) signInHandler(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid_payload", "invalid sign-in payload"))
		return
	}

	var (
		token string
		user  *domain.User
		err   error
	)

	switch req.Method {
	case "password":
		email := strings.TrimSpace(req.Email)
		if email == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid_payload", "email and password are required"))
			return
		}
		token, user, err = h.signIn.SignInWithPassword(c.Request.Context(), email, req.Password)
	case "google":
		if req.IDToken == "" {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid_payload", "id_token is required"))
			return
		}
		token, user, err = h.signIn.SignInWithGoogle(c.Request.Context(), req.IDToken)
	default:
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid_payload", "unsupported sign-in method"))
		return
	}

	if err != nil {
		RespondWithMappedError(c, err, signInErrorCases())
		return
	}

	c.JSON(http.StatusOK, SignInResponse{
		Token: token,
		User:  newUserSummary(*user),
	})
}

func (h *AuthHandler) me(c *gin.Context) {
	value, exists := c.Get(middleware.AuthenticatedUserKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid_credentials", "not authenticated"))
		return
	}

	user, ok := value.(*domain.User)
	if !ok || user == nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "internal_error", "something went wrong"))
		return
	}

	c.JSON(http.StatusOK, newUserSummary(*user))
}
