package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/getly/auth-service/internal/infra/config"
	"github.com/getly/auth-service/internal/transport/http/handlers"
	"github.com/getly/auth-service/internal/transport/http/middleware"
	"github.com/getly/auth-service/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	SignIn *usecase.SignInService
	SignUp *usecase.SignUpService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	checks := make([]handlers.ReadinessCheck, 0, 2)
	if deps.Database != nil {
		checks = append(checks, handlers.ReadinessCheck{Name: "postgres", Probe: deps.Database.Ping})
	}
	if deps.Cache != nil {
		checks = append(checks, handlers.ReadinessCheck{Name: "redis", Probe: deps.Cache.HealthCheck})
	}

	healthHandler := handlers.NewHealthHandler(checks...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := r.Group("/auth")

	authHandler := handlers.NewAuthHandler(deps.Services.SignIn)
	authHandler.RegisterRoutes(authGroup, rateLimitChain(deps, "auth_sign_in_ip", deps.Config.RateLimit.SignInMaxAttempts)...)

	signUpGroup := authGroup.Group("/sign-up")

	signUpHandler := handlers.NewSignUpHandler(deps.Services.SignUp)
	signUpHandler.RegisterRoutes(signUpGroup, handlers.SignUpRouteMiddlewares{
		Start:     rateLimitChain(deps, "auth_sign_up_ip", deps.Config.RateLimit.SignUpMaxAttempts),
		SendSMS:   rateLimitChain(deps, "auth_send_sms_ip", deps.Config.RateLimit.SendSMSMaxAttempts),
		VerifySMS: rateLimitChain(deps, "auth_verify_sms_ip", deps.Config.RateLimit.VerifySMSMaxAttempts),
	})

	return r
}

func rateLimitChain(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
