package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/getly/auth-service/internal/core/port"
	"github.com/getly/auth-service/internal/infra/captcha"
	"github.com/getly/auth-service/internal/infra/config"
	"github.com/getly/auth-service/internal/infra/database"
	"github.com/getly/auth-service/internal/infra/google"
	kafkainfra "github.com/getly/auth-service/internal/infra/kafka"
	"github.com/getly/auth-service/internal/infra/logger"
	"github.com/getly/auth-service/internal/infra/mail"
	redisinfra "github.com/getly/auth-service/internal/infra/redis"
	"github.com/getly/auth-service/internal/infra/security"
	"github.com/getly/auth-service/internal/infra/sms"
	"github.com/getly/auth-service/internal/infra/telemetry"
	postgresrepo "github.com/getly/auth-service/internal/repository/postgres"
	redisrepo "github.com/getly/auth-service/internal/repository/redis"
	"github.com/getly/auth-service/internal/transport/http/middleware"
	"github.com/getly/auth-service/internal/transport/http/routes"
	"github.com/getly/auth-service/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if _, err := telemetry.Attach(ctx, cfg); err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	cleanup := func() {
		_ = redisClient.Close()
		pool.Close()
	}

	hasher, err := security.NewHasher(cfg.Argon2)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("init password hasher: %w", err)
	}

	tokenIssuer, err := security.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TokenTTL)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("init token issuer: %w", err)
	}

	var identityVerifier port.IdentityVerifier
	if cfg.Google.ClientID != "" {
		identityVerifier, err = google.NewVerifier(cfg.Google.ClientID)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("init google verifier: %w", err)
		}
	}

	captchaVerifier := captcha.NewVerifier(cfg.Captcha.Secret, cfg.Captcha.VerifyURL, cfg.Captcha.Enabled)

	smsDispatcher, err := sms.NewVonageDispatcher(cfg.SMS.APIKey, cfg.SMS.APISecret, cfg.SMS.APIURL)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("init sms dispatcher: %w", err)
	}

	mailSender, err := mail.NewResendSender(cfg.Mail.APIKey)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("init mail sender: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	sessionStore := redisrepo.NewSignupSessionRepository(redisClient.Client(), cfg.Redis.SignupSessionPrefix)
	codeStore := redisrepo.NewSMSCodeRepository(redisClient.Client(), cfg.Redis.SMSCodePrefix)
	lockoutStore := redisrepo.NewSignInAttemptsRepository(redisClient.Client(), cfg.Redis.SignInAttemptsPrefix)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: cfg.Redis.RateLimitPrefix,
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	signInService, err := usecase.NewSignInService(cfg, repos.Users, lockoutStore, hasher, tokenIssuer, identityVerifier, eventPublisher)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("init sign-in service: %w", err)
	}

	signUpService, err := usecase.NewSignUpService(cfg, sessionStore, codeStore, repos.Users, hasher, tokenIssuer, identityVerifier, captchaVerifier, smsDispatcher, mailSender, eventPublisher)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("init sign-up service: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			SignIn: signInService,
			SignUp: signUpService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting auth API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
