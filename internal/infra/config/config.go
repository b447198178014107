package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	JWT       JWTSettings       `mapstructure:"jwt"`
	Auth      AuthSettings      `mapstructure:"auth"`
	Google    GoogleSettings    `mapstructure:"google"`
	Captcha   CaptchaSettings   `mapstructure:"captcha"`
	SMS       SMSSettings       `mapstructure:"sms"`
	Mail      MailSettings      `mapstructure:"mail"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Argon2    Argon2Settings    `mapstructure:"argon2"`
}

type AppSettings struct {
	Name           string   `mapstructure:"name"`
	Env            string   `mapstructure:"env"`
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection and key namespaces
type RedisSettings struct {
	Host                 string `mapstructure:"host"`
	Port                 int    `mapstructure:"port"`
	DB                   int    `mapstructure:"db"`
	Password             string `mapstructure:"password"`
	TLSEnabled           bool   `mapstructure:"tls_enabled"`
	SignupSessionPrefix  string `mapstructure:"signup_session_prefix"`
	SMSCodePrefix        string `mapstructure:"sms_code_prefix"`
	SignInAttemptsPrefix string `mapstructure:"sign_in_attempts_prefix"`
	RateLimitPrefix      string `mapstructure:"rate_limit_prefix"`
}

// KafkaSettings configures the Kafka producer
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

type JWTSettings struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// AuthSettings configures lockout, sign-up session, and one-time-code behavior
type AuthSettings struct {
	MaxSignInAttempts  int           `mapstructure:"max_sign_in_attempts"`
	LockWindow         time.Duration `mapstructure:"lock_window"`
	SignupSessionTTL   time.Duration `mapstructure:"signup_session_ttl"`
	SMSCodeTTL         time.Duration `mapstructure:"sms_code_ttl"`
	SMSResendCooldown  time.Duration `mapstructure:"sms_resend_cooldown"`
	MaxSMSCodeAttempts int           `mapstructure:"max_sms_code_attempts"`
	MinPasswordScore   int           `mapstructure:"min_password_score"`
}

type GoogleSettings struct {
	ClientID string `mapstructure:"client_id"`
}

type CaptchaSettings struct {
	Secret    string `mapstructure:"secret"`
	VerifyURL string `mapstructure:"verify_url"`
	Enabled   bool   `mapstructure:"enabled"`
}

// SMSSettings configures the Vonage SMS dispatcher
type SMSSettings struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	From      string `mapstructure:"from"`
	APIURL    string `mapstructure:"api_url"`
}

// MailSettings configures the Resend transactional mail sender
type MailSettings struct {
	APIKey string `mapstructure:"api_key"`
	From   string `mapstructure:"from"`
}

// RateLimitSettings configures per-IP sliding windows per endpoint
type RateLimitSettings struct {
	WindowDuration       time.Duration `mapstructure:"window_duration"`
	SignInMaxAttempts    int           `mapstructure:"sign_in_max_attempts"`
	SignUpMaxAttempts    int           `mapstructure:"sign_up_max_attempts"`
	SendSMSMaxAttempts   int           `mapstructure:"send_sms_max_attempts"`
	VerifySMSMaxAttempts int           `mapstructure:"verify_sms_max_attempts"`
}

// Argon2Settings configures Argon2id password hashing parameters
type Argon2Settings struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("GETLY")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.allowed_origins",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.signup_session_prefix",
		"redis.sms_code_prefix",
		"redis.sign_in_attempts_prefix",
		"redis.rate_limit_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"jwt.secret",
		"jwt.token_ttl",
		"auth.max_sign_in_attempts",
		"auth.lock_window",
		"auth.signup_session_ttl",
		"auth.sms_code_ttl",
		"auth.sms_resend_cooldown",
		"auth.max_sms_code_attempts",
		"auth.min_password_score",
		"google.client_id",
		"captcha.secret",
		"captcha.verify_url",
		"captcha.enabled",
		"sms.api_key",
		"sms.api_secret",
		"sms.from",
		"sms.api_url",
		"mail.api_key",
		"mail.from",
		"rate_limit.window_duration",
		"rate_limit.sign_in_max_attempts",
		"rate_limit.sign_up_max_attempts",
		"rate_limit.send_sms_max_attempts",
		"rate_limit.verify_sms_max_attempts",
		"argon2.memory",
		"argon2.iterations",
		"argon2.parallelism",
		"argon2.salt_length",
		"argon2.key_length",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "auth-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.allowed_origins", []string{"*"})

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "getly")
	v.SetDefault("postgres.password", "getly_password")
	v.SetDefault("postgres.database", "getly")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.signup_session_prefix", "sign_up_session")
	v.SetDefault("redis.sms_code_prefix", "sms_code")
	v.SetDefault("redis.sign_in_attempts_prefix", "sign_in_attempts")
	v.SetDefault("redis.rate_limit_prefix", "rate_limit")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic_prefix", "auth")
	v.SetDefault("kafka.async", true)

	v.SetDefault("jwt.token_ttl", "720h")

	v.SetDefault("auth.max_sign_in_attempts", 10)
	v.SetDefault("auth.lock_window", "5m")
	v.SetDefault("auth.signup_session_ttl", "15m")
	v.SetDefault("auth.sms_code_ttl", "5m")
	v.SetDefault("auth.sms_resend_cooldown", "3m")
	v.SetDefault("auth.max_sms_code_attempts", 5)
	v.SetDefault("auth.min_password_score", 2)

	v.SetDefault("captcha.verify_url", "https://www.google.com/recaptcha/api/siteverify")
	v.SetDefault("captcha.enabled", true)

	v.SetDefault("sms.api_url", "https://rest.nexmo.com/sms/json")
	v.SetDefault("sms.from", "Getly")

	v.SetDefault("mail.from", "Getly <no-reply@getly.app>")

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.sign_in_max_attempts", 10)
	v.SetDefault("rate_limit.sign_up_max_attempts", 5)
	v.SetDefault("rate_limit.send_sms_max_attempts", 3)
	v.SetDefault("rate_limit.verify_sms_max_attempts", 10)

	v.SetDefault("argon2.memory", 65536) // 64 MB
	v.SetDefault("argon2.iterations", 3)
	v.SetDefault("argon2.parallelism", 4)
	v.SetDefault("argon2.salt_length", 16)
	v.SetDefault("argon2.key_length", 32)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "GETLY_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
