package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Resolver modes select which identity resolution strategy is wired at startup.
const (
	ResolverModeDatabase = "database"
	ResolverModeRemote   = "remote"
)

// Config aggregates runtime configuration for the gateway.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	SSO      SSOConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SSOConfig defines the signing and identity-resolution surface. All values
// are read once at startup; components receive this struct by injection and
// never consult the environment themselves.
type SSOConfig struct {
	// SessionSecret signs locally issued session tokens.
	SessionSecret string
	// ExternalSecret verifies assertions from the identity provider. Defaults
	// to SessionSecret for deployments that share one key with the IdP.
	ExternalSecret string
	Algorithm      string
	AppName        string
	// LoginURL is the identity provider's login page; redirects append the
	// requesting application's domain.
	LoginURL  string
	AppDomain string
	// VerificationURL is the remote access-verification endpoint, used only
	// in remote resolver mode.
	VerificationURL            string
	VerificationTTLSeconds     int
	VerificationTimeoutSeconds int
	ResolverMode               string
	ResolverCacheTTLSeconds    int
	CookieSecure               bool
	CookieSameSite             string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sessionSecret := getEnv("SSO_SESSION_SECRET", "dev-secret")
	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "sso-gateway"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3002"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", false),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		SSO: SSOConfig{
			SessionSecret:              sessionSecret,
			ExternalSecret:             getEnv("SSO_EXTERNAL_SECRET", sessionSecret),
			Algorithm:                  getEnv("SSO_ALGORITHM", "HS256"),
			AppName:                    getEnv("SSO_APP_NAME", "mirrorfiber"),
			LoginURL:                   getEnv("SSO_LOGIN_URL", "https://jalfry.com/login"),
			AppDomain:                  getEnv("SSO_APP_DOMAIN", "mirrorfiber.com"),
			VerificationURL:            os.Getenv("SSO_VERIFICATION_URL"),
			VerificationTTLSeconds:     getEnvAsInt("SSO_VERIFICATION_TTL_SECONDS", 30),
			VerificationTimeoutSeconds: getEnvAsInt("SSO_VERIFICATION_TIMEOUT_SECONDS", 10),
			ResolverMode:               getEnv("SSO_RESOLVER_MODE", ResolverModeDatabase),
			ResolverCacheTTLSeconds:    getEnvAsInt("SSO_RESOLVER_CACHE_TTL_SECONDS", 0),
			CookieSecure:               getEnvAsBool("SSO_COOKIE_SECURE", true),
			CookieSameSite:             getEnv("SSO_COOKIE_SAMESITE", "None"),
		},
	}

	if cfg.SSO.ResolverMode != ResolverModeDatabase && cfg.SSO.ResolverMode != ResolverModeRemote {
		return nil, fmt.Errorf("invalid SSO_RESOLVER_MODE: %q", cfg.SSO.ResolverMode)
	}
	if cfg.SSO.ResolverMode == ResolverModeRemote && cfg.SSO.VerificationURL == "" {
		return nil, fmt.Errorf("SSO_VERIFICATION_URL required in remote resolver mode")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ExternalLoginURL is the application-qualified IdP login page used for
// auth rejections during the SSO callback.
func (s SSOConfig) ExternalLoginURL() string {
	return fmt.Sprintf("%s/%s", s.LoginURL, s.AppDomain)
}

// VerificationTTL returns the verification token lifetime.
func (s SSOConfig) VerificationTTL() time.Duration {
	return time.Duration(s.VerificationTTLSeconds) * time.Second
}

// VerificationTimeout bounds the outbound call to the verification service.
func (s SSOConfig) VerificationTimeout() time.Duration {
	return time.Duration(s.VerificationTimeoutSeconds) * time.Second
}

// ResolverCacheTTL returns the identity cache TTL; zero disables caching.
func (s SSOConfig) ResolverCacheTTL() time.Duration {
	return time.Duration(s.ResolverCacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
