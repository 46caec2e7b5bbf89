package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Token verification modes
const (
	VerifyModeRemote = "remote"
	VerifyModeJWT    = "jwt"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	Version     string
	Identity    IdentityConfig
	Database    DatabaseConfig
	Server      ServerConfig
	Logging     LoggingConfig
	Cleanup     CleanupConfig
}

// IdentityConfig holds the Supabase identity settings
type IdentityConfig struct {
	SupabaseURL              string
	ServiceRoleKey           string
	JWTSecret                string
	VerifyMode               string
	Timeout                  time.Duration
	PasswordResetRedirectURL string
}

// ServerConfig holds settings of the long-running HTTP server
type ServerConfig struct {
	RateLimitRPS         float64
	RateLimitBurst       int
	AllowedOrigins       []string
	MaxBodyBytes         int64
	SlowRequestThreshold time.Duration
	ShutdownTimeout      time.Duration
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// CleanupConfig holds the retry policy for admin record removal
type CleanupConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Timeout      time.Duration
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("IDENTITY_VERIFY_MODE", VerifyModeRemote)
	v.SetDefault("IDENTITY_TIMEOUT", "10s")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_CONNECTION_STRING", DefaultSQLitePath)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DB_BUSY_TIMEOUT_MS", 5000)
	v.SetDefault("DB_SLOW_QUERY_THRESHOLD", "200ms")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_BODY_BYTES", 1<<20)
	v.SetDefault("SLOW_REQUEST_THRESHOLD", "1s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("CLEANUP_MAX_ATTEMPTS", 3)
	v.SetDefault("CLEANUP_INITIAL_DELAY", "100ms")
	v.SetDefault("CLEANUP_MAX_DELAY", "2s")
	v.SetDefault("CLEANUP_TIMEOUT", "5s")

	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetString("PORT"),
		Version:     v.GetString("APP_VERSION"),
		Identity: IdentityConfig{
			SupabaseURL:              strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
			ServiceRoleKey:           v.GetString("SUPABASE_SERVICE_ROLE_KEY"),
			JWTSecret:                v.GetString("SUPABASE_JWT_SECRET"),
			VerifyMode:               strings.ToLower(v.GetString("IDENTITY_VERIFY_MODE")),
			Timeout:                  v.GetDuration("IDENTITY_TIMEOUT"),
			PasswordResetRedirectURL: v.GetString("PASSWORD_RESET_REDIRECT_URL"),
		},
		Database: DatabaseConfig{
			Driver:             strings.ToLower(v.GetString("DB_DRIVER")),
			ConnectionString:   v.GetString("DB_CONNECTION_STRING"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime:    v.GetDuration("DB_CONN_MAX_LIFETIME"),
			BusyTimeout:        v.GetInt("DB_BUSY_TIMEOUT_MS"),
			SlowQueryThreshold: v.GetDuration("DB_SLOW_QUERY_THRESHOLD"),
			AutoMigrate:        v.GetBool("DB_AUTO_MIGRATE"),
		},
		Server: ServerConfig{
			RateLimitRPS:         v.GetFloat64("RATE_LIMIT_RPS"),
			RateLimitBurst:       v.GetInt("RATE_LIMIT_BURST"),
			AllowedOrigins:       splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			MaxBodyBytes:         v.GetInt64("MAX_BODY_BYTES"),
			SlowRequestThreshold: v.GetDuration("SLOW_REQUEST_THRESHOLD"),
			ShutdownTimeout:      v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
		Cleanup: CleanupConfig{
			MaxAttempts:  v.GetInt("CLEANUP_MAX_ATTEMPTS"),
			InitialDelay: v.GetDuration("CLEANUP_INITIAL_DELAY"),
			MaxDelay:     v.GetDuration("CLEANUP_MAX_DELAY"),
			Timeout:      v.GetDuration("CLEANUP_TIMEOUT"),
		},
	}

	return config, nil
}

// Validate checks the settings every deployment shape that calls the
// identity provider needs
func (c *Config) Validate() error {
	if err := c.Identity.Validate(); err != nil {
		return err
	}
	return c.ValidateRuntime()
}

// ValidateRuntime checks everything except the identity settings, for
// functions that only serve public endpoints
func (c *Config) ValidateRuntime() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.Logging.Format)
	}

	if c.Cleanup.MaxAttempts < 1 {
		return fmt.Errorf("CLEANUP_MAX_ATTEMPTS must be at least 1")
	}

	return nil
}

// Validate validates the identity settings
func (c *IdentityConfig) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if u, err := url.Parse(c.SupabaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SUPABASE_URL %q is not an absolute URL", c.SupabaseURL)
	}
	if c.ServiceRoleKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required")
	}

	switch c.VerifyMode {
	case VerifyModeRemote:
	case VerifyModeJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("SUPABASE_JWT_SECRET is required when IDENTITY_VERIFY_MODE=jwt")
		}
	default:
		return fmt.Errorf("unsupported IDENTITY_VERIFY_MODE %q", c.VerifyMode)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("IDENTITY_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction reports whether the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvAsBool gets an environment variable as boolean with a fallback value
func GetEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
