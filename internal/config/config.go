package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Auth      AuthConfig
	Ledger    LedgerConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Host         string
	Addr         string // Combined host:port for convenience
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database-specific configuration.
// Driver is either "sqlite" (Path is used) or "postgres" (DSN is used).
type DatabaseConfig struct {
	Driver         string
	Path           string
	DSN            string
	MigrateOnStart bool
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig holds the hosted auth provider settings and the admin credentials.
type AuthConfig struct {
	ProviderURL     string
	ProviderAnonKey string
	AdminPassword   string
	AdminToken      string
	SessionKey      string
	SessionTTL      time.Duration
	CookieName      string
	SecureCookie    bool
}

// LedgerConfig holds the PnL attribution settings.
type LedgerConfig struct {
	// WeekStartSchedule is a cron expression (optionally prefixed with CRON_TZ=)
	// whose most recent activation is the week-to-date anchor.
	WeekStartSchedule string
	// FundWideRead grants investor callers read access to fund-wide principal totals.
	FundWideRead bool
	DayAgoWindow time.Duration
}

// RateLimitConfig holds per-client request rates for sensitive endpoints.
type RateLimitConfig struct {
	LoginRPS    float64
	LoginBurst  int
	SubmitRPS   float64
	SubmitBurst int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "5001"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Driver:         getEnv("DB_DRIVER", "sqlite"),
			Path:           getEnv("DB_PATH", "./data/fund_ledger.db"),
			DSN:            getEnv("DATABASE_URL", ""),
			MigrateOnStart: getEnvAsBool("DB_MIGRATE_ON_START", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Auth: AuthConfig{
			ProviderURL:     strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
			ProviderAnonKey: getEnv("SUPABASE_ANON_KEY", ""),
			AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
			AdminToken:      getEnv("ADMIN_TOKEN", ""),
			SessionKey:      getEnv("ADMIN_SESSION_KEY", ""),
			SessionTTL:      getEnvAsDuration("ADMIN_SESSION_TTL", 12*time.Hour),
			CookieName:      getEnv("ADMIN_COOKIE_NAME", "mf_admin"),
			SecureCookie:    getEnvAsBool("ADMIN_COOKIE_SECURE", true),
		},
		Ledger: LedgerConfig{
			WeekStartSchedule: getEnv("LEDGER_WEEK_START", "CRON_TZ=Asia/Taipei 0 0 * * 0"),
			FundWideRead:      getEnvAsBool("LEDGER_FUND_WIDE_READ", true),
			DayAgoWindow:      getEnvAsDuration("LEDGER_DAY_AGO_WINDOW", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			LoginRPS:    getEnvAsFloat("RATE_LIMIT_LOGIN_RPS", 0.2),
			LoginBurst:  getEnvAsInt("RATE_LIMIT_LOGIN_BURST", 5),
			SubmitRPS:   getEnvAsFloat("RATE_LIMIT_SUBMIT_RPS", 1),
			SubmitBurst: getEnvAsInt("RATE_LIMIT_SUBMIT_BURST", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks settings that would otherwise only fail on first use.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}

	if _, err := cron.ParseStandard(c.Ledger.WeekStartSchedule); err != nil {
		errs = append(errs, fmt.Errorf("invalid LEDGER_WEEK_START: %w", err))
	}

	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("ADMIN_SESSION_TTL must be positive"))
	}

	if c.Ledger.DayAgoWindow <= 0 {
		errs = append(errs, errors.New("LEDGER_DAY_AGO_WINDOW must be positive"))
	}

	return errors.Join(errs...)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
