package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevTokenEncryptionKey is used when TOKEN_ENCRYPTION_KEY is unset in development.
// Validate refuses to start any other environment with this value.
const DevTokenEncryptionKey = "dev-only-token-encryption-key-change-me"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Branding
	SiteTitle string

	// Database
	DatabaseURL string

	// Redis backs the session store when set; sessions stay in memory otherwise.
	RedisURL string

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	// OIDC login
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Session
	SessionSecret string // Used for signing cookies (min 32 chars)

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Search console OAuth (refresh tokens are stored encrypted)
	GSCClientID     string
	GSCClientSecret string
	GSCRedirectURL  string
	GSCAuthURL      string
	GSCTokenURL     string
	GSCScopes       []string

	// Token cipher passphrase
	TokenEncryptionKey string

	// Analysis engine (crawling, phrase generation, AI queries)
	AnalysisEngineURL     string
	AnalysisEngineToken   string
	AnalysisStreamTimeout time.Duration

	// Jobs
	CredentialCheckInterval time.Duration

	// Email (SMTP)
	SMTPEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // "none", "starttls", "tls"
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present; values
// already in the environment win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Env:              env,
		ServerAddr:       getEnv("SERVER_ADDR", ":3000"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:3000"),
		SiteTitle:        getEnv("SITE_TITLE", "AI Visibility"),
		DatabaseURL:      getEnv("DATABASE_URL", "postgres://localhost:5432/aivisibility?sslmode=disable"),
		RedisURL:         getEnv("REDIS_URL", ""),
		TLSEnabled:       getEnv("TLS_ENABLED", "") != "",
		TLSCertFile:      getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:       getEnv("TLS_KEY_FILE", ""),
		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),
		SessionSecret:    getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		CORSOrigins:      getEnv("CORS_ORIGINS", ""),

		GSCClientID:     getEnv("GSC_CLIENT_ID", ""),
		GSCClientSecret: getEnv("GSC_CLIENT_SECRET", ""),
		GSCRedirectURL:  getEnv("GSC_REDIRECT_URL", "http://localhost:3000/auth/gsc/callback"),
		GSCAuthURL:      getEnv("GSC_AUTH_URL", "https://accounts.google.com/o/oauth2/auth"),
		GSCTokenURL:     getEnv("GSC_TOKEN_URL", "https://oauth2.googleapis.com/token"),
		GSCScopes:       splitList(getEnv("GSC_SCOPES", "https://www.googleapis.com/auth/webmasters.readonly")),

		TokenEncryptionKey: os.Getenv("TOKEN_ENCRYPTION_KEY"),

		AnalysisEngineURL:     strings.TrimRight(getEnv("ANALYSIS_ENGINE_URL", ""), "/"),
		AnalysisEngineToken:   getEnv("ANALYSIS_ENGINE_TOKEN", ""),
		AnalysisStreamTimeout: getEnvDuration("ANALYSIS_STREAM_TIMEOUT", 10*time.Minute),

		CredentialCheckInterval: getEnvDuration("CREDENTIAL_CHECK_INTERVAL", 6*time.Hour),

		SMTPEnabled:  getEnv("SMTP_ENABLED", "") != "",
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "AI Visibility"),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),
	}

	if cfg.TokenEncryptionKey == "" && cfg.IsDev() {
		cfg.TokenEncryptionKey = DevTokenEncryptionKey
	}

	return cfg
}

// Validate reports configuration that must stop the server from starting.
func (c *Config) Validate() error {
	var errs []error

	if c.TokenEncryptionKey == "" {
		errs = append(errs, errors.New("TOKEN_ENCRYPTION_KEY is required"))
	} else if c.TokenEncryptionKey == DevTokenEncryptionKey && !c.IsDev() {
		errs = append(errs, errors.New("TOKEN_ENCRYPTION_KEY must not use the development fallback outside development"))
	}

	if !c.IsDev() && len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters"))
	}

	if c.OIDCIssuer == "" {
		errs = append(errs, errors.New("OIDC_ISSUER is required"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "default", fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "default", fallback)
		return fallback
	}
	return d
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if SMTP is configured well enough to send mail.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPEnabled && c.SMTPHost != "" && c.SMTPFrom != ""
}

// IsGSCEnabled returns true if the search console connect flow is configured.
func (c *Config) IsGSCEnabled() bool {
	return c.GSCClientID != "" && c.GSCClientSecret != ""
}
