// Package config handles application configuration loading from environment
// variables, optionally pre-populated from a .env file. It provides a
// centralized Config struct used by the server and the import tool.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Blog tenant and presentation
	ProjectSlug    string
	AuthorName     string
	SiteDomain     string
	MediaPublicURL string

	// Email validation service
	SpamidateAPIKey  string
	SpamidateBaseURL string

	// Email sending service
	EmailAPIKey     string
	EmailAPIBaseURL string
	ContactTo       string
	MailFrom        string
	MailFromName    string

	// Contact form requests allowed per client IP per minute.
	ContactRateLimit int

	// S3-compatible object storage for blog media
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Variables from the file named by
// ENV_FILE (default ".env") are loaded first if it exists; real environment
// variables take precedence. Returns an error if critical values are
// missing in production mode.
func Load() (*Config, error) {
	if err := loadDotEnv(envOrDefault("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	rateLimit, err := strconv.Atoi(envOrDefault("CONTACT_RATE_LIMIT", "5"))
	if err != nil || rateLimit < 1 {
		return nil, fmt.Errorf("CONTACT_RATE_LIMIT must be a positive integer")
	}

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "labsite"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "labsite"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		ProjectSlug:    envOrDefault("BLOG_PROJECT_SLUG", "tflabs"),
		AuthorName:     envOrDefault("BLOG_AUTHOR_NAME", "TechFlunky Labs"),
		SiteDomain:     envOrDefault("SITE_DOMAIN", "techflunkylabs.com"),
		MediaPublicURL: envOrDefault("MEDIA_PUBLIC_URL", "https://media.techflunkylabs.com"),

		SpamidateAPIKey:  os.Getenv("SPAMIDATE_API_KEY"),
		SpamidateBaseURL: envOrDefault("SPAMIDATE_BASE_URL", "https://api.spamidate.com"),

		EmailAPIKey:     os.Getenv("EMAIL_API_KEY"),
		EmailAPIBaseURL: envOrDefault("EMAIL_API_BASE_URL", "https://mail-api.techflunky.com"),
		ContactTo:       envOrDefault("CONTACT_TO", "hello@techflunkylabs.com"),
		MailFrom:        envOrDefault("MAIL_FROM", "noreply@techflunkylabs.com"),
		MailFromName:    envOrDefault("MAIL_FROM_NAME", "TechFlunky Labs"),

		ContactRateLimit: rateLimit,

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "auto"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "techflunkylabs-media"),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// loadDotEnv loads variables from path without overriding ones already
// set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
