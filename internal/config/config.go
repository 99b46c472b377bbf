package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL   string
	RunMigrations bool

	// Auth0
	Auth0Domain   string
	Auth0Audience string
	Auth0ClientID string

	// Server
	Port        string
	PublicURL   string // advertised in the OpenAPI servers list
	CORSOrigins []string
	Env         string

	// Public scheduling rate limit (requests per minute per IP)
	PublicRateLimit int
	PublicBurstSize int

	// S3 Storage (receipts)
	S3 S3Config

	// Payments provider webhooks
	Payments PaymentsConfig

	// AMQP notifications
	AMQP AMQPConfig
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Enabled reports whether receipt storage is configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// PaymentsConfig holds the payments provider webhook settings
type PaymentsConfig struct {
	WebhookSecret string
	Currency      string
}

// AMQPConfig holds the notification broker settings; empty URL disables publishing
type AMQPConfig struct {
	URL          string
	ExchangeName string
	QueueName    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RunMigrations:   getEnvBool("RUN_MIGRATIONS", true),
		Auth0Domain:     getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:   getEnv("AUTH0_AUDIENCE", ""),
		Auth0ClientID:   getEnv("AUTH0_CLIENT_ID", ""),
		Port:            getEnv("PORT", "8080"),
		PublicURL:       getEnv("PUBLIC_API_URL", ""),
		CORSOrigins:     strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:             getEnv("ENV", "development"),
		PublicRateLimit: getEnvInt("PUBLIC_RATE_LIMIT", 30),
		PublicBurstSize: getEnvInt("PUBLIC_BURST_SIZE", 5),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
		Payments: PaymentsConfig{
			WebhookSecret: getEnv("PAYMENTS_WEBHOOK_SECRET", ""),
			Currency:      getEnv("PAYMENTS_CURRENCY", "BRL"),
		},
		AMQP: AMQPConfig{
			URL:          getEnv("AMQP_URL", ""),
			ExchangeName: getEnv("AMQP_EXCHANGE", "clinica"),
			QueueName:    getEnv("AMQP_QUEUE", "appointment-notifications"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth0Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}
	if c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required")
	}
	if c.PublicRateLimit <= 0 || c.PublicBurstSize <= 0 {
		return fmt.Errorf("PUBLIC_RATE_LIMIT and PUBLIC_BURST_SIZE must be positive")
	}
	return nil
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
