// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Admin       AdminConfig
	Payment     PaymentConfig
	Email       EmailConfig
	Site        SiteConfig
	AWS         AWSConfig
	Kafka       KafkaConfig
	Dispatcher  DispatcherConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
	CORSOrigins  []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

// AuthConfig describes the tokens minted by the hosted auth service.
type AuthConfig struct {
	JWTSecret string
	Audience  string
}

type AdminConfig struct {
	// Raw comma separated allowlist, parsed once by services.NewAuthorizationService.
	Emails string
}

type PaymentConfig struct {
	StripeSecretKey      string
	StripeWebhookSecret  string
	StripePublishableKey string
	ShippingRateID       string
	Currency             string
	AllowedCountries     []string
}

type EmailConfig struct {
	APIKey   string
	From     string
	SMTPHost string
	SMTPPort string
	SMTPUser string
}

type SiteConfig struct {
	URL string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
}

type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
}

type DispatcherConfig struct {
	Workers   int
	QueueSize int
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			CORSOrigins:  getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "shophub"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
			Audience:  getEnv("AUTH_JWT_AUDIENCE", "authenticated"),
		},
		Admin: AdminConfig{
			Emails: getEnv("ADMIN_EMAILS", ""),
		},
		Payment: PaymentConfig{
			StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			StripeWebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
			StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
			ShippingRateID:       getEnv("SHIPPING_PRICE_ID", ""),
			Currency:             getEnv("STRIPE_CURRENCY", "usd"),
			AllowedCountries:     getEnvAsList("SHIPPING_COUNTRIES", []string{"US", "GB", "CA", "DE", "FR", "NG"}),
		},
		Email: EmailConfig{
			APIKey:   getEnv("EMAIL_API_KEY", ""),
			From:     getEnv("EMAIL_FROM", "ShopHub <noreply@yourdomain.com>"),
			SMTPHost: getEnv("EMAIL_SMTP_HOST", "smtp.resend.com"),
			SMTPPort: getEnv("EMAIL_SMTP_PORT", "587"),
			SMTPUser: getEnv("EMAIL_SMTP_USER", "resend"),
		},
		Site: SiteConfig{
			URL: strings.TrimRight(getEnv("SITE_URL", "http://localhost:3000"), "/"),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "shophub-product-images"),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
		},
		Kafka: KafkaConfig{
			Brokers:    getEnvAsList("KAFKA_BROKERS", nil),
			OrderTopic: getEnv("KAFKA_ORDER_TOPIC", "order_events"),
		},
		Dispatcher: DispatcherConfig{
			Workers:   getEnvAsInt("DISPATCH_WORKERS", 2),
			QueueSize: getEnvAsInt("DISPATCH_QUEUE_SIZE", 256),
		},
	}

	return config, config.Validate()
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" && c.IsProduction() {
		return fmt.Errorf("AUTH_JWT_SECRET is required in production")
	}

	if c.Payment.StripeSecretKey == "" && c.IsProduction() {
		return fmt.Errorf("STRIPE_SECRET_KEY is required in production")
	}

	if c.Payment.StripeWebhookSecret == "" && c.IsProduction() {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required in production")
	}

	if c.Database.Password == "" && c.IsProduction() {
		return fmt.Errorf("database password is required in production")
	}

	if c.Dispatcher.Workers < 1 {
		return fmt.Errorf("DISPATCH_WORKERS must be at least 1")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
