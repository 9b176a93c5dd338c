package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the server, read from the environment.
type Config struct {
	// Database
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	DatabaseName     string `envconfig:"DATABASE_NAME"`
	DatabaseUser     string `envconfig:"DATABASE_USER"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD"`
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`

	// Server
	SecretKey          string   `envconfig:"SECRET_KEY" required:"true"`
	Debug              bool     `envconfig:"DEBUG" default:"false"`
	Port               string   `envconfig:"PORT" default:"8000"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`

	// Auth
	JWTTTL            time.Duration `envconfig:"JWT_TTL" default:"24h"`
	JWKSURL           string        `envconfig:"JWKS_URL"`
	PasswordMinLength int           `envconfig:"PASSWORD_MIN_LENGTH" default:"8"`

	// Verification
	VerificationValidity time.Duration `envconfig:"VERIFICATION_VALIDITY" default:"8760h"`

	// Redis
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Email
	MailjetAPIKey    string `envconfig:"MAILJET_API_KEY"`
	MailjetAPISecret string `envconfig:"MAILJET_API_SECRET"`
	MailFromAddress  string `envconfig:"MAIL_FROM_ADDRESS" default:"noreply@smartsquare.example.com"`
	MailFromName     string `envconfig:"MAIL_FROM_NAME" default:"SmartSquare"`

	// Push
	PushEnabled bool `envconfig:"PUSH_ENABLED" default:"false"`

	// Blob storage
	BlobBackend        string `envconfig:"BLOB_BACKEND" default:"cloudinary"`
	CloudinaryCloud    string `envconfig:"CLOUDINARY_CLOUD"`
	CloudinaryKey      string `envconfig:"CLOUDINARY_KEY"`
	CloudinarySecret   string `envconfig:"CLOUDINARY_SECRET"`
	AwsRegion          string `envconfig:"AWS_REGION"`
	AwsAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AwsSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	AwsS3Bucket        string `envconfig:"AWS_S3_BUCKET"`
}

// Load reads the .env file if there is one and then the process environment.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment may already be populated.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("missing required environment variable: SECRET_KEY")
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseName == "" {
		return nil, fmt.Errorf("missing required environment variable: DATABASE_URL or DATABASE_NAME")
	}
	if cfg.PasswordMinLength < 1 {
		return nil, fmt.Errorf("invalid PASSWORD_MIN_LENGTH: %d", cfg.PasswordMinLength)
	}
	return &cfg, nil
}

// DSN returns DATABASE_URL or a key/value DSN assembled from the parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DatabaseHost, c.DatabasePort, c.DatabaseUser, c.DatabasePassword, c.DatabaseName)
}
