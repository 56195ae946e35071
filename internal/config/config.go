package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-menu-auth/internal/pkg/validate"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string `env:"APP_PORT" envDefault:"3000"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StorageDriver  string `env:"STORAGE_DRIVER" envDefault:"dynamo" validate:"oneof=dynamo sqlite"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"menu.db"`
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"store" validate:"oneof=store redis"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`

	AWSRegion      string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSEndpointURL string `env:"AWS_ENDPOINT_URL"` // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`

	DynamoTables DynamoTables `envPrefix:"DYNAMO_TABLE_"`

	Notifier     string `env:"NOTIFIER" envDefault:"smtp" validate:"oneof=smtp sns log"`
	SMTPHost     string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"1025"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"Menu Management <onboarding@example.com>"`
	SNSRegion    string `env:"SNS_REGION" envDefault:"us-east-1"`
	SNSTopicARN  string `env:"SNS_TOPIC_ARN" validate:"required_if=Notifier sns"`

	VerificationCodeTTL time.Duration `env:"VERIFICATION_CODE_TTL" envDefault:"10m" validate:"gt=0"`
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"720h" validate:"gt=0"`
	NotifyTimeout       time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s" validate:"gt=0"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","` // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users             string `env:"USERS" envDefault:"users"`
	Sessions          string `env:"SESSIONS" envDefault:"sessions"`
	VerificationCodes string `env:"VERIFICATION_CODES" envDefault:"verification_codes"`
}

// Load reads all configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Production reports whether the app runs with APP_ENV=production.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}
