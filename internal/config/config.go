package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Storage drivers.
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr     string `env:"HTTP_ADDR" envDefault:":8080"`
	Env      string `env:"APP_ENV" envDefault:"production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"mongo"`

	// MongoDB
	MongoURI                     string        `env:"MONGO_URI" envDefault:"mongodb://mongo:27017"`
	MongoDatabase                string        `env:"MONGO_DB" envDefault:"book-reviews"`
	ReviewCollection             string        `env:"REVIEW_COLLECTION" envDefault:"reviews"`
	FailedNotificationCollection string        `env:"FAILED_NOTIFICATION_COLLECTION" envDefault:"failed_notifications"`
	Timeout                      time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	AllowedOrigins []string      `env:"API_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	SMTP   SMTPConfig
	Notify NotifyConfig

	Messenger MessengerConfig
}

// SMTPConfig is the outgoing mail server used for review emails.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"465"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM" envDefault:"\"Book Reviews\" <noreply@example.com>"`
}

// NotifyConfig controls who is told about new reviews and how long we wait.
type NotifyConfig struct {
	Recipients []string      `env:"NOTIFY_RECIPIENTS" envSeparator:","`
	Timeout    time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
}

// MessengerConfig points at the messenger gateway and its destinations.
type MessengerConfig struct {
	Endpoint           string        `env:"MESSENGER_GATEWAY_URL"`
	DiscordDestination string        `env:"MESSENGER_DISCORD_DESTINATION"`
	SlackDestination   string        `env:"MESSENGER_SLACK_DESTINATION"`
	Timeout            time.Duration `env:"MESSENGER_GATEWAY_TIMEOUT" envDefault:"3s"`
	ReviewsURL         string        `env:"REVIEWS_PAGE_URL"`
}

// Load reads environment variables and returns a fully populated Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.AllowedOrigins = trimList(cfg.AllowedOrigins, []string{"*"})
	cfg.Notify.Recipients = trimList(cfg.Notify.Recipients, nil)
	cfg.Messenger.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.Messenger.Endpoint), "/")
	cfg.Messenger.DiscordDestination = strings.TrimSpace(cfg.Messenger.DiscordDestination)
	cfg.Messenger.SlackDestination = strings.TrimSpace(cfg.Messenger.SlackDestination)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageMongo:
		if strings.TrimSpace(c.MongoURI) == "" {
			return fmt.Errorf("MONGO_URI is required for storage driver %q", StorageMongo)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want %q or %q)", c.StorageDriver, StorageMongo, StorageMemory)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("invalid SMTP_PORT %d", c.SMTP.Port)
	}
	return nil
}

// Development reports whether APP_ENV selects human-readable output.
func (c Config) Development() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "development")
}

func trimList(values []string, fallback []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
