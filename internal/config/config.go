package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type ServerConfig struct {
	Host        string `yaml:"host" env:"SERVER_HOST"`
	Port        int    `yaml:"port" env:"SERVER_PORT"`
	Env         string `yaml:"env" env:"SERVER_ENV"`
	BaseURL     string `yaml:"base_url" env:"APP_BASE_URL"`
	CORSOrigins string `yaml:"cors_origins" env:"CORS_ORIGINS"` // comma separated
}

type DatabaseConfig struct {
	DSN           string `yaml:"url" env:"DATABASE_URL"`
	Driver        string `yaml:"driver" env:"DATABASE_DRIVER"` // postgres | sqlite
	AutoMigrate   bool   `yaml:"auto_migrate" env:"DATABASE_AUTO_MIGRATE"`
	SQLMigrations bool   `yaml:"sql_migrations" env:"DATABASE_SQL_MIGRATIONS"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret" env:"JWT_SECRET"`
	TTLMinutes int    `yaml:"ttl_minutes" env:"JWT_TTL_MINUTES"`
}

type CronConfig struct {
	Secret   string `yaml:"secret" env:"CRON_SECRET"`
	Schedule string `yaml:"schedule" env:"CRON_SCHEDULE"` // robfig/cron spec, empty disables
}

type StripeConfig struct {
	SecretKey         string `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	WebhookSecret     string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	MembershipPriceID string `yaml:"membership_price_id" env:"STRIPE_MEMBERSHIP_PRICE_ID"`
	FeaturedPriceID   string `yaml:"featured_price_id" env:"STRIPE_FEATURED_PRICE_ID"`
	Currency          string `yaml:"currency" env:"STRIPE_CURRENCY"`
	MembershipAmount  int64  `yaml:"membership_amount" env:"STRIPE_MEMBERSHIP_AMOUNT"` // minor units, used without a price id
	FeaturedAmount    int64  `yaml:"featured_amount" env:"STRIPE_FEATURED_AMOUNT"`
}

type PayPalConfig struct {
	ClientID         string `yaml:"client_id" env:"PAYPAL_CLIENT_ID"`
	Secret           string `yaml:"secret" env:"PAYPAL_SECRET"`
	WebhookID        string `yaml:"webhook_id" env:"PAYPAL_WEBHOOK_ID"`
	Sandbox          bool   `yaml:"sandbox" env:"PAYPAL_SANDBOX"`
	Currency         string `yaml:"currency" env:"PAYPAL_CURRENCY"`
	MembershipAmount string `yaml:"membership_amount" env:"PAYPAL_MEMBERSHIP_AMOUNT"`
	FeaturedAmount   string `yaml:"featured_amount" env:"PAYPAL_FEATURED_AMOUNT"`
}

type EmailConfig struct {
	SMTPHost          string  `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort          int     `yaml:"smtp_port" env:"SMTP_PORT"`
	SMTPUsername      string  `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPassword      string  `yaml:"smtp_password" env:"SMTP_PASSWORD"`
	FromEmail         string  `yaml:"from_email" env:"EMAIL_FROM"`
	FromName          string  `yaml:"from_name" env:"EMAIL_FROM_NAME"`
	SendRatePerSecond float64 `yaml:"send_rate_per_second" env:"EMAIL_SEND_RATE"`
}

type StorageConfig struct {
	Type     string `yaml:"type" env:"STORAGE_TYPE"` // local | cloudinary
	BasePath string `yaml:"base_path" env:"STORAGE_BASE_PATH"`
	BaseURL  string `yaml:"base_url" env:"STORAGE_BASE_URL"`
}

type CloudinaryConfig struct {
	CloudName string `yaml:"cloud_name" env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `yaml:"api_key" env:"CLOUDINARY_API_KEY"`
	APISecret string `yaml:"api_secret" env:"CLOUDINARY_API_SECRET"`
	Folder    string `yaml:"folder" env:"CLOUDINARY_FOLDER"`
}

type GoogleConfig struct {
	MapsAPIKey string `yaml:"maps_api_key" env:"GOOGLE_MAPS_API_KEY"`
}

type SentryConfig struct {
	DSN              string  `yaml:"dsn" env:"SENTRY_DSN"`
	TracesSampleRate float64 `yaml:"traces_sample_rate" env:"SENTRY_TRACES_SAMPLE_RATE"`
}

type RedisConfig struct {
	Addr                 string `yaml:"addr" env:"REDIS_ADDR"`
	Password             string `yaml:"password" env:"REDIS_PASSWORD"`
	DB                   int    `yaml:"db" env:"REDIS_DB"`
	SuggestionTTLSeconds int    `yaml:"suggestion_ttl_seconds" env:"SUGGESTION_CACHE_TTL"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"`
	Burst             int     `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

type LoggingConfig struct {
	File string `yaml:"file" env:"LOG_FILE"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Cron       CronConfig       `yaml:"cron"`
	Stripe     StripeConfig     `yaml:"stripe"`
	PayPal     PayPalConfig     `yaml:"paypal"`
	Email      EmailConfig      `yaml:"email"`
	Storage    StorageConfig    `yaml:"storage"`
	Cloudinary CloudinaryConfig `yaml:"cloudinary"`
	Google     GoogleConfig     `yaml:"google"`
	Sentry     SentryConfig     `yaml:"sentry"`
	Redis      RedisConfig      `yaml:"redis"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Logging    LoggingConfig    `yaml:"logging"`

	FirstAdminEmail    string `yaml:"first_admin_email" env:"FIRST_ADMIN_EMAIL"`
	FirstAdminPassword string `yaml:"first_admin_password" env:"FIRST_ADMIN_PASSWORD"`
}

const devJWTSecret = "development-only-secret"

// Load reads .env (optional), then the YAML file at path (optional when the
// environment provides DATABASE_URL), then overlays environment variables.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config/config.yaml"
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && os.Getenv("DATABASE_URL") != "":
		// env-only deployment
	default:
		return nil, fmt.Errorf("failed to open config file at %s: %w", path, err)
	}

	if err := envdecode.Decode(cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = devJWTSecret
	}
	return cfg, nil
}

// Default returns the configuration used when nothing overrides a field.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    4000,
			Env:     "development",
			BaseURL: "http://localhost:3000",
		},
		Database: DatabaseConfig{
			Driver:      "postgres",
			AutoMigrate: true,
		},
		JWT: JWTConfig{TTLMinutes: 60 * 24 * 7},
		Stripe: StripeConfig{
			Currency:         "gbp",
			MembershipAmount: 2500,
			FeaturedAmount:   1000,
		},
		PayPal: PayPalConfig{
			Sandbox:          true,
			Currency:         "GBP",
			MembershipAmount: "25.00",
			FeaturedAmount:   "10.00",
		},
		Email: EmailConfig{
			SMTPPort:          587,
			FromName:          "Voiceover Studio Finder",
			SendRatePerSecond: 5,
		},
		Storage: StorageConfig{
			Type:     "local",
			BasePath: "./uploads",
			BaseURL:  "/uploads",
		},
		Cloudinary: CloudinaryConfig{Folder: "studios"},
		Redis:      RedisConfig{SuggestionTTLSeconds: 300},
		RateLimit:  RateLimitConfig{RequestsPerSecond: 2, Burst: 10},
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.DSN == "" {
		return errors.New("database url is required")
	}
	if c.JWT.Secret == "" && !c.IsDevelopment() {
		return errors.New("jwt secret is required outside development")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "test"
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWT.TTLMinutes) * time.Minute
}

func (c *Config) SuggestionTTL() time.Duration {
	return time.Duration(c.Redis.SuggestionTTLSeconds) * time.Second
}

// AllowedOrigins splits the comma separated CORS origin list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
