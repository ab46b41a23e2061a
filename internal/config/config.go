package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string
	LogLevel       string
	LogFormat      string

	JWTSecret string
	JWTTTL    time.Duration

	Database DatabaseConfig
	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryURL          string
	CloudinaryCloudName    string
	CloudinaryUploadFolder string

	Mail MailConfig
	SMS  SMSConfig
	Site SiteConfig

	RateLimitReferral time.Duration
	ClickSyncInterval time.Duration

	// SearchReindexSchedule is a cron spec; empty disables the job.
	SearchReindexSchedule string
}

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

// MailConfig describes the outbound SMTP relay.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

// SMSConfig holds the messaging gateway account.
type SMSConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	APIBaseURL string
}

func (s SMSConfig) Enabled() bool {
	return s.AccountSID != "" && s.AuthToken != ""
}

// SiteConfig is what outgoing messages say about the site.
type SiteConfig struct {
	BaseURL string
	OrgName string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),

		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASS"),
			Name:     getEnv("DB_NAME", "newera"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisURL: os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "newera_resources"),

		Mail: MailConfig{
			Host:     os.Getenv("EMAIL_HOST"),
			Username: os.Getenv("EMAIL_HOST_USER"),
			Password: os.Getenv("EMAIL_HOST_PASSWORD"),
			From:     getEnv("EMAIL_FROM", os.Getenv("EMAIL_HOST_USER")),
		},
		SMS: SMSConfig{
			AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			FromNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
			APIBaseURL: getEnv("TWILIO_API_BASE_URL", "https://api.twilio.com"),
		},
		Site: SiteConfig{
			BaseURL: getEnv("SITE_BASE_URL", "https://newera-app.herokuapp.com"),
			OrgName: getEnv("ORG_NAME", "NewERA412"),
		},
		SearchReindexSchedule: getEnv("SEARCH_REINDEX_SCHEDULE", "0 3 * * *"),
	}

	var err error
	cfg.Mail.Port, err = strconv.Atoi(getEnv("EMAIL_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid EMAIL_PORT: %w", err)
	}
	cfg.Mail.UseTLS, err = strconv.ParseBool(getEnv("EMAIL_USE_TLS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid EMAIL_USE_TLS: %w", err)
	}

	cfg.JWTTTL, err = parseDuration(getEnv("JWT_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.RateLimitReferral, err = parseDuration(getEnv("RATE_LIMIT_REFERRAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFERRAL: %w", err)
	}
	cfg.ClickSyncInterval, err = parseDuration(getEnv("CLICK_SYNC_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLICK_SYNC_INTERVAL: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
