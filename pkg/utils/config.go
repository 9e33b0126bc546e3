package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Mailer    MailerConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name    string
	Port    string
	BaseURL string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type SessionConfig struct {
	ExpiryHours int
}

type MailerConfig struct {
	Provider       string // "ses" or "noop"
	FromName       string
	FromAddress    string
	ReplyTo        string
	SESRegion      string
	SESAccessKeyID string
	SESSecretKey   string
}

type RateLimitConfig struct {
	AuthPerMinute    int
	BookingPerMinute int

	// TrustProxy makes the rate limiter key on the first X-Forwarded-For
	// entry. Enable only when a trusted proxy sets the header.
	TrustProxy bool
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "gastrotour")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24*7)
	viper.SetDefault("MAILER_PROVIDER", "noop")
	viper.SetDefault("SES_REGION", "eu-west-1")
	viper.SetDefault("RATE_LIMIT_AUTH_PER_MINUTE", 10)
	viper.SetDefault("RATE_LIMIT_BOOKING_PER_MINUTE", 20)
	viper.SetDefault("TRUST_PROXY_HEADERS", false)

	if err := viper.ReadInConfig(); err != nil {
		// .env is optional in production, environment variables win anyway
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			viper.Reset()
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			BaseURL: viper.GetString("BASE_URL"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			URL:      viper.GetString("DATABASE_URL"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Session: SessionConfig{
			ExpiryHours: viper.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Mailer: MailerConfig{
			Provider:       viper.GetString("MAILER_PROVIDER"),
			FromName:       viper.GetString("MAILER_FROM_NAME"),
			FromAddress:    viper.GetString("MAILER_FROM_ADDRESS"),
			ReplyTo:        viper.GetString("MAILER_REPLY_TO"),
			SESRegion:      viper.GetString("SES_REGION"),
			SESAccessKeyID: viper.GetString("SES_ACCESS_KEY_ID"),
			SESSecretKey:   viper.GetString("SES_SECRET_ACCESS_KEY"),
		},
		RateLimit: RateLimitConfig{
			AuthPerMinute:    viper.GetInt("RATE_LIMIT_AUTH_PER_MINUTE"),
			BookingPerMinute: viper.GetInt("RATE_LIMIT_BOOKING_PER_MINUTE"),
			TrustProxy:       viper.GetBool("TRUST_PROXY_HEADERS"),
		},
	}

	return config, nil
}
