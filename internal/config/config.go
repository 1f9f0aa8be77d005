package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	CORSOrigins []string

	StorageDriver string
	DataDir       string
	DatabaseURL   string
	RedisURL      string
	RabbitMQURL   string

	TelegramBotToken string
	TelegramChatID   string

	AugustaEndpoint   string
	AugustaReferralID string

	GoogleAds     GoogleAdsConfig
	AdsClickValue float64

	Mail MailConfig

	ExternalTimeout    time.Duration
	LockTTL            time.Duration
	AdminAPIKey        string
	LogLevel           string
	LogFile            string
	RateLimitPerMinute int
}

type GoogleAdsConfig struct {
	DeveloperToken     string
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	CustomerID         string
	LoginCustomerID    string
	ConversionActionID string
}

type MailConfig struct {
	Host       string
	Port       int
	User       string
	Pass       string
	From       string
	OpsAlertTo string
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "" || c.AppEnv == "development"
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error

	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "*")),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageFile)),
		DataDir:       getEnv("DATA_DIR", "./data"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),

		AugustaEndpoint:   getEnv("AUGUSTA_ENDPOINT", ""),
		AugustaReferralID: getEnv("AUGUSTA_REFERRAL_ID", ""),

		GoogleAds: GoogleAdsConfig{
			DeveloperToken:     getEnv("GOOGLE_ADS_DEVELOPER_TOKEN", ""),
			ClientID:           getEnv("GOOGLE_ADS_CLIENT_ID", ""),
			ClientSecret:       getEnv("GOOGLE_ADS_CLIENT_SECRET", ""),
			RefreshToken:       getEnv("GOOGLE_ADS_REFRESH_TOKEN", ""),
			CustomerID:         getEnv("GOOGLE_ADS_CUSTOMER_ID", ""),
			LoginCustomerID:    getEnv("GOOGLE_ADS_LOGIN_CUSTOMER_ID", ""),
			ConversionActionID: getEnv("GOOGLE_ADS_CONVERSION_ACTION_ID", ""),
		},

		Mail: MailConfig{
			Host:       getEnv("MAIL_HOST", ""),
			User:       getEnv("MAIL_USER", ""),
			Pass:       getEnv("MAIL_PASS", ""),
			From:       getEnv("MAIL_FROM", "alerts@localhost"),
			OpsAlertTo: getEnv("OPS_ALERT_EMAIL", ""),
		},

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
	}

	var err error
	if cfg.AdsClickValue, err = getFloat("ADS_CLICK_VALUE", 1); err != nil {
		errs = append(errs, err)
	}
	if cfg.Mail.Port, err = getInt("MAIL_PORT", 587); err != nil {
		errs = append(errs, err)
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 30); err != nil {
		errs = append(errs, err)
	}
	if cfg.ExternalTimeout, err = getDuration("EXTERNAL_TIMEOUT", 15*time.Second); err != nil {
		errs = append(errs, err)
	}
	// A lead lock must outlive the slowest partner call made while holding it.
	if cfg.LockTTL, err = getDuration("LOCK_TTL", 2*cfg.ExternalTimeout+5*time.Second); err != nil {
		errs = append(errs, err)
	} else if cfg.LockTTL <= cfg.ExternalTimeout {
		errs = append(errs, fmt.Errorf("LOCK_TTL (%s) must be longer than EXTERNAL_TIMEOUT (%s)", cfg.LockTTL, cfg.ExternalTimeout))
	}

	switch cfg.StorageDriver {
	case StorageFile:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 15s: %w", key, err)
	}
	return d, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
