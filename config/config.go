package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	RedisURL string

	KafkaBrokers      string
	PaymentEventTopic string

	ProviderBaseURL string
	ProviderAPIKey  string
	WebhookSecret   string
	CallbackURL     string // public URL providers post webhooks to

	JWTSecret   string
	FrontendURL string

	FixedFee      int64   // smallest currency unit
	PercentageFee float64 // e.g. 0.015 for 1.5%

	PaymentExpiryWindow time.Duration
	ExpirySweepInterval time.Duration
	OperatorCacheTTL    time.Duration
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8087"),
		Env:                 getEnv("ENV", "development"),
		PostgresUser:        os.Getenv("POSTGRES_USER"),
		PostgresPassword:    os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:          os.Getenv("POSTGRES_DB"),
		PostgresHost:        os.Getenv("POSTGRES_HOST"),
		PostgresPort:        getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:     getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone:    getEnv("POSTGRES_TIMEZONE", "UTC"),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		KafkaBrokers:        getEnv("KAFKA_BROKERS", "localhost:9092"),
		PaymentEventTopic:   getEnv("PAYMENT_EVENT_TOPIC", "payment-events"),
		ProviderBaseURL:     getEnv("PROVIDER_BASE_URL", "https://api.yellowcard.io"),
		ProviderAPIKey:      os.Getenv("PROVIDER_API_KEY"),
		WebhookSecret:       os.Getenv("WEBHOOK_SECRET"),
		CallbackURL:         getEnv("WEBHOOK_CALLBACK_URL", "http://localhost:8087/api/mobile-money/webhook"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
		FixedFee:            getEnvInt64("FIXED_FEE", 100),
		PercentageFee:       getEnvFloat("PERCENTAGE_FEE", 0.015),
		PaymentExpiryWindow: getEnvMinutes("PAYMENT_EXPIRY_MINUTES", 30),
		ExpirySweepInterval: getEnvMinutes("EXPIRY_SWEEP_MINUTES", 5),
		OperatorCacheTTL:    getEnvMinutes("OPERATOR_CACHE_TTL_MINUTES", 60),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" ||
		cfg.ProviderAPIKey == "" || cfg.WebhookSecret == "" || cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required environment variables")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvMinutes(key string, fallbackMinutes int64) time.Duration {
	return time.Duration(getEnvInt64(key, fallbackMinutes)) * time.Minute
}
