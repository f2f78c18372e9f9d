package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Gateways  GatewayConfig
	Scheduler SchedulerConfig
	Receipts  ReceiptConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type GatewayConfig struct {
	CardServerKey       string
	CardProduction      bool
	CardFeeRate         float64
	CardFeeFixed        float64
	WalletBaseURL       string
	WalletClientId      string
	WalletSecret        string
	WalletWebhookSecret string
	ManualEnabled       bool
}

type SchedulerConfig struct {
	BillingInterval   time.Duration
	ReminderInterval  time.Duration
	RecomputeInterval time.Duration
	EventRetention    time.Duration
	ClaimExpiry       time.Duration
	BatchSize         int
}

type ReceiptConfig struct {
	OrganizationName string
	TaxId            string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "GiveHub"),
		},
		Gateways: GatewayConfig{
			CardServerKey:       getEnv("CARD_SERVER_KEY", ""),
			CardProduction:      getEnvAsBool("CARD_PRODUCTION", false),
			CardFeeRate:         getEnvAsFloat("CARD_FEE_RATE", 0.029),
			CardFeeFixed:        getEnvAsFloat("CARD_FEE_FIXED", 0.30),
			WalletBaseURL:       getEnv("WALLET_BASE_URL", "https://api.sandbox.wallet.example.com"),
			WalletClientId:      getEnv("WALLET_CLIENT_ID", ""),
			WalletSecret:        getEnv("WALLET_SECRET", ""),
			WalletWebhookSecret: getEnv("WALLET_WEBHOOK_SECRET", ""),
			ManualEnabled:       getEnvAsBool("MANUAL_GATEWAY_ENABLED", true),
		},
		Scheduler: SchedulerConfig{
			BillingInterval:   getEnvAsDuration("SCHEDULER_BILLING_INTERVAL", 5*time.Minute),
			ReminderInterval:  getEnvAsDuration("SCHEDULER_REMINDER_INTERVAL", time.Hour),
			RecomputeInterval: getEnvAsDuration("AGGREGATE_RECOMPUTE_INTERVAL", 6*time.Hour),
			EventRetention:    getEnvAsDuration("GATEWAY_EVENT_RETENTION", 90*24*time.Hour),
			ClaimExpiry:       getEnvAsDuration("SCHEDULER_CLAIM_EXPIRY", 10*time.Minute),
			BatchSize:         getEnvAsInt("SCHEDULER_BATCH_SIZE", 100),
		},
		Receipts: ReceiptConfig{
			OrganizationName: getEnv("RECEIPT_ORG_NAME", "GiveHub Foundation"),
			TaxId:            getEnv("RECEIPT_TAX_ID", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
