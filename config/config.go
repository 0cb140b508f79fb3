package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port    string
	LogMode string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTKey        string
	WebhookSecret string

	RedisAddr string

	ExchangeRateAPIURL  string
	ExchangeRateTimeout int // seconds

	SendgridAPIKey  string
	EmailSender     string
	EmailSenderName string

	VideoProcessingDelay int // seconds
	PendingEnrollmentTTL int // hours
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = FromEnv()

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.WebhookSecret == "" {
		log.Println("Warning: WEBHOOK_SECRET is empty. Every payment webhook will be rejected.")
	}
	if AppConfig.SendgridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY is empty. Emails will only be logged.")
	}
}

// FromEnv builds a Config from the current process environment without touching .env files.
func FromEnv() *Config {
	return &Config{
		Port:    getEnv("PORT", "3000"),
		LogMode: getEnv("LOG_MODE", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "cursapp"),
		DBPort:     getEnv("DB_PORT", "5432"),

		JWTKey:        getEnv("JWT_SECRET_KEY", "defaultSecret"),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		ExchangeRateAPIURL:  getEnv("EXCHANGE_RATE_API_URL", "https://api.dolarvzla.com/public/exchange-rate"),
		ExchangeRateTimeout: getEnvInt("EXCHANGE_RATE_TIMEOUT_SECONDS", 5),

		SendgridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "no-reply@cursapp.local"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "CursApp"),

		VideoProcessingDelay: getEnvInt("VIDEO_PROCESSING_DELAY_SECONDS", 30),
		PendingEnrollmentTTL: getEnvInt("PENDING_ENROLLMENT_TTL_HOURS", 48),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
