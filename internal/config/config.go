package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// defaultDatabasePath is the journal location outside of serverless mode
const defaultDatabasePath = "./data/relay.db"

// Config holds all configuration for the application
type Config struct {
	Environment     string
	Port            string
	GinMode         string
	LogLevel        string
	MaxRequestBytes int64
	Journal         JournalConfig
	Webhook         WebhookConfig
	RateLimit       RateLimitConfig
}

// JournalConfig holds delivery journal configuration
type JournalConfig struct {
	Enabled        bool
	DatabasePath   string
	MigrationsPath string
	MaxOpenConns   int
	MaxIdleConns   int
}

// WebhookConfig holds outbound webhook client configuration
type WebhookConfig struct {
	TimeoutSeconds   int
	MaxResponseBytes int64
}

// RateLimitConfig holds request rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Set up Viper
	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUEST_BYTES", 1048576)
	viper.SetDefault("JOURNAL_ENABLED", true)
	viper.SetDefault("DB_PATH", defaultDatabasePath)
	viper.SetDefault("MIGRATIONS_PATH", "./migrations")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 1)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 1)
	viper.SetDefault("WEBHOOK_TIMEOUT_SECONDS", 10)
	viper.SetDefault("WEBHOOK_MAX_RESPONSE_BYTES", 65536)
	viper.SetDefault("RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)

	config := &Config{
		Environment:     viper.GetString("ENVIRONMENT"),
		Port:            viper.GetString("PORT"),
		GinMode:         viper.GetString("GIN_MODE"),
		LogLevel:        viper.GetString("LOG_LEVEL"),
		MaxRequestBytes: viper.GetInt64("MAX_REQUEST_BYTES"),
		Journal: JournalConfig{
			Enabled:        viper.GetBool("JOURNAL_ENABLED"),
			DatabasePath:   viper.GetString("DB_PATH"),
			MigrationsPath: viper.GetString("MIGRATIONS_PATH"),
			MaxOpenConns:   viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:   viper.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Webhook: WebhookConfig{
			TimeoutSeconds:   viper.GetInt("WEBHOOK_TIMEOUT_SECONDS"),
			MaxResponseBytes: viper.GetInt64("WEBHOOK_MAX_RESPONSE_BYTES"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
		},
	}

	return config, nil
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvAsInt gets an environment variable as integer with a fallback value
func GetEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// GetEnvAsBool gets an environment variable as boolean with a fallback value
func GetEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
