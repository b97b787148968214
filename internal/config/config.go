package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Checkout CheckoutConfig
	Logger   LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int
}

// CheckoutConfig holds checkout flow tuning
type CheckoutConfig struct {
	MaxAuthAttempts int // attempt ceiling for MPIN/OTP gates
	MPINLength      int
	OTPLength       int
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Checkout: CheckoutConfig{
			MaxAuthAttempts: getEnvAsInt("CHECKOUT_MAX_AUTH_ATTEMPTS", 3),
			MPINLength:      getEnvAsInt("CHECKOUT_MPIN_LENGTH", 4),
			OTPLength:       getEnvAsInt("CHECKOUT_OTP_LENGTH", 6),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be a valid port, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort == cfg.Server.Port {
		return nil, fmt.Errorf("METRICS_PORT must differ from SERVER_PORT")
	}
	if cfg.Checkout.MaxAuthAttempts <= 0 {
		return nil, fmt.Errorf("CHECKOUT_MAX_AUTH_ATTEMPTS must be positive, got %d", cfg.Checkout.MaxAuthAttempts)
	}
	if cfg.Checkout.MPINLength <= 0 || cfg.Checkout.OTPLength <= 0 {
		return nil, fmt.Errorf("secret lengths must be positive")
	}

	return cfg, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as boolean with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
