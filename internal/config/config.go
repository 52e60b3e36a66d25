package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	Port                  string
	DBConn                string
	LogLevel              string
	JWTSecret             string
	RatesURL              string
	SMTPHost              string
	SMTPPort              string
	SMTPUsername          string
	SMTPPassword          string
	SenderEmail           string
	ReminderLookaheadDays int
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	lookahead, err := strconv.Atoi(getEnv("REMINDER_LOOKAHEAD_DAYS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_LOOKAHEAD_DAYS: %w", err)
	}

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		DBConn:                getEnv("DB_CONN", "host=localhost port=5432 user=test password=test dbname=invoicing sslmode=disable"),
		LogLevel:              getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:             getEnv("JWT_SECRET", "secret"),
		RatesURL:              getEnv("RATES_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		SMTPHost:              getEnv("SMTP_HOST", "localhost"),
		SMTPPort:              getEnv("SMTP_PORT", "587"),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		SenderEmail:           getEnv("SENDER_EMAIL", "billing@localhost"),
		ReminderLookaheadDays: lookahead,
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.ReminderLookaheadDays < 0 {
		return nil, fmt.Errorf("REMINDER_LOOKAHEAD_DAYS must not be negative")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
