package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for our application
type Config struct {
	Port               string
	Origin             string
	Environment        string
	JWTSecret          string
	JWTExpirationHours int
	Database           DatabaseConfig
	Redis              RedisConfig
	Mailer             MailerConfig
	Stripe             StripeConfig
	FrontendURL        string
	UploadsDir         string
	OTPExpiryMinutes   int
	FreeProfileLimit   int
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// RedisConfig holds Redis connection details for presence tracking
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MailerConfig holds SMTP configuration for one-time-code delivery
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// StripeConfig holds payment provider credentials
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "matrimony"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	jwtExpHours, err := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %w", err)
	}

	otpExpiryMinutes, err := strconv.Atoi(getEnv("OTP_EXPIRY_MINUTES", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid OTP_EXPIRY_MINUTES: %w", err)
	}

	freeProfileLimit, err := strconv.Atoi(getEnv("FREE_PROFILE_LIMIT", "6"))
	if err != nil {
		return nil, fmt.Errorf("invalid FREE_PROFILE_LIMIT: %w", err)
	}

	// Return complete configuration
	return &Config{
		Port:               getEnv("PORT", "5000"),
		Origin:             getEnv("ORIGIN", "http://localhost:5173"),
		Environment:        getEnv("APP_ENV", "development"),
		JWTSecret:          getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTExpirationHours: jwtExpHours,
		Database:           dbConfig,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Mailer: MailerConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     smtpPort,
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("SMTP_FROM", "no-reply@matrimony.local"),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),
		UploadsDir:       getEnv("UPLOADS_DIR", "uploads"),
		OTPExpiryMinutes: otpExpiryMinutes,
		FreeProfileLimit: freeProfileLimit,
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
