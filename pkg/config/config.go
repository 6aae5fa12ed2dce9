package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	NATS         NATSConfig
	Marketplace  MarketplaceConfig
	Detection    DetectionConfig
	Verification VerificationConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds the audit event sink configuration
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	Enabled       bool
}

// MarketplaceConfig holds the listing/user read collaborator configuration
type MarketplaceConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// DetectionConfig holds tuning knobs for the automated detection rules
type DetectionConfig struct {
	RapidListingThreshold int // listings per window before the rule fires
	RapidListingWindow    int // trailing window in hours
	PriceDeviationMedium  float64
	PriceDeviationHigh    float64
	PriceDeviationExtreme float64
}

// VerificationConfig holds confidence thresholds for automated verification
type VerificationConfig struct {
	TrustThreshold  float64
	RejectThreshold float64
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "trustsafety"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", "nats://localhost:4222"),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "trust"),
			Enabled:       getEnvAsBool("NATS_ENABLED", false),
		},
		Marketplace: MarketplaceConfig{
			BaseURL:        getEnv("MARKETPLACE_API_URL", "http://localhost:8081/internal/v1"),
			TimeoutSeconds: getEnvAsInt("MARKETPLACE_TIMEOUT", 5),
		},
		Detection: DetectionConfig{
			RapidListingThreshold: getEnvAsInt("DETECT_RAPID_LISTING_THRESHOLD", 10),
			RapidListingWindow:    getEnvAsInt("DETECT_RAPID_LISTING_WINDOW_HOURS", 24),
			PriceDeviationMedium:  getEnvAsFloat("DETECT_PRICE_DEVIATION_MEDIUM", 1.5),
			PriceDeviationHigh:    getEnvAsFloat("DETECT_PRICE_DEVIATION_HIGH", 2.0),
			PriceDeviationExtreme: getEnvAsFloat("DETECT_PRICE_DEVIATION_EXTREME", 3.0),
		},
		Verification: VerificationConfig{
			TrustThreshold:  getEnvAsFloat("VERIFY_TRUST_THRESHOLD", 0.7),
			RejectThreshold: getEnvAsFloat("VERIFY_REJECT_THRESHOLD", 0.8),
		},
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
