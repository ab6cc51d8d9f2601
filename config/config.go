package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL string
	Port        string
	GoEnv       string

	// Payment provider
	StripeWebhookSecret string

	// Admin access
	AdminSecret        string
	AdminTokenSecret   string
	AdminTokenIssuer   string
	AdminTokenAudience string
	AdminTokenTTL      time.Duration

	// Geocoding
	GeocoderURL       string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration
	RedisURL          string
	GeocodeCacheTTL   time.Duration

	// Domain events
	KafkaBrokers []string
	KafkaTopic   string

	// Webhook payload archive
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// Claim endpoint throttling
	ClaimRateRPS   float64
	ClaimRateBurst int

	LogLevel string
}

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In production, environment variables are set directly
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		Port:                getEnv("PORT", "8080"),
		GoEnv:               getEnv("GO_ENV", "development"),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		AdminSecret:         getEnv("ADMIN_SECRET", ""),
		AdminTokenSecret:    getEnv("ADMIN_TOKEN_SECRET", ""),
		AdminTokenIssuer:    getEnv("ADMIN_TOKEN_ISSUER", "legacy-storefront-api"),
		AdminTokenAudience:  getEnv("ADMIN_TOKEN_AUDIENCE", "legacy-admin"),
		AdminTokenTTL:       getEnvDuration("ADMIN_TOKEN_TTL", 30*time.Minute),
		GeocoderURL:         getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent:   getEnv("GEOCODER_USER_AGENT", "legacy-storefront-api/1.0"),
		GeocoderTimeout:     getEnvDuration("GEOCODER_TIMEOUT", 5*time.Second),
		RedisURL:            getEnv("REDIS_URL", ""),
		GeocodeCacheTTL:     getEnvDuration("GEOCODE_CACHE_TTL", 30*24*time.Hour),
		KafkaBrokers:        splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "storefront.legacy"),
		AWSRegion:           getEnv("AWS_REGION", "eu-west-3"),
		AWSS3Bucket:         getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		ClaimRateRPS:        getEnvFloat("CLAIM_RATE_RPS", 1),
		ClaimRateBurst:      getEnvInt("CLAIM_RATE_BURST", 5),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.StripeWebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
	}
	if c.AdminSecret == "" {
		return fmt.Errorf("ADMIN_SECRET is required")
	}
	if c.AdminTokenSecret == "" {
		return fmt.Errorf("ADMIN_TOKEN_SECRET is required")
	}
	if c.AdminTokenSecret == c.AdminSecret {
		return fmt.Errorf("ADMIN_TOKEN_SECRET must differ from ADMIN_SECRET")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GinMode picks the router mode. Production always runs in release mode;
// elsewhere development and LOG_LEVEL=debug get gin's debug output.
func (c *Config) GinMode() string {
	switch {
	case c.IsProduction():
		return gin.ReleaseMode
	case c.IsTest():
		return gin.TestMode
	case c.IsDevelopment() || strings.EqualFold(c.LogLevel, "debug"):
		return gin.DebugMode
	default:
		return gin.ReleaseMode
	}
}

// GormLogLevel maps LOG_LEVEL onto gorm's logger. SQL statements are only
// logged at debug.
func (c *Config) GormLogLevel() logger.LogLevel {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	case "silent", "off":
		return logger.Silent
	default:
		return logger.Warn
	}
}

// ArchiveEnabled reports whether webhook payloads should be stored in S3
func (c *Config) ArchiveEnabled() bool {
	return c.AWSS3Bucket != ""
}

// EventsEnabled reports whether domain events should be published to Kafka
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration for %s (%q), using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s (%q), using %d", key, value, defaultValue)
		return defaultValue
	}
	return i
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Invalid number for %s (%q), using %g", key, value, defaultValue)
		return defaultValue
	}
	return f
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
