package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/kendall-kelly/legacy-storefront-api/config"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// RequireTestEnvironmentOrSkip is similar to RequireTestEnvironment but skips the test
// instead of failing it.
func RequireTestEnvironmentOrSkip(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Skipf("Skipping test: GO_ENV must be 'test' (current: %q)", env)
	}
}

// Test secrets shared by every suite
const (
	WebhookSecret    = "whsec_test_secret"
	AdminSecret      = "letmein"
	AdminTokenSecret = "token-signing-secret"
)

// TestConfig returns a configuration with test secrets and every optional
// integration (S3, Kafka, Redis) disabled.
func TestConfig() *config.Config {
	return &config.Config{
		DatabaseURL:         "sqlite::memory:",
		Port:                "0",
		GoEnv:               "test",
		StripeWebhookSecret: WebhookSecret,
		AdminSecret:         AdminSecret,
		AdminTokenSecret:    AdminTokenSecret,
		AdminTokenIssuer:    "legacy-storefront-api",
		AdminTokenAudience:  "legacy-admin",
		AdminTokenTTL:       30 * time.Minute,
		GeocoderURL:         "http://127.0.0.1:0",
		GeocoderUserAgent:   "legacy-storefront-api/test",
		GeocoderTimeout:     2 * time.Second,
		GeocodeCacheTTL:     time.Hour,
		KafkaTopic:          "storefront.legacy",
		AWSRegion:           "eu-west-3",
		LogLevel:            "error",
	}
}

// PrintEnvironmentInfo prints the current test environment configuration.
func PrintEnvironmentInfo() {
	fmt.Printf("Test Environment Info:\n")
	fmt.Printf("  GO_ENV: %s\n", os.Getenv("GO_ENV"))
	fmt.Printf("  DATABASE_URL: %s\n", maskDatabaseURL(os.Getenv("DATABASE_URL")))
}

func maskDatabaseURL(url string) string {
	if url == "" {
		return "(not set)"
	}
	if len(url) > 20 {
		return url[:20] + "..."
	}
	return url
}
