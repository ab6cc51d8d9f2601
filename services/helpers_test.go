package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kendall-kelly/legacy-storefront-api/config"
	"github.com/kendall-kelly/legacy-storefront-api/models"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testWebhookSecret = "whsec_test_secret"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "Failed to connect to test database")

	// One connection keeps every goroutine on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.AllModels()...), "Failed to migrate test database")
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		GoEnv:               "test",
		StripeWebhookSecret: testWebhookSecret,
		AdminSecret:         "letmein",
		AdminTokenSecret:    "token-signing-secret",
		AdminTokenIssuer:    "legacy-storefront-api",
		AdminTokenAudience:  "legacy-admin",
		AdminTokenTTL:       30 * time.Minute,
		GeocoderUserAgent:   "legacy-storefront-api/test",
		GeocoderTimeout:     2 * time.Second,
		GeocodeCacheTTL:     time.Hour,
	}
}

// signPayload builds a Stripe-Signature header value for payload
func signPayload(payload []byte, secret string, ts time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: ts,
	}).Header
}

type checkoutFixture struct {
	EventID   string
	SessionID string
	Slug      string
	Amount    int64
	Currency  string
}

func checkoutPayload(t *testing.T, f checkoutFixture) []byte {
	t.Helper()

	if f.Currency == "" {
		f.Currency = "eur"
	}
	metadata := map[string]string{}
	if f.Slug != "" {
		metadata["slug"] = f.Slug
	}

	body := map[string]interface{}{
		"id":          f.EventID,
		"object":      "event",
		"api_version": "2022-11-15",
		"created":     time.Now().Unix(),
		"type":        EventCheckoutCompleted,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             f.SessionID,
				"object":         "checkout.session",
				"amount_total":   f.Amount,
				"currency":       f.Currency,
				"payment_status": "paid",
				"customer_details": map[string]interface{}{
					"email": "jane@example.com",
					"name":  "Jane Doe",
					"address": map[string]interface{}{
						"line1":       "1 Rue de Rivoli",
						"postal_code": "75001",
						"city":        "Paris",
						"country":     "FR",
					},
				},
				"client_reference_id": "ref_42",
				"payment_intent":      "pi_123",
				"metadata":            metadata,
			},
		},
	}

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	return payload
}

func checkoutEvent(t *testing.T, f checkoutFixture) (stripe.Event, []byte) {
	t.Helper()

	payload := checkoutPayload(t, f)
	var event stripe.Event
	require.NoError(t, json.Unmarshal(payload, &event))
	return event, payload
}
