package testutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74/webhook"
)

// CheckoutEvent describes a checkout.session.completed delivery
type CheckoutEvent struct {
	EventID   string
	EventType string // defaults to checkout.session.completed
	SessionID string
	Slug      string
	Amount    int64
	Currency  string // defaults to eur
	Email     string
}

// Payload renders the event as the provider would send it
func (e CheckoutEvent) Payload(t *testing.T) []byte {
	t.Helper()

	if e.EventType == "" {
		e.EventType = "checkout.session.completed"
	}
	if e.Currency == "" {
		e.Currency = "eur"
	}
	if e.Email == "" {
		e.Email = "jane@example.com"
	}
	metadata := map[string]string{}
	if e.Slug != "" {
		metadata["slug"] = e.Slug
	}

	body := map[string]interface{}{
		"id":          e.EventID,
		"object":      "event",
		"api_version": "2022-11-15",
		"created":     time.Now().Unix(),
		"type":        e.EventType,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             e.SessionID,
				"object":         "checkout.session",
				"amount_total":   e.Amount,
				"currency":       e.Currency,
				"payment_status": "paid",
				"customer_details": map[string]interface{}{
					"email": e.Email,
					"name":  "Jane Doe",
					"address": map[string]interface{}{
						"line1":       "1 Rue de Rivoli",
						"postal_code": "75001",
						"city":        "Paris",
						"country":     "FR",
					},
				},
				"payment_intent": "pi_" + e.SessionID,
				"metadata":       metadata,
			},
		},
	}

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	return payload
}

// SignPayload builds a Stripe-Signature header for payload signed now
func SignPayload(payload []byte, secret string) string {
	return SignPayloadAt(payload, secret, time.Now())
}

// SignPayloadAt builds a Stripe-Signature header with an explicit timestamp
func SignPayloadAt(payload []byte, secret string, ts time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: ts,
	}).Header
}
