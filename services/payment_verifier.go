package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kendall-kelly/legacy-storefront-api/config"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

// EventCheckoutCompleted is the only event type that drives the order pipeline
const EventCheckoutCompleted = "checkout.session.completed"

// PaymentVerifier checks an inbound webhook signature and decodes the event
type PaymentVerifier interface {
	Verify(payload []byte, signature string) (stripe.Event, error)
}

// StripeVerifier implements PaymentVerifier with Stripe's signing scheme
type StripeVerifier struct {
	secret    string
	tolerance time.Duration
}

// NewStripeVerifier creates a verifier using the configured signing secret
func NewStripeVerifier(cfg *config.Config) *StripeVerifier {
	return &StripeVerifier{
		secret:    cfg.StripeWebhookSecret,
		tolerance: webhook.DefaultTolerance,
	}
}

// Verify fails closed: nothing is decoded unless the secret and signature are
// both present and the signature matches the raw body.
func (v *StripeVerifier) Verify(payload []byte, signature string) (stripe.Event, error) {
	if v.secret == "" {
		return stripe.Event{}, ErrMissingWebhookSecret
	}
	if signature == "" {
		return stripe.Event{}, ErrMissingSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}

// DecodeCheckoutSession extracts the checkout session carried by a verified event
func DecodeCheckoutSession(event stripe.Event) (*stripe.CheckoutSession, error) {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("%w: event %s has no data object", ErrMalformedEvent, event.ID)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("%w: checkout session id is empty", ErrMalformedEvent)
	}
	return &session, nil
}
