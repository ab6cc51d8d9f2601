package controllers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/legacy-storefront-api/services"
)

const maxWebhookBodyBytes = 1 << 20

// WebhookController receives payment provider deliveries
type WebhookController struct {
	verifier   services.PaymentVerifier
	reconciler *services.Reconciler
}

// NewWebhookController creates a webhook controller
func NewWebhookController(verifier services.PaymentVerifier, reconciler *services.Reconciler) *WebhookController {
	return &WebhookController{verifier: verifier, reconciler: reconciler}
}

// HandleStripe handles POST /api/v1/webhooks/stripe
func (wc *WebhookController) HandleStripe(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		log.Printf("[Webhook] Failed to read body: %v", err)
		respondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Corps de requête illisible")
		return
	}

	event, err := wc.verifier.Verify(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Printf("[Webhook] Rejected delivery: %v", err)
		switch {
		case errors.Is(err, services.ErrMissingWebhookSecret):
			respondError(c, http.StatusBadRequest, "WEBHOOK_NOT_CONFIGURED", "Webhook non configuré")
		case errors.Is(err, services.ErrMissingSignature):
			respondError(c, http.StatusBadRequest, "MISSING_SIGNATURE", "Signature manquante")
		default:
			respondError(c, http.StatusBadRequest, "INVALID_SIGNATURE", "Signature invalide")
		}
		return
	}

	if string(event.Type) != services.EventCheckoutCompleted {
		log.Printf("[Webhook] Ignoring event %s of type %s", event.ID, event.Type)
		c.JSON(http.StatusOK, gin.H{"received": true, "ignored": true})
		return
	}

	result, err := wc.reconciler.HandleCheckoutCompleted(c.Request.Context(), event, payload)
	if err != nil {
		if errors.Is(err, services.ErrMalformedEvent) {
			log.Printf("[Webhook] Malformed event %s: %v", event.ID, err)
			respondError(c, http.StatusBadRequest, "MALFORMED_EVENT", "Événement invalide")
			return
		}
		respondError(c, http.StatusInternalServerError, "ORDER_WRITE_FAILED", "Erreur interne, l'événement sera renvoyé")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"received":  true,
		"duplicate": result.Duplicate,
	})
}
