package services

import (
	"context"
	"errors"
	"log"

	"github.com/kendall-kelly/legacy-storefront-api/models"
	"github.com/stripe/stripe-go/v74"
)

// ReconcileResult summarizes what one checkout completion produced
type ReconcileResult struct {
	Order        models.Order
	Duplicate    bool
	StockUpdated bool
	LegacyCode   string
}

// Reconciler turns a verified checkout completion into an order, a stock
// increment and a legacy code. Only the order write is fatal.
type Reconciler struct {
	orders  *OrderRecorder
	stock   *StockAdjuster
	issuer  *LegacyIssuer
	archive EventArchive
	events  EventPublisher
}

// NewReconciler wires the pipeline steps together
func NewReconciler(orders *OrderRecorder, stock *StockAdjuster, issuer *LegacyIssuer, archive EventArchive, events EventPublisher) *Reconciler {
	if archive == nil {
		archive = NopEventArchive{}
	}
	if events == nil {
		events = NopEventPublisher{}
	}
	return &Reconciler{orders: orders, stock: stock, issuer: issuer, archive: archive, events: events}
}

// HandleCheckoutCompleted processes a verified checkout.session.completed
// event. payload is the raw body, archived before anything is written.
func (r *Reconciler) HandleCheckoutCompleted(ctx context.Context, event stripe.Event, payload []byte) (*ReconcileResult, error) {
	session, err := DecodeCheckoutSession(event)
	if err != nil {
		return nil, err
	}

	order := NormalizeCheckoutSession(session, event.ID)
	slug := SlugForOrder(order)

	if key, err := r.archive.Store(ctx, event.ID, payload); err != nil {
		log.Printf("[Archive] Failed to store event %s for session %s: %v", event.ID, session.ID, err)
	} else if key != "" {
		order.ArchiveKey = &key
	}

	created, err := r.orders.Record(ctx, &order)
	if err != nil {
		log.Printf("[Webhook] Order write failed for session %s: %v", session.ID, err)
		return nil, err
	}

	result := &ReconcileResult{Order: order, Duplicate: !created}
	if created {
		log.Printf("[Webhook] Recorded order %s (%s %s, slug %s)", order.SessionID, order.Amount.StringFixed(2), order.Currency, slug)
	} else {
		log.Printf("[Webhook] Duplicate delivery for session %s, skipping stock update", order.SessionID)
	}

	if created {
		if err := r.stock.Increment(ctx, slug); err != nil {
			if errors.Is(err, ErrUnknownSlug) {
				log.Printf("[Stock] No artwork slug on session %s, stock not updated", order.SessionID)
			} else {
				log.Printf("[Stock] Increment failed for session %s slug %s: %v", order.SessionID, slug, err)
			}
		} else {
			result.StockUpdated = true
		}
	}

	// Issued on redelivery too, so a first attempt that failed here is repaired.
	// A code an admin deleted stays deleted.
	rec, _, err := r.issuer.Issue(ctx, order.SessionID, slug)
	switch {
	case errors.Is(err, ErrCodeRevoked):
		log.Printf("[Legacy] Code for session %s was revoked, not re-issuing", order.SessionID)
	case err != nil:
		log.Printf("[Legacy] Code issuance failed for session %s slug %s: %v", order.SessionID, slug, err)
	default:
		result.LegacyCode = rec.Code
	}

	if created {
		if err := r.events.Publish(ctx, EventTypeOrderRecorded, order.SessionID, OrderRecordedPayload{
			SessionID: order.SessionID,
			Slug:      slug,
			Amount:    order.Amount.StringFixed(2),
			Currency:  order.Currency,
			Email:     order.CustomerEmail,
		}); err != nil {
			log.Printf("[Events] Failed to publish %s for session %s: %v", EventTypeOrderRecorded, order.SessionID, err)
		}
	}

	return result, nil
}
