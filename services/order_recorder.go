package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/legacy-storefront-api/models"
	"github.com/kendall-kelly/legacy-storefront-api/utils"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnknownSlug marks an order whose artwork could not be identified
const UnknownSlug = "unknown"

// Metadata keys merged into every order on top of the provider metadata
const (
	MetadataClientReferenceID = "client_reference_id"
	MetadataPaymentIntent     = "payment_intent"
)

// slugMetadataKeys are checked in order when looking for the artwork slug
var slugMetadataKeys = []string{"slug", "artwork_slug", "product_slug", "productSlug"}

// OrderRecorder persists exactly one Order per checkout session
type OrderRecorder struct {
	db *gorm.DB
}

// NewOrderRecorder creates a new order recorder
func NewOrderRecorder(db *gorm.DB) *OrderRecorder {
	return &OrderRecorder{db: db}
}

// NormalizeCheckoutSession maps a provider checkout session onto an Order
func NormalizeCheckoutSession(session *stripe.CheckoutSession, eventID string) models.Order {
	order := models.Order{
		SessionID:       session.ID,
		EventID:         eventID,
		Amount:          decimal.NewFromInt(session.AmountTotal).Shift(-2),
		Currency:        strings.ToUpper(string(session.Currency)),
		PaymentStatus:   string(session.PaymentStatus),
		ShippingAddress: shippingAddress(session),
		Metadata:        datatypes.JSONMap{},
	}

	var detailsEmail, detailsName, shippingName string
	if cd := session.CustomerDetails; cd != nil {
		detailsEmail, detailsName = cd.Email, cd.Name
	}
	if sd := session.ShippingDetails; sd != nil {
		shippingName = sd.Name
	}
	order.CustomerEmail = utils.FirstNonEmpty(detailsEmail, session.CustomerEmail)
	order.CustomerName = utils.FirstNonEmpty(detailsName, shippingName)

	for k, v := range session.Metadata {
		order.Metadata[k] = v
	}
	if session.ClientReferenceID != "" {
		order.Metadata[MetadataClientReferenceID] = session.ClientReferenceID
	}
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		order.Metadata[MetadataPaymentIntent] = session.PaymentIntent.ID
	}

	return order
}

// shippingAddress prefers the shipping details and falls back to the
// customer's billing address
func shippingAddress(session *stripe.CheckoutSession) string {
	var addr *stripe.Address
	if session.ShippingDetails != nil && session.ShippingDetails.Address != nil {
		addr = session.ShippingDetails.Address
	} else if session.CustomerDetails != nil && session.CustomerDetails.Address != nil {
		addr = session.CustomerDetails.Address
	}
	if addr == nil {
		return ""
	}
	return utils.JoinAddress(addr.Line1, addr.Line2, addr.PostalCode, addr.City, addr.State, addr.Country)
}

// SlugForOrder returns the artwork slug referenced by the order, or UnknownSlug
func SlugForOrder(order models.Order) string {
	for _, key := range slugMetadataKeys {
		if v := strings.TrimSpace(order.MetadataString(key)); v != "" {
			return v
		}
	}
	if v := strings.TrimSpace(order.MetadataString(MetadataClientReferenceID)); v != "" {
		return v
	}
	return UnknownSlug
}

// Record inserts the order unless one already exists for its session. On a
// duplicate delivery the stored row is copied into order and created is false.
func (r *OrderRecorder) Record(ctx context.Context, order *models.Order) (created bool, err error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "session_id"}}, DoNothing: true}).
		Create(order)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert order %s: %w", order.SessionID, result.Error)
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	existing, err := r.Get(ctx, order.SessionID)
	if err != nil {
		return false, fmt.Errorf("failed to load existing order %s: %w", order.SessionID, err)
	}
	*order = *existing
	return false, nil
}

// Get fetches an order by payment session id
func (r *OrderRecorder) Get(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns orders newest first
func (r *OrderRecorder) List(ctx context.Context, limit, offset int) ([]models.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
