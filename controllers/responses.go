package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/legacy-storefront-api/models"
)

// respondError writes the standard error body. message is shown to end users.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
		"code":    code,
	})
}

// OrderResponse is the admin view of an order
type OrderResponse struct {
	ID              uint                   `json:"id"`
	SessionID       string                 `json:"session_id"`
	EventID         string                 `json:"event_id"`
	CustomerEmail   string                 `json:"customer_email"`
	CustomerName    string                 `json:"customer_name"`
	Amount          string                 `json:"amount"`
	Currency        string                 `json:"currency"`
	PaymentStatus   string                 `json:"payment_status"`
	ShippingAddress string                 `json:"shipping_address"`
	Metadata        map[string]interface{} `json:"metadata"`
	ArchiveKey      *string                `json:"archive_key,omitempty"`
	ArchiveURL      string                 `json:"archive_url,omitempty"`
	CreatedAt       string                 `json:"created_at"`
}

func newOrderResponse(o models.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		SessionID:       o.SessionID,
		EventID:         o.EventID,
		CustomerEmail:   o.CustomerEmail,
		CustomerName:    o.CustomerName,
		Amount:          o.Amount.StringFixed(2),
		Currency:        o.Currency,
		PaymentStatus:   o.PaymentStatus,
		ShippingAddress: o.ShippingAddress,
		Metadata:        o.Metadata,
		ArchiveKey:      o.ArchiveKey,
		CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
	}
}
