package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order is the financial record of a completed checkout. One row per payment
// session; rows are never updated after creation.
type Order struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	SessionID       string            `gorm:"size:255;uniqueIndex;not null" json:"session_id"` // payment provider checkout session id
	EventID         string            `gorm:"size:255;index" json:"event_id"`                  // webhook event that created the row
	CustomerEmail   string            `gorm:"size:320" json:"customer_email"`
	CustomerName    string            `json:"customer_name"`
	Amount          decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency        string            `gorm:"size:3;not null" json:"currency"`
	PaymentStatus   string            `gorm:"size:32" json:"payment_status"`
	ShippingAddress string            `gorm:"type:text" json:"shipping_address"`
	Metadata        datatypes.JSONMap `json:"metadata"`
	ArchiveKey      *string           `gorm:"size:512" json:"archive_key,omitempty"` // nullable, S3 key of the raw webhook payload
	CreatedAt       time.Time         `json:"created_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// MetadataString returns a metadata value as a string, or "" when absent.
func (o Order) MetadataString(key string) string {
	if o.Metadata == nil {
		return ""
	}
	if v, ok := o.Metadata[key].(string); ok {
		return v
	}
	return ""
}
