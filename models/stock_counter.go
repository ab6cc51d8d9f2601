package models

import "time"

// StockCounter tracks how many units of an artwork have sold. A missing row
// means nothing has sold yet.
type StockCounter struct {
	Slug      string    `gorm:"primaryKey;size:255" json:"slug"`
	SoldCount int       `gorm:"not null;default:0;check:sold_count >= 0" json:"sold_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the StockCounter model
func (StockCounter) TableName() string {
	return "stock_counters"
}
