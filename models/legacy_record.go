package models

import "time"

// LegacyRecord ties a one-time secret code to a purchase. The owner fields
// stay nil until the code is claimed, and are all set in the same write.
type LegacyRecord struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SessionID    string     `gorm:"size:255;uniqueIndex;not null" json:"session_id"` // links to orders.session_id
	Code         string     `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Slug         *string    `gorm:"size:255;index" json:"slug"` // nullable when the artwork is unknown
	Claimed      bool       `gorm:"not null;default:false;index" json:"claimed"`
	OwnerName    *string    `json:"owner_name"`
	OwnerCity    *string    `json:"owner_city"`
	OwnerMessage *string    `gorm:"type:text" json:"owner_message"`
	Lat          *float64   `json:"lat"`
	Lng          *float64   `json:"lng"`
	ClaimedAt    *time.Time `json:"claimed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName specifies the table name for the LegacyRecord model
func (LegacyRecord) TableName() string {
	return "legacy_records"
}

// PublicLegacyEntry is the map-safe projection of a claimed record. It never
// carries the secret code.
type PublicLegacyEntry struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Message   string    `json:"message"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Slug      *string   `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Public projects a claimed record for the public map. ok is false for
// records that are unclaimed or missing owner data.
func (r LegacyRecord) Public() (entry PublicLegacyEntry, ok bool) {
	if !r.Claimed || r.OwnerName == nil || r.OwnerCity == nil || r.Lat == nil || r.Lng == nil {
		return PublicLegacyEntry{}, false
	}
	entry = PublicLegacyEntry{
		ID:        r.ID,
		Name:      *r.OwnerName,
		City:      *r.OwnerCity,
		Lat:       *r.Lat,
		Lng:       *r.Lng,
		Slug:      r.Slug,
		CreatedAt: r.CreatedAt,
	}
	if r.OwnerMessage != nil {
		entry.Message = *r.OwnerMessage
	}
	return entry, true
}

// AllModels lists every model for auto-migration
func AllModels() []interface{} {
	return []interface{}{&Order{}, &StockCounter{}, &LegacyRecord{}, &LegacyIssuance{}}
}
