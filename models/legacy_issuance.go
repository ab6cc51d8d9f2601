package models

import "time"

// LegacyIssuance records that a session was given a code. It outlives the
// LegacyRecord, so a deleted code is never minted again for the same session.
type LegacyIssuance struct {
	SessionID string    `gorm:"primaryKey;size:255" json:"session_id"`
	IssuedAt  time.Time `gorm:"not null" json:"issued_at"`
}

// TableName specifies the table name for the LegacyIssuance model
func (LegacyIssuance) TableName() string {
	return "legacy_issuances"
}
