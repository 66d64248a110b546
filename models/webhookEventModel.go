package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent records every provider event that passed signature
// verification. EventKey is unique, so a redelivered event is recognised.
type WebhookEvent struct {
	EventKey    string         `gorm:"primaryKey;size:191"`
	EventType   string         `gorm:"size:64;index"`
	PaymentID   string         `gorm:"size:128;index"`
	OrderID     *string        `gorm:"size:36;index"`
	Outcome     string         `gorm:"size:32"`
	Payload     datatypes.JSON
	ProcessedAt time.Time
}
