package models

import "time"

// PaymentIntent records every provider intent issued for an order. An order
// may collect several when checkout is retried; Order.PaymentID only holds
// the latest, so webhook lookups go through this table.
type PaymentIntent struct {
	ID        string `gorm:"primaryKey;size:128"`
	OrderID   string `gorm:"size:36;not null;index"`
	Amount    int64  `gorm:"not null"`
	Currency  string `gorm:"size:16;not null"`
	CreatedAt time.Time
}
