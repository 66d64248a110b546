package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ShippingAddress struct {
	Street  string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country" validate:"required"`
}

// Order is a customer checkout. TotalAmount is the sum of the item prices at
// creation time, in minor currency units, and is never recomputed.
type Order struct {
	ID                  string                              `json:"id" gorm:"primaryKey;size:36"`
	OrderNumber         string                              `json:"orderNumber" gorm:"uniqueIndex;size:32;not null"`
	CustomerID          uint                                `json:"customerId" gorm:"index;not null"`
	Customer            *Customer                           `json:"customer,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	Items               []OrderItem                         `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount         int64                               `json:"totalAmount" gorm:"not null"`
	Status              OrderStatus                         `json:"status" gorm:"size:16;index;not null"`
	PaymentStatus       PaymentStatus                       `json:"paymentStatus" gorm:"size:16;index;not null"`
	ShippingAddress     datatypes.JSONType[ShippingAddress] `json:"shippingAddress"`
	SpecialInstructions string                              `json:"specialInstructions,omitempty"`
	PaymentID           *string                             `json:"paymentId" gorm:"size:128;index"`
	Version             int                                 `json:"version" gorm:"not null;default:1"`
	CreatedAt           time.Time                           `json:"createdAt" gorm:"index"`
	UpdatedAt           time.Time                           `json:"updatedAt"`
}

// OrderItem is one configured magnet line. Price already includes quantity.
type OrderItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OrderID     string    `json:"orderId" gorm:"size:36;index;not null"`
	ImageURL    string    `json:"imageUrl" gorm:"size:1024;not null"`
	AssetID     string    `json:"assetId" gorm:"size:255"`
	Size        string    `json:"size" gorm:"size:32;not null"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	BorderStyle string    `json:"borderStyle" gorm:"size:32;not null"`
	Finish      string    `json:"finish" gorm:"size:32;not null"`
	Price       int64     `json:"price" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = PaymentStatusPending
	}
	if o.Version == 0 {
		o.Version = 1
	}
	return nil
}

// Address returns the decoded shipping address.
func (o Order) Address() ShippingAddress {
	return o.ShippingAddress.Data()
}
