package initializers

import (
	"fmt"

	"github.com/Kariqs/magnets-api/models"
	"gorm.io/gorm"
)

func SyncDatabase(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Admin{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentIntent{},
		&models.WebhookEvent{},
	); err != nil {
		return fmt.Errorf("failed to sync database: %w", err)
	}
	return nil
}
