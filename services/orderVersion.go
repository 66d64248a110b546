package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Kariqs/magnets-api/models"
)

const maxUpdateAttempts = 3

var errStaleOrder = errors.New("order was modified concurrently")

// compareAndSwap applies changes only if the stored version still matches
// order.Version, bumping the version on success.
func compareAndSwap(tx *gorm.DB, order *models.Order, changes map[string]any) error {
	changes["version"] = order.Version + 1
	res := tx.Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errStaleOrder
	}
	order.Version++
	return nil
}
