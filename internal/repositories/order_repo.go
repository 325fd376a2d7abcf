package repositories

import (
	"github.com/sanddrika/flashsavvy/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create persists the order header and all of its items as a unit.
	// If any insert fails, nothing is persisted.
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
}
