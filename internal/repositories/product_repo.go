package repositories

import (
	"github.com/sanddrika/flashsavvy/internal/models"
)

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	// GetPricesByIDs resolves current unit prices for the given product IDs
	// in one query. IDs with no matching product are absent from the map.
	GetPricesByIDs(ids []string) (map[string]float64, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
