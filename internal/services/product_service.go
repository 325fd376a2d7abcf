package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sanddrika/flashsavvy/internal/models"
	"github.com/sanddrika/flashsavvy/internal/repositories"
)

// ProductService handles business logic related to the catalog.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return product, nil
}

// CreateProduct creates a new product. Name, price, and stock are required.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if product.Name == "" || product.Price == 0 || product.Stock == 0 {
		return NewValidationError("name, price, and stock are required")
	}
	if product.Price < 0 {
		return NewValidationError("price must not be negative")
	}
	if product.Stock < 0 {
		return NewValidationError("stock must not be negative")
	}
	return s.repo.Create(product)
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if product.Price < 0 {
		return NewValidationError("price must not be negative")
	}
	if product.Stock < 0 {
		return NewValidationError("stock must not be negative")
	}
	if err := s.repo.Update(product); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
		}
		return err
	}
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}
