package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/sanddrika/flashsavvy/internal/models"
	"github.com/sanddrika/flashsavvy/internal/repositories"
)

// OrderEventPublisher publishes order lifecycle events to a message broker.
type OrderEventPublisher interface {
	PublishOrderCreated(event map[string]interface{}) error
}

// OrderService handles the order-creation workflow: it validates the requested
// lines, resolves authoritative unit prices from the catalog, computes the
// total, and persists the order with its items as a unit.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	publisher   OrderEventPublisher

	// rejectUnknownProducts controls what happens when an order names a
	// product that does not exist. The historical behavior is to price the
	// line at zero and record it anyway; when this flag is set the whole
	// order is rejected instead.
	rejectUnknownProducts bool
}

// NewOrderService creates a new OrderService. publisher may be nil, in which
// case no events are emitted.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, publisher OrderEventPublisher, rejectUnknownProducts bool) *OrderService {
	return &OrderService{
		orderRepo:             orderRepo,
		productRepo:           productRepo,
		publisher:             publisher,
		rejectUnknownProducts: rejectUnknownProducts,
	}
}

// PlaceOrder creates an order for the given user from the requested
// (product, quantity) lines.
//
// Unit prices are resolved server-side with one batched catalog lookup;
// whatever the request carried for price is ignored. A product missing from
// the catalog contributes zero to the total but its line is still recorded,
// unless the service was configured to reject unknown products. The order
// header and all items are persisted atomically. Two identical calls create
// two distinct orders; there is no idempotency key.
func (s *OrderService) PlaceOrder(userID string, items []models.OrderItem) (*models.Order, error) {
	if userID == "" {
		return nil, NewValidationError("user_id is required")
	}
	if len(items) == 0 {
		return nil, NewValidationError("at least one item is required")
	}

	productIDs := make([]string, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			return nil, NewValidationError("every item needs a product_id")
		}
		if item.Quantity < 1 {
			return nil, NewValidationError("quantity for product %s must be at least 1", item.ProductID)
		}
		productIDs = append(productIDs, item.ProductID)
	}

	prices, err := s.productRepo.GetPricesByIDs(productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve prices: %w", err)
	}

	var total float64
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		price, ok := prices[item.ProductID]
		if !ok {
			if s.rejectUnknownProducts {
				return nil, NewValidationError("unknown product %s", item.ProductID)
			}
			// Unknown products contribute zero to the total but the
			// line is still recorded.
			price = 0
		}
		total += price * float64(item.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	newOrder := &models.Order{
		UserID: userID,
		Total:  total,
		Items:  orderItems,
	}

	if err := s.orderRepo.Create(newOrder); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	// Publishing is best effort: a broker failure never fails the order.
	if s.publisher != nil {
		event := map[string]interface{}{
			"order_id": newOrder.ID,
			"user_id":  newOrder.UserID,
			"total":    newOrder.Total,
		}
		if err := s.publisher.PublishOrderCreated(event); err != nil {
			log.Printf("Warning: failed to publish order created event for order %s: %v", newOrder.ID, err)
		}
	}

	return newOrder, nil
}

// GetOrderByID retrieves a single order with its items.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return order, nil
}

// GetOrdersForUser retrieves all orders placed by the given user.
func (s *OrderService) GetOrdersForUser(userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, NewValidationError("user_id is required")
	}
	return s.orderRepo.GetByUserID(userID)
}
