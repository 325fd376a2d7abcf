package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/sanddrika/flashsavvy/internal/models"
	"github.com/sanddrika/flashsavvy/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	identity fiber.Handler
}

// NewOrderHandler creates a new OrderHandler. identity is the middleware
// gating the order read routes.
func NewOrderHandler(service *services.OrderService, identity fiber.Handler) *OrderHandler {
	return &OrderHandler{
		service:  service,
		identity: identity,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", h.identity, h.HandleGetOrders)
	orderRoutes.Get("/:id", h.identity, h.HandleGetOrderByID)
}

// CreateOrderRequest represents the request body for order creation.
type CreateOrderRequest struct {
	UserID string             `json:"user_id"`
	Items  []models.OrderItem `json:"items"`
}

// HandleCreateOrder creates a new order from the requested items.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid order data",
		})
	}

	order, err := h.service.PlaceOrder(req.UserID, req.Items)
	if err != nil {
		if services.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid order data",
			})
		}
		log.Printf("Error creating order: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create order",
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Order created",
		"order_id": order.ID,
	})
}

// HandleGetOrders lists the calling user's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	orders, err := h.service.GetOrdersForUser(userID)
	if err != nil {
		log.Printf("Error getting orders for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not retrieve orders",
		})
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves one of the calling user's orders. Orders of
// other users are indistinguishable from missing ones.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)

	order, err := h.service.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Order not found",
			})
		}
		log.Printf("Error getting order %s: %v", orderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not retrieve order",
		})
	}
	if order.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Order not found",
		})
	}
	return c.JSON(order)
}
