package models

import "time"

// OrderItem represents a single line of an order. The unit price is not
// stored per line; only the aggregate total lives on the order.
type OrderItem struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID string `json:"product_id" gorm:"type:varchar(36)"`
	Quantity  int    `json:"quantity"`
}

// Order represents a customer order. Orders are immutable once created.
type Order struct {
	ID        string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string      `json:"user_id" gorm:"index;type:varchar(36)"`
	Total     float64     `json:"total"`
	Items     []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt time.Time   `json:"created_at"`
}
