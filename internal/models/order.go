package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. An order is created `paid` by checkout; later transitions
// are performed by administrative tooling outside this service.
const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// Order is an immutable record of a completed checkout. Item prices are a
// frozen snapshot; catalog changes never touch them.
type Order struct {
	BaseModel
	UserID           uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User             *User       `json:"user,omitempty"`
	PlacedAt         time.Time   `json:"placed_at"`
	TotalAmount      float64     `json:"total_amount"`
	Currency         string      `json:"currency"`
	Status           string      `json:"status"`
	GatewayOrderID   string      `gorm:"index" json:"gateway_order_id"`
	GatewayPaymentID string      `json:"gateway_payment_id"`
	GatewaySignature string      `json:"-"`
	IdempotencyKey   *string     `gorm:"uniqueIndex" json:"-"`
	Items            []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem freezes product, quantity and unit price at purchase time.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid" json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}
