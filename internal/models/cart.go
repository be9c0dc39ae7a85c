package models

import "github.com/google/uuid"

// Cart holds a user's pending items. One cart per user; checkout empties it
// but never deletes the row.
type Cart struct {
	BaseModel
	UserID uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Items  []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// CartItem references a product with an optional cached unit price. A zero
// price means "look the product up at checkout".
type CartItem struct {
	BaseModel
	CartID    uuid.UUID `gorm:"type:uuid;index" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `json:"quantity"`
	Price     *float64  `json:"price,omitempty"`
}
