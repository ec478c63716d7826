package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart - единственная корзина пользователя
type Cart struct {
	ID        uuid.UUID  `json:"_id"`
	UserID    uuid.UUID  `json:"user"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem - строка корзины с раскрытым товаром
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}
