package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pendente"
	StatusPreparing OrderStatus = "preparando"
	StatusDelivered OrderStatus = "entregue"
	StatusCancelled OrderStatus = "cancelado"
)

// ParseStatus validates a raw status string against the four-element enum.
func ParseStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusPreparing, StatusDelivered, StatusCancelled:
		return OrderStatus(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// ValidateTransition checks a status write against the transition rules.
// Cancellation is guarded: a cancelled order cannot be cancelled again and
// a delivered order cannot be cancelled at all. Movement among
// pendente/preparando/entregue is unrestricted.
func ValidateTransition(from, to OrderStatus) error {
	if to == StatusCancelled {
		switch from {
		case StatusCancelled:
			return ErrAlreadyCancelled
		case StatusDelivered:
			return ErrCannotCancelDelivered
		}
	}
	return nil
}

// Order represents a user's selection of dishes with a derived total.
// Total is a stored value recomputed on every item-set mutation, never
// computed lazily at read time.
type Order struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"usuario"`
	DishIDs   []int64         `json:"itens"`
	Total     decimal.Decimal `json:"total"`
	Status    OrderStatus     `json:"status"`
	CreatedAt time.Time       `json:"criado_em"`
	UpdatedAt time.Time       `json:"modificado_em"`
}

// CreateOrderRequest represents the request to create a new order.
// UserID is honoured only for administrator callers.
type CreateOrderRequest struct {
	DishIDs []int64 `json:"itens"`
	UserID  *int64  `json:"usuario_id,omitempty"`
}

// UpdateOrderRequest represents a partial order update. Nil fields are
// left untouched.
type UpdateOrderRequest struct {
	DishIDs *[]int64 `json:"itens,omitempty"`
	Status  *string  `json:"status,omitempty"`
}

// OrderTotal sums the current prices of the order's dishes using exact
// decimal addition. An empty item set yields zero, not an error.
func OrderTotal(prices []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, p := range prices {
		total = total.Add(p)
	}
	return total
}
