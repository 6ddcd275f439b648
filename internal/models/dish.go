package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxDishNameLength matches the varchar(100) column backing dish names.
const MaxDishNameLength = 100

// Dish represents a menu item. Wire field names follow the persisted
// API contract (nome/descricao/preco).
type Dish struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nome"`
	Description *string         `json:"descricao,omitempty"`
	Price       decimal.Decimal `json:"preco"`
	CreatedAt   time.Time       `json:"criado_em"`
	UpdatedAt   time.Time       `json:"modificado_em"`
}

// CreateDishRequest represents the request to create or replace a dish
type CreateDishRequest struct {
	Name        string          `json:"nome"`
	Description *string         `json:"descricao,omitempty"`
	Price       decimal.Decimal `json:"preco"`
}

// ValidateDish checks the dish domain invariants. A non-positive price is
// a domain rule, not optional input sugar, so it is enforced here as well
// as at the storage boundary.
func ValidateDish(name string, price decimal.Decimal) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len(name) > MaxDishNameLength {
		return ErrInvalidName
	}
	if price.Cmp(decimal.Zero) <= 0 {
		return ErrInvalidPrice
	}
	return nil
}
