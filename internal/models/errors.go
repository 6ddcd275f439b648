package models

import "errors"

// Domain errors surfaced to callers. Handlers match these with errors.Is
// and translate them into HTTP responses; none of them is retried.
var (
	ErrInvalidName           = errors.New("dish name cannot be empty")
	ErrInvalidPrice          = errors.New("dish price must be greater than zero")
	ErrEmptyOrder            = errors.New("order must contain at least one dish")
	ErrDishNotFound          = errors.New("dish not found")
	ErrInvalidStatus         = errors.New("invalid order status")
	ErrAlreadyCancelled      = errors.New("order is already cancelled")
	ErrCannotCancelDelivered = errors.New("delivered orders cannot be cancelled")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrNotFound              = errors.New("not found")
)
