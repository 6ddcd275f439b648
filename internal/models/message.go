package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderEventMessage represents an order lifecycle event published to the
// orders topic exchange after a creation or status change commits.
type OrderEventMessage struct {
	OrderID   int64           `json:"order_id"`
	UserID    int64           `json:"usuario"`
	Total     decimal.Decimal `json:"total"`
	OldStatus string          `json:"old_status,omitempty"`
	NewStatus string          `json:"new_status"`
	ChangedBy string          `json:"changed_by"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewOrderEventMessage builds the event emitted when an order's status is
// written (creation counts as a write from the empty status).
func NewOrderEventMessage(order *Order, oldStatus OrderStatus, changedBy string) *OrderEventMessage {
	return &OrderEventMessage{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		OldStatus: string(oldStatus),
		NewStatus: string(order.Status),
		ChangedBy: changedBy,
		Timestamp: time.Now().UTC(),
	}
}

// OrderEventRoutingKey generates the routing key for order event messages.
func OrderEventRoutingKey(status OrderStatus) string {
	return fmt.Sprintf("orders.status.%s", status)
}
