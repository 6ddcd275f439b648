package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderListingsNewestFirst(t *testing.T) {
	assert.Contains(t, ListOrdersSQL, "ORDER BY created_at DESC")
	assert.Contains(t, ListOrdersByUserSQL, "ORDER BY created_at DESC")
}

func TestMostPopularRanking(t *testing.T) {
	assert.Contains(t, MostPopularDishesSQL, "COUNT(DISTINCT oi.order_id) DESC, d.id ASC")
}

func TestMutationLocksOrderRow(t *testing.T) {
	assert.Contains(t, GetOrderForUpdateSQL, "FOR UPDATE")
}
