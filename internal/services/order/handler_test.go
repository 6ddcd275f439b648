package order

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurante-api/internal/models"
)

func TestDecodeJSONIgnoresReadOnlyFields(t *testing.T) {
	body := `{"itens":[1,2],"total":"78.40","status":"pendente","criado_em":"2026-03-01T12:00:00Z"}`
	r := httptest.NewRequest("POST", "/pedidos", strings.NewReader(body))

	var req models.CreateOrderRequest
	require.NoError(t, decodeJSON(r, &req))
	assert.Equal(t, []int64{1, 2}, req.DishIDs)
}

func TestDecodeJSONEchoedOrderPatch(t *testing.T) {
	body := `{"id":7,"usuario":3,"itens":[4],"total":"45.90","status":"preparando","modificado_em":"2026-03-01T12:00:00Z"}`
	r := httptest.NewRequest("PATCH", "/pedidos/7", strings.NewReader(body))

	var req models.UpdateOrderRequest
	require.NoError(t, decodeJSON(r, &req))
	require.NotNil(t, req.DishIDs)
	assert.Equal(t, []int64{4}, *req.DishIDs)
	require.NotNil(t, req.Status)
	assert.Equal(t, "preparando", *req.Status)
}
