package models

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateDish(t *testing.T) {
	tests := []struct {
		name     string
		dishName string
		price    string
		wantErr  error
	}{
		{"valid", "Feijoada", "45.90", nil},
		{"valid cheap", "Pastel", "0.01", nil},
		{"name at limit", strings.Repeat("a", MaxDishNameLength), "10.00", nil},
		{"empty name", "", "10.00", ErrInvalidName},
		{"whitespace name", "   ", "10.00", ErrInvalidName},
		{"name too long", strings.Repeat("a", MaxDishNameLength+1), "10.00", ErrInvalidName},
		{"zero price", "Feijoada", "0", ErrInvalidPrice},
		{"negative price", "Feijoada", "-1.50", ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDish(tt.dishName, decimal.RequireFromString(tt.price))
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
