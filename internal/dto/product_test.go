package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/domain"
)

func TestNewProductResponse_JSONShape(t *testing.T) {
	url := "https://cdn.example/mouse.png"
	p := domain.Product{
		ID:         4,
		Name:       "Mouse",
		Price:      decimal.RequireFromString("25.99"),
		Stock:      40,
		DailyOffer: true,
		ImageURL:   &url,
		CreatedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := json.Marshal(NewProductResponse(p))
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Mouse", got["nombre"])
	assert.Equal(t, 25.99, got["precio"])
	assert.Equal(t, float64(40), got["stock"])
	assert.Equal(t, true, got["ofertaDiaria"])
	assert.Equal(t, url, got["imagenUrl"])
	assert.Nil(t, got["descripcion"])
	assert.Nil(t, got["vencimiento"])
}

func TestNewProductListResponse_EmptyIsArray(t *testing.T) {
	raw, err := json.Marshal(NewProductListResponse(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}
