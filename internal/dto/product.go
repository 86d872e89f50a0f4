package dto

import (
	"encoding/json"
	"time"

	"inventario/internal/domain"
)

type ProductResponse struct {
	ID           int        `json:"id"`
	Nombre       string     `json:"nombre"`
	Descripcion  *string    `json:"descripcion"`
	Precio       float64    `json:"precio"`
	Stock        int        `json:"stock"`
	OfertaDiaria bool       `json:"ofertaDiaria"`
	Vencimiento  *time.Time `json:"vencimiento"`
	ImagenURL    *string    `json:"imagenUrl"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Values that are not numbers or strings stay raw so the parser can tell
// absent, null and wrongly typed apart.
type DecrementStockRequest struct {
	Cantidad json.RawMessage `json:"cantidad"`
}

type AdjustPricesRequest struct {
	IDs        json.RawMessage `json:"ids"`
	Porcentaje json.RawMessage `json:"porcentaje"`
}

func NewProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Nombre:       p.Name,
		Descripcion:  p.Description,
		Precio:       p.Price.InexactFloat64(),
		Stock:        p.Stock,
		OfertaDiaria: p.DailyOffer,
		Vencimiento:  p.ExpiresAt,
		ImagenURL:    p.ImageURL,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func NewProductListResponse(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, NewProductResponse(p))
	}
	return out
}
