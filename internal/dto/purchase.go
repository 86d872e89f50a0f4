package dto

import (
	"encoding/json"
	"time"

	"inventario/internal/domain"
)

type RecordPurchaseRequest struct {
	Items json.RawMessage `json:"items"`
}

type PurchaseResponse struct {
	ID    int             `json:"id"`
	Items json.RawMessage `json:"items"`
	Date  time.Time       `json:"date"`
}

type ClearPurchasesResponse struct {
	Deleted int64 `json:"deleted"`
}

func NewPurchaseResponse(p domain.Purchase) PurchaseResponse {
	return PurchaseResponse{ID: p.ID, Items: p.Items, Date: p.Date}
}

func NewPurchaseListResponse(purchases []domain.Purchase) []PurchaseResponse {
	out := make([]PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, NewPurchaseResponse(p))
	}
	return out
}
