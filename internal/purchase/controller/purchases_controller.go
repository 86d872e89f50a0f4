package controller

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"inventario/internal/domain"
	"inventario/internal/dto"
	apperrors "inventario/internal/errors"
	"inventario/internal/web"
)

type Service interface {
	Record(ctx context.Context, items json.RawMessage) (*domain.Purchase, error)
	History(ctx context.Context) ([]domain.Purchase, error)
	Clear(ctx context.Context) (int64, error)
}

type Controller struct {
	service      Service
	maxBodyBytes int64
	resp         *web.Responder
}

func NewController(service Service, maxBodyBytes int64, logger *zap.Logger) *Controller {
	return &Controller{
		service:      service,
		maxBodyBytes: maxBodyBytes,
		resp:         web.NewResponder(logger),
	}
}

func (c *Controller) Routes(r chi.Router) {
	r.Post("/", c.Record)
	r.Get("/", c.History)
	r.Delete("/", c.Clear)
}

func (c *Controller) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordPurchaseRequest
	r.Body = http.MaxBytesReader(w, r.Body, c.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			c.resp.ValidationError(w, r, "request body too large", apperrors.ValidationDetail{
				Field:   "body",
				Message: fmt.Sprintf("must not exceed %d bytes", tooLarge.Limit),
			})
			return
		}
		c.resp.ValidationError(w, r, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	items := bytes.TrimSpace(req.Items)
	if len(items) == 0 || items[0] != '[' {
		c.resp.ValidationError(w, r, "invalid request", apperrors.ValidationDetail{
			Field:   "items",
			Message: "must be an array",
		})
		return
	}

	p, err := c.service.Record(r.Context(), items)
	if err != nil {
		c.resp.Error(w, r, err, "could not record purchase")
		return
	}

	c.resp.JSON(w, http.StatusCreated, dto.NewPurchaseResponse(*p))
}

func (c *Controller) History(w http.ResponseWriter, r *http.Request) {
	purchases, err := c.service.History(r.Context())
	if err != nil {
		c.resp.Error(w, r, err, "could not list purchases")
		return
	}

	c.resp.JSON(w, http.StatusOK, dto.NewPurchaseListResponse(purchases))
}

func (c *Controller) Clear(w http.ResponseWriter, r *http.Request) {
	deleted, err := c.service.Clear(r.Context())
	if err != nil {
		c.resp.Error(w, r, err, "could not clear purchases")
		return
	}

	c.resp.JSON(w, http.StatusOK, dto.ClearPurchasesResponse{Deleted: deleted})
}
