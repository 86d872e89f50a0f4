package controller

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"inventario/internal/domain"
	"inventario/internal/dto"
	"inventario/internal/web"
)

type Service interface {
	List(ctx context.Context, skip, take int) ([]domain.Product, error)
	GetByID(ctx context.Context, id int) (*domain.Product, error)
	Create(ctx context.Context, np domain.NewProduct, image *domain.Image) (*domain.Product, error)
	Update(ctx context.Context, id int, patch domain.ProductPatch, image *domain.Image) (*domain.Product, error)
	Delete(ctx context.Context, id int) (*domain.Product, error)
	DecrementStock(ctx context.Context, id, quantity int) (*domain.Product, error)
}

type AdjustPricesUseCase interface {
	AdjustPrices(ctx context.Context, ids []int, percentage float64) ([]domain.Product, error)
}

type Controller struct {
	service      Service
	adjustPrices AdjustPricesUseCase
	maxBodyBytes int64
	resp         *web.Responder
}

func NewController(service Service, adjustPrices AdjustPricesUseCase, maxBodyBytes int64, logger *zap.Logger) *Controller {
	return &Controller{
		service:      service,
		adjustPrices: adjustPrices,
		maxBodyBytes: maxBodyBytes,
		resp:         web.NewResponder(logger),
	}
}

// Routes mounts the product endpoints on r.
func (c *Controller) Routes(r chi.Router) {
	r.Get("/", c.List)
	r.Post("/", c.Create)
	r.Post("/actualizar-precios", c.AdjustPrices)
	r.Get("/{id}", c.Get)
	r.Put("/{id}", c.Update)
	r.Delete("/{id}", c.Delete)
	r.Post("/{id}/restar-stock", c.DecrementStock)
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	skip, take, err := parsePagination(r.URL.Query())
	if err != nil {
		c.resp.Error(w, r, err, "invalid request")
		return
	}

	products, err := c.service.List(r.Context(), skip, take)
	if err != nil {
		c.resp.Error(w, r, err, "could not list products")
		return
	}

	c.resp.JSON(w, http.StatusOK, dto.NewProductListResponse(products))
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		c.resp.Error(w, r, err, "invalid request")
		return
	}

	p, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		c.resp.Error(w, r, err, "could not get product")
		return
	}

	c.resp.JSON(w, http.StatusOK, dto.NewProductResponse(*p))
}

func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	fields, image, err := readProductBody(w, r, c.maxBodyBytes)
	if err != nil {
		c.resp.Error(w, r, err, "invalid request")
		return
	}

	np, err := parseNewProduct(fields)
	if err != nil {
		c.resp.Error(w, r, err, "invalid request")
		return
	}

	p, err := c.service.Create(r.Context(), np, image)
	if err != nil {
		c.resp.Error(w, r, err, "could not create product")
		return
	}

	c.resp.JSON(w, http.StatusCreated, dto.NewProductResponse(*p))
}

func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		c.resp.Error(w, r, err, "invalid request")
		return
	}

	fields, image, err := readProductBody(w, r, c.maxBodyBytes)
	if err != nil {
		c.resp.Error(w, r, err, "invalid request")
		return
	}

	patch, err := parseProductPatch(fields)
	if err != nil {
		c.resp.Error(w, r, err, "invalid request")
		return
	}

	p, err := c.service.Update(r.Context(), id, patch, image)
	if err != nil {
		c.resp.Error(w, r, err, "could not update product")
		return
	}

	c.resp.JSON(w, http.StatusOK, dto.NewProductResponse(*p))
}

func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		c.resp.Error(w, r, err, "invalid request")
		return
	}

	p, err := c.service.Delete(r.Context(), id)
	if err != nil {
		c.resp.Error(w, r, err, "could not delete product")
		return
	}

	c.resp.JSON(w, http.StatusOK, dto.NewProductResponse(*p))
}

func (c *Controller) DecrementStock(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		c.resp.Error(w, r, err, "invalid request")
		return
	}

	var req dto.DecrementStockRequest
	if err := decodeJSON(w, r, c.maxBodyBytes, &req); err != nil {
		if stderrors.Is(err, io.EOF) {
			err = invalidJSON()
		}
		c.resp.Error(w, r, err, "invalid request")
		return
	}

	quantity, err := parseQuantity(req.Cantidad)
	if err != nil {
		c.resp.Error(w, r, err, "invalid request")
		return
	}

	p, err := c.service.DecrementStock(r.Context(), id, quantity)
	if err != nil {
		c.resp.Error(w, r, err, "could not update stock")
		return
	}

	c.resp.Logger(r).Info("stock decremented",
		zap.Int("productId", id),
		zap.Int("quantity", quantity),
		zap.Int("remaining", p.Stock),
	)
	c.resp.JSON(w, http.StatusOK, dto.NewProductResponse(*p))
}

func (c *Controller) AdjustPrices(w http.ResponseWriter, r *http.Request) {
	var req dto.AdjustPricesRequest
	if err := decodeJSON(w, r, c.maxBodyBytes, &req); err != nil {
		if stderrors.Is(err, io.EOF) {
			err = invalidJSON()
		}
		c.resp.Error(w, r, err, "invalid request")
		return
	}

	ids, percentage, err := parseAdjustPrices(req.IDs, req.Porcentaje)
	if err != nil {
		c.resp.Error(w, r, err, "invalid request")
		return
	}

	products, err := c.adjustPrices.AdjustPrices(r.Context(), ids, percentage)
	if err != nil {
		c.resp.Error(w, r, err, "could not update prices")
		return
	}

	c.resp.JSON(w, http.StatusOK, dto.NewProductListResponse(products))
}
