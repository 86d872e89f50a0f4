package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventario/internal/domain"
	"inventario/internal/errors"
)

type Repository interface {
	FindAll(ctx context.Context, skip, take int) ([]domain.Product, error)
	FindByID(ctx context.Context, id int) (*domain.Product, error)
	Insert(ctx context.Context, np domain.NewProduct) (*domain.Product, error)
	Update(ctx context.Context, id int, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id int) (*domain.Product, error)
	DecrementStock(ctx context.Context, id, quantity int) (*domain.Product, error)
	AdjustPrice(ctx context.Context, id int, reprice func(decimal.Decimal) decimal.Decimal) (*domain.Product, error)
}

type ImageUploader interface {
	Upload(ctx context.Context, image domain.Image) (string, error)
}

type Recorder interface {
	StockRejected()
	PriceAdjusted(result string)
}

type ProductService struct {
	repo     Repository
	uploader ImageUploader
	recorder Recorder
	logger   *zap.Logger
}

func NewService(repo Repository, uploader ImageUploader, recorder Recorder, logger *zap.Logger) *ProductService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ProductService{
		repo:     repo,
		uploader: uploader,
		recorder: recorder,
		logger:   logger,
	}
}

const defaultTake = 20

// List returns a window of products, newest first. take <= 0 means 20.
func (s *ProductService) List(ctx context.Context, skip, take int) ([]domain.Product, error) {
	if take <= 0 {
		take = defaultTake
	}
	if skip < 0 {
		skip = 0
	}

	products, err := s.repo.FindAll(ctx, skip, take)
	if err != nil {
		return nil, errors.NewInternalError("querying products", err)
	}
	return products, nil
}

func (s *ProductService) GetByID(ctx context.Context, id int) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "getting product")
	}
	return p, nil
}

// Create uploads the image first, when present, so a product is never stored
// without the image it was sent with.
func (s *ProductService) Create(ctx context.Context, np domain.NewProduct, image *domain.Image) (*domain.Product, error) {
	if image != nil {
		url, err := s.uploader.Upload(ctx, *image)
		if err != nil {
			return nil, err
		}
		np.ImageURL = &url
	}

	p, err := s.repo.Insert(ctx, np)
	if err != nil {
		return nil, storeError(err, "creating product")
	}

	s.logger.Info("product created", zap.Int("productId", p.ID), zap.Bool("withImage", image != nil))
	return p, nil
}

// Update checks the product exists before uploading a replacement image.
func (s *ProductService) Update(ctx context.Context, id int, patch domain.ProductPatch, image *domain.Image) (*domain.Product, error) {
	if image != nil {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			return nil, storeError(err, "updating product")
		}

		url, err := s.uploader.Upload(ctx, *image)
		if err != nil {
			return nil, err
		}
		patch.ImageURL = &url
	}

	p, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, "updating product")
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id int) (*domain.Product, error) {
	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, storeError(err, "deleting product")
	}

	s.logger.Info("product deleted", zap.Int("productId", id))
	return p, nil
}

func (s *ProductService) DecrementStock(ctx context.Context, id, quantity int) (*domain.Product, error) {
	if quantity <= 0 {
		return nil, errors.NewValidationError("invalid quantity", errors.ValidationDetail{
			Field:   "cantidad",
			Message: "must be a positive integer",
		})
	}

	p, err := s.repo.DecrementStock(ctx, id, quantity)
	if err != nil {
		if _, ok := errors.IsInsufficientStockError(err); ok {
			s.recorder.StockRejected()
		}
		return nil, storeError(err, "decrementing stock")
	}
	return p, nil
}

// AdjustPrice applies percentage to the current price of one product.
func (s *ProductService) AdjustPrice(ctx context.Context, id int, percentage float64) (*domain.Product, error) {
	p, err := s.repo.AdjustPrice(ctx, id, func(price decimal.Decimal) decimal.Decimal {
		return domain.ApplyPercentage(price, percentage)
	})
	if err != nil {
		if _, ok := errors.IsNotFoundError(err); ok {
			s.recorder.PriceAdjusted(domain.PriceAdjustSkipped)
			return nil, err
		}
		s.recorder.PriceAdjusted(domain.PriceAdjustFailed)
		return nil, errors.NewInternalError(fmt.Sprintf("adjusting price of product %d", id), err)
	}

	s.recorder.PriceAdjusted(domain.PriceAdjustApplied)
	return p, nil
}

// storeError passes domain errors through and wraps everything else.
func storeError(err error, message string) error {
	if _, ok := errors.IsNotFoundError(err); ok {
		return err
	}
	if _, ok := errors.IsConflictError(err); ok {
		return err
	}
	if _, ok := errors.IsInsufficientStockError(err); ok {
		return err
	}
	if _, ok := errors.IsValidationError(err); ok {
		return err
	}
	return errors.NewInternalError(message, err)
}

type nopRecorder struct{}

func (nopRecorder) StockRejected()       {}
func (nopRecorder) PriceAdjusted(string) {}
