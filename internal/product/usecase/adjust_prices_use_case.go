package usecase

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"inventario/internal/domain"
	"inventario/internal/errors"
)

type PriceService interface {
	AdjustPrice(ctx context.Context, id int, percentage float64) (*domain.Product, error)
}

type AdjustPricesUseCase struct {
	service     PriceService
	logger      *zap.Logger
	concurrency int
}

func NewAdjustPricesUseCase(service PriceService, logger *zap.Logger, concurrency int) *AdjustPricesUseCase {
	if concurrency < 1 {
		concurrency = 1
	}
	return &AdjustPricesUseCase{
		service:     service,
		logger:      logger,
		concurrency: concurrency,
	}
}

// AdjustPrices applies percentage to every product in ids. Each id is its own
// transaction; ids that do not exist are skipped. Results keep the order of
// the first occurrence of each id.
//
// On the first failure the remaining legs are cancelled and a BulkUpdateError
// lists the ids already committed.
func (uc *AdjustPricesUseCase) AdjustPrices(ctx context.Context, ids []int, percentage float64) ([]domain.Product, error) {
	ids = dedupe(ids)
	uc.logger.Info("price adjustment started", zap.Int("productCount", len(ids)), zap.Float64("percentage", percentage))

	// Each leg writes only its own index.
	results := make([]*domain.Product, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			p, err := uc.service.AdjustPrice(gctx, id, percentage)
			if err != nil {
				if _, ok := errors.IsNotFoundError(err); ok {
					uc.logger.Debug("product not found, skipping", zap.Int("productId", id))
					return nil
				}
				return err
			}

			results[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var done []int
		for i, p := range results {
			if p != nil {
				done = append(done, ids[i])
			}
		}
		return nil, errors.NewBulkUpdateError(done, err)
	}

	products := make([]domain.Product, 0, len(ids))
	for _, p := range results {
		if p != nil {
			products = append(products, *p)
		}
	}

	uc.logger.Info("price adjustment finished", zap.Int("updated", len(products)), zap.Int("skipped", len(ids)-len(products)))
	return products, nil
}

func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
