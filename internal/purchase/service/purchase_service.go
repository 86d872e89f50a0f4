package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"inventario/internal/domain"
	apperrors "inventario/internal/errors"
)

type Repository interface {
	Insert(ctx context.Context, items json.RawMessage) (*domain.Purchase, error)
	FindAll(ctx context.Context) ([]domain.Purchase, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type PurchaseService struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *PurchaseService {
	return &PurchaseService{repo: repo, logger: logger}
}

func (s *PurchaseService) Record(ctx context.Context, items json.RawMessage) (*domain.Purchase, error) {
	p, err := s.repo.Insert(ctx, items)
	if err != nil {
		return nil, apperrors.NewInternalError("recording purchase", err)
	}

	s.logger.Info("purchase recorded", zap.Int("purchaseId", p.ID))
	return p, nil
}

// History returns every purchase, newest first.
func (s *PurchaseService) History(ctx context.Context) ([]domain.Purchase, error) {
	purchases, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("querying purchases", err)
	}
	return purchases, nil
}

func (s *PurchaseService) Clear(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, apperrors.NewInternalError("clearing purchases", err)
	}

	s.logger.Info("purchase history cleared", zap.Int64("deleted", deleted))
	return deleted, nil
}
