package product

import (
	"database/sql"

	"go.uber.org/zap"

	"inventario/internal/config"
	"inventario/internal/product/controller"
	"inventario/internal/product/repository"
	"inventario/internal/product/service"
	"inventario/internal/product/usecase"
)

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	uploader service.ImageUploader,
	recorder service.Recorder,
	logger *zap.Logger,
) *controller.Controller {
	repo := repository.NewMySQLRepository(db, cfg.Database.LockRetryAttempts, logger)
	svc := service.NewService(repo, uploader, recorder, logger)
	uc := usecase.NewAdjustPricesUseCase(svc, logger, cfg.Product.PriceUpdateConcurrency)
	return controller.NewController(svc, uc, cfg.Server.UploadMaxBytes, logger)
}
