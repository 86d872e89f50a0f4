package purchase

import (
	"database/sql"

	"go.uber.org/zap"

	"inventario/internal/purchase/controller"
	"inventario/internal/purchase/repository"
	"inventario/internal/purchase/service"
)

func NewModule(db *sql.DB, maxBodyBytes int64, logger *zap.Logger) *controller.Controller {
	repo := repository.NewMySQLPurchaseRepository(db)
	svc := service.NewService(repo, logger)
	return controller.NewController(svc, maxBodyBytes, logger)
}
