package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"inventario/internal/config"
	"inventario/internal/infrastructure/cloudinary"
	"inventario/internal/infrastructure/logger"
	"inventario/internal/infrastructure/metrics"
	"inventario/internal/infrastructure/mysql"
	"inventario/internal/product"
	"inventario/internal/purchase"
	"inventario/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mysql.Open(cfg.Database)
	if err != nil {
		zapLogger.Fatal("opening database", zap.Error(err))
	}
	gateway := mysql.NewGateway(db, cfg.Database.ConnectAttempts, cfg.Database.RetryDelay, zapLogger)
	if err := gateway.Connect(ctx); err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer gateway.Disconnect()

	if cfg.Database.AutoMigrate {
		if err := mysql.Migrate(ctx, db, zapLogger); err != nil {
			zapLogger.Fatal("migrating database", zap.Error(err))
		}
	}

	m, err := metrics.New(nil)
	if err != nil {
		zapLogger.Fatal("registering metrics", zap.Error(err))
	}
	if err := m.WatchDB(db); err != nil {
		zapLogger.Fatal("registering db metrics", zap.Error(err))
	}

	uploader, err := cloudinary.New(cfg.Cloudinary, zapLogger)
	if err != nil {
		zapLogger.Fatal("creating image uploader", zap.Error(err))
	}

	productCtrl := product.NewModule(db, cfg, uploader, m, zapLogger)
	purchaseCtrl := purchase.NewModule(db, cfg.Server.UploadMaxBytes, zapLogger)

	router := server.NewRouter(server.Deps{
		Products:  productCtrl,
		Purchases: purchaseCtrl,
		DB:        db,
		Metrics:   m,
		CORS:      cfg.CORS,
		Logger:    zapLogger,
	})

	srv := server.New(cfg.Server.Port, router, zapLogger)
	if err := srv.Run(ctx, shutdownTimeout); err != nil {
		zapLogger.Error("server stopped with error", zap.Error(err))
		return
	}

	zapLogger.Info("server stopped gracefully")
}
