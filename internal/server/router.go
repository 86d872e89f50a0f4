package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"inventario/internal/config"
	apperrors "inventario/internal/errors"
	"inventario/internal/web"
)

const healthTimeout = 2 * time.Second

// RouteMounter is implemented by every module controller.
type RouteMounter interface {
	Routes(r chi.Router)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Metrics interface {
	requestMetrics
	Handler() http.Handler
}

type Deps struct {
	Products  RouteMounter
	Purchases RouteMounter
	DB        Pinger
	Metrics   Metrics
	CORS      config.CORSConfig
	Logger    *zap.Logger
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func NewRouter(d Deps) http.Handler {
	resp := web.NewResponder(d.Logger)

	if d.CORS.AllowAnyOrigin {
		d.Logger.Warn("CORS_ALLOW_ANY_ORIGIN is enabled; every origin is allowed")
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(instrument(d.Metrics))
	r.Use(accessLog(d.Logger))
	r.Use(recoverer(resp))
	r.Use(cors(d.CORS))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		resp.Error(w, r, apperrors.NewNotFoundError("route not found"), "route not found")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := d.DB.PingContext(ctx); err != nil {
			resp.Logger(r).Warn("health check failed", zap.Error(err))
			resp.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Database: "down"})
			return
		}
		resp.JSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "up"})
	})
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/api/productos", d.Products.Routes)
	r.Route("/api/compras", d.Purchases.Routes)

	return r
}
