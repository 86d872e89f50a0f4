// Package seed loads the demo catalogue into an empty store.
package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventario/internal/domain"
)

type Store interface {
	InsertIfAbsent(ctx context.Context, np domain.NewProduct) (bool, error)
}

type item struct {
	name        string
	description string
	price       string
	stock       int
}

var catalogue = []item{
	{"Laptop", "Laptop gamer con 16GB RAM", "1500.50", 10},
	{"Mouse", "Mouse gamer RGB", "25.99", 50},
	{"Teclado", "Teclado mecánico", "80.00", 20},
	{"Monitor", "Monitor 27 pulgadas 144Hz", "300.00", 15},
	{"Auriculares", "Auriculares inalámbricos con micrófono", "60.00", 30},
	{"Silla gamer", "Silla ergonómica para gaming", "200.00", 10},
	{"Webcam", "Webcam Full HD", "45.00", 25},
	{"Disco SSD", "SSD 1TB NVMe", "120.00", 20},
	{"Memoria RAM", "16GB DDR4", "75.00", 40},
	{"Fuente de poder", "Fuente 650W 80+ Gold", "90.00", 15},
}

func Catalogue() []domain.NewProduct {
	out := make([]domain.NewProduct, 0, len(catalogue))
	for _, it := range catalogue {
		description := it.description
		out = append(out, domain.NewProduct{
			Name:        it.name,
			Description: &description,
			Price:       decimal.RequireFromString(it.price),
			Stock:       it.stock,
		})
	}
	return out
}

// Run inserts every catalogue product whose nombre is not taken yet and
// returns how many were created. Running it twice creates nothing new.
func Run(ctx context.Context, store Store, logger *zap.Logger) (int, error) {
	created := 0
	for _, np := range Catalogue() {
		ok, err := store.InsertIfAbsent(ctx, np)
		if err != nil {
			return created, fmt.Errorf("seeding %q: %w", np.Name, err)
		}
		if ok {
			created++
			logger.Debug("product seeded", zap.String("nombre", np.Name))
		}
	}

	logger.Info("seed finished", zap.Int("created", created), zap.Int("total", len(catalogue)))
	return created, nil
}
