package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventario/internal/domain"
)

type memoryStore struct {
	names   map[string]bool
	failOn  string
	inserts int
}

func (m *memoryStore) InsertIfAbsent(ctx context.Context, np domain.NewProduct) (bool, error) {
	if np.Name == m.failOn {
		return false, errors.New("connection reset")
	}
	if m.names[np.Name] {
		return false, nil
	}
	m.names[np.Name] = true
	m.inserts++
	return true, nil
}

func TestCatalogue(t *testing.T) {
	products := Catalogue()

	require.Len(t, products, 10)
	assert.Equal(t, "Mouse", products[1].Name)
	assert.Equal(t, "25.99", products[1].Price.StringFixed(2))
	assert.Equal(t, 50, products[1].Stock)
	require.NotNil(t, products[1].Description)
	assert.Equal(t, "Mouse gamer RGB", *products[1].Description)

	seen := map[string]bool{}
	for _, p := range products {
		assert.False(t, seen[p.Name], "duplicate name %s", p.Name)
		seen[p.Name] = true
	}
}

func TestRun_Idempotent(t *testing.T) {
	store := &memoryStore{names: map[string]bool{"Laptop": true}}

	created, err := Run(context.Background(), store, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 9, created)

	created, err = Run(context.Background(), store, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, 9, store.inserts)
}

func TestRun_StopsOnError(t *testing.T) {
	store := &memoryStore{names: map[string]bool{}, failOn: "Teclado"}

	created, err := Run(context.Background(), store, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Teclado")
	assert.Equal(t, 2, created)
}
