package repository

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventario/internal/domain"
	apperrors "inventario/internal/errors"
	"inventario/internal/testutil"
)

// Unit Tests

func TestNewMySQLRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLRepository(db, 3, zap.NewNop())

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
	assert.Equal(t, 3, repo.lockRetryAttempts)
}

func TestDateArg(t *testing.T) {
	assert.Nil(t, dateArg(nil))

	d := time.Date(2025, 12, 31, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "2025-12-31", dateArg(&d))
}

// Integration Tests

func setupRepo(t *testing.T) *MySQLRepository {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	return NewMySQLRepository(db, 3, zap.NewNop())
}

func mustInsert(t *testing.T, repo *MySQLRepository, name, price string, stock int) *domain.Product {
	t.Helper()
	p, err := repo.Insert(context.Background(), domain.NewProduct{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func TestRepository_InsertAndFindByID(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	desc := "Mouse gamer RGB"
	expires := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	created, err := repo.Insert(ctx, domain.NewProduct{
		Name:        "Mouse",
		Description: &desc,
		Price:       decimal.RequireFromString("25.99"),
		Stock:       50,
		DailyOffer:  true,
		ExpiresAt:   &expires,
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mouse", found.Name)
	require.NotNil(t, found.Description)
	assert.Equal(t, desc, *found.Description)
	assert.Equal(t, "25.99", found.Price.StringFixed(2))
	assert.Equal(t, 50, found.Stock)
	assert.True(t, found.DailyOffer)
	require.NotNil(t, found.ExpiresAt)
	assert.Equal(t, "2026-01-15", found.ExpiresAt.Format("2006-01-02"))
	assert.Nil(t, found.ImageURL)
}

func TestRepository_Insert_DuplicateName(t *testing.T) {
	repo := setupRepo(t)
	mustInsert(t, repo, "Teclado", "80", 20)

	_, err := repo.Insert(context.Background(), domain.NewProduct{Name: "Teclado", Price: decimal.NewFromInt(1)})

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.FindByID(context.Background(), 999999)

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestRepository_FindAll_OrderedByIDDescWithWindow(t *testing.T) {
	repo := setupRepo(t)
	var ids []int
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		ids = append(ids, mustInsert(t, repo, name, "1", 1).ID)
	}

	page, err := repo.FindAll(context.Background(), 1, 2)
	require.NoError(t, err)

	require.Len(t, page, 2)
	assert.Equal(t, ids[3], page[0].ID)
	assert.Equal(t, ids[2], page[1].ID)
}

func TestRepository_FindAll_PastTheEnd(t *testing.T) {
	repo := setupRepo(t)
	mustInsert(t, repo, "A", "1", 1)

	page, err := repo.FindAll(context.Background(), 10, 20)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestRepository_Update_OnlyPresentFields(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	desc := "old"
	created, err := repo.Insert(ctx, domain.NewProduct{
		Name: "Monitor", Description: &desc, Price: decimal.NewFromInt(300), Stock: 15,
	})
	require.NoError(t, err)

	stock := 12
	updated, err := repo.Update(ctx, created.ID, domain.ProductPatch{
		Stock:       &stock,
		Description: domain.Null[string](),
	})
	require.NoError(t, err)

	assert.Equal(t, "Monitor", updated.Name)
	assert.Equal(t, "300.00", updated.Price.StringFixed(2))
	assert.Equal(t, 12, updated.Stock)
	assert.Nil(t, updated.Description)
}

func TestRepository_Update_SameValuesStillFound(t *testing.T) {
	repo := setupRepo(t)
	created := mustInsert(t, repo, "Webcam", "45", 25)

	stock := 25
	updated, err := repo.Update(context.Background(), created.ID, domain.ProductPatch{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 25, updated.Stock)
}

func TestRepository_Update_NotFound(t *testing.T) {
	repo := setupRepo(t)

	stock := 1
	_, err := repo.Update(context.Background(), 999999, domain.ProductPatch{Stock: &stock})

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestRepository_Delete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := mustInsert(t, repo, "Silla gamer", "200", 10)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Silla gamer", deleted.Name)

	_, err = repo.FindByID(ctx, created.ID)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	_, err = repo.Delete(ctx, created.ID)
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestRepository_DecrementStock(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := mustInsert(t, repo, "Mouse", "25.99", 50)

	updated, err := repo.DecrementStock(ctx, created.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Stock)

	_, err = repo.DecrementStock(ctx, created.ID, 1000)
	_, ok := apperrors.IsInsufficientStockError(err)
	assert.True(t, ok)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, found.Stock)
}

func TestRepository_DecrementStock_MissingProduct(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.DecrementStock(context.Background(), 999999, 1)

	_, ok := apperrors.IsInsufficientStockError(err)
	assert.True(t, ok)
}

func TestRepository_DecrementStock_ConcurrentNeverNegative(t *testing.T) {
	repo := setupRepo(t)
	created := mustInsert(t, repo, "Auriculares", "60", 5)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.DecrementStock(context.Background(), created.ID, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, found.Stock)
}

func TestRepository_AdjustPrice(t *testing.T) {
	repo := setupRepo(t)
	created := mustInsert(t, repo, "Laptop", "100", 10)

	updated, err := repo.AdjustPrice(context.Background(), created.ID, func(p decimal.Decimal) decimal.Decimal {
		return domain.ApplyPercentage(p, 10)
	})
	require.NoError(t, err)
	assert.Equal(t, "110.00", updated.Price.StringFixed(2))
}

func TestRepository_AdjustPrice_NotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.AdjustPrice(context.Background(), 999999, func(p decimal.Decimal) decimal.Decimal { return p })

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestRepository_InsertIfAbsent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	np := domain.NewProduct{Name: "Disco SSD", Price: decimal.NewFromInt(120), Stock: 20}

	created, err := repo.InsertIfAbsent(ctx, np)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.InsertIfAbsent(ctx, np)
	require.NoError(t, err)
	assert.False(t, created)
}
