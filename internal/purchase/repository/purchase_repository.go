package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"inventario/internal/domain"
	"inventario/internal/errors"
)

type MySQLPurchaseRepository struct {
	db *sql.DB
}

func NewMySQLPurchaseRepository(db *sql.DB) *MySQLPurchaseRepository {
	return &MySQLPurchaseRepository{db: db}
}

func (r *MySQLPurchaseRepository) Insert(ctx context.Context, items json.RawMessage) (*domain.Purchase, error) {
	result, err := r.db.ExecContext(ctx, `INSERT INTO purchases (items) VALUES (?)`, []byte(items))
	if err != nil {
		return nil, fmt.Errorf("inserting purchase: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting last insert id: %w", err)
	}

	return r.FindByID(ctx, int(id))
}

func (r *MySQLPurchaseRepository) FindByID(ctx context.Context, id int) (*domain.Purchase, error) {
	var p domain.Purchase
	err := r.db.QueryRowContext(ctx, `SELECT id, items, date FROM purchases WHERE id = ?`, id).
		Scan(&p.ID, &p.Items, &p.Date)

	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError(fmt.Sprintf("purchase with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying purchase by id: %w", err)
	}

	return &p, nil
}

// FindAll returns every purchase, newest first.
func (r *MySQLPurchaseRepository) FindAll(ctx context.Context) ([]domain.Purchase, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, items, date FROM purchases ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying purchases: %w", err)
	}
	defer rows.Close()

	purchases := []domain.Purchase{}
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(&p.ID, &p.Items, &p.Date); err != nil {
			return nil, fmt.Errorf("scanning purchase row: %w", err)
		}
		purchases = append(purchases, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating purchase rows: %w", err)
	}

	return purchases, nil
}

func (r *MySQLPurchaseRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM purchases`)
	if err != nil {
		return 0, fmt.Errorf("deleting purchases: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected, nil
}
