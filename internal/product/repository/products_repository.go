package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventario/internal/domain"
	"inventario/internal/errors"
	"inventario/internal/infrastructure/mysql"
)

const productColumns = `id, nombre, descripcion, precio, stock, oferta_diaria,
	vencimiento, imagen_url, created_at, updated_at`

type MySQLRepository struct {
	db                *sql.DB
	lockRetryAttempts int
	logger            *zap.Logger
}

func NewMySQLRepository(db *sql.DB, lockRetryAttempts int, logger *zap.Logger) *MySQLRepository {
	return &MySQLRepository{
		db:                db,
		lockRetryAttempts: lockRetryAttempts,
		logger:            logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(s rowScanner) (domain.Product, error) {
	var (
		p           domain.Product
		description sql.NullString
		expiresAt   sql.NullTime
		imageURL    sql.NullString
	)
	err := s.Scan(
		&p.ID, &p.Name, &description, &p.Price, &p.Stock, &p.DailyOffer,
		&expiresAt, &imageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}

	if description.Valid {
		p.Description = &description.String
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		p.ExpiresAt = &t
	}
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	return p, nil
}

// FindAll returns a page of products, newest id first.
func (r *MySQLRepository) FindAll(ctx context.Context, skip, take int) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM productos
		ORDER BY id DESC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, take, skip)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, take)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM productos WHERE id = ?`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, productNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return &p, nil
}

func (r *MySQLRepository) Insert(ctx context.Context, np domain.NewProduct) (*domain.Product, error) {
	query := `
		INSERT INTO productos (nombre, descripcion, precio, stock, oferta_diaria, vencimiento, imagen_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		np.Name, np.Description, np.Price, np.Stock, np.DailyOffer, dateArg(np.ExpiresAt), np.ImageURL,
	)
	if err != nil {
		if mysql.IsDuplicateKey(err) {
			return nil, duplicateName(np.Name)
		}
		return nil, fmt.Errorf("inserting product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting last insert id: %w", err)
	}

	return r.FindByID(ctx, int(id))
}

// InsertIfAbsent creates the product unless one with the same name exists.
// It reports whether a row was created.
func (r *MySQLRepository) InsertIfAbsent(ctx context.Context, np domain.NewProduct) (bool, error) {
	query := `
		INSERT INTO productos (nombre, descripcion, precio, stock, oferta_diaria, vencimiento, imagen_url)
		SELECT ?, ?, ?, ?, ?, ?, ? FROM DUAL
		WHERE NOT EXISTS (SELECT 1 FROM productos WHERE nombre = ?)`

	result, err := r.db.ExecContext(ctx, query,
		np.Name, np.Description, np.Price, np.Stock, np.DailyOffer, dateArg(np.ExpiresAt), np.ImageURL,
		np.Name,
	)
	if err != nil {
		return false, fmt.Errorf("seeding product %q: %w", np.Name, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// Update writes only the fields present in the patch.
func (r *MySQLRepository) Update(ctx context.Context, id int, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	var (
		sets []string
		args []interface{}
	)
	if patch.Name != nil {
		sets = append(sets, "nombre = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description.Set {
		sets = append(sets, "descripcion = ?")
		args = append(args, patch.Description.Value)
	}
	if patch.Price != nil {
		sets = append(sets, "precio = ?")
		args = append(args, *patch.Price)
	}
	if patch.Stock != nil {
		sets = append(sets, "stock = ?")
		args = append(args, *patch.Stock)
	}
	if patch.DailyOffer != nil {
		sets = append(sets, "oferta_diaria = ?")
		args = append(args, *patch.DailyOffer)
	}
	if patch.ExpiresAt.Set {
		sets = append(sets, "vencimiento = ?")
		args = append(args, dateArg(patch.ExpiresAt.Value))
	}
	if patch.ImageURL != nil {
		sets = append(sets, "imagen_url = ?")
		args = append(args, *patch.ImageURL)
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE productos SET %s WHERE id = ?`, strings.Join(sets, ", "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if mysql.IsDuplicateKey(err) && patch.Name != nil {
			return nil, duplicateName(*patch.Name)
		}
		return nil, fmt.Errorf("updating product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, productNotFound(id)
	}

	return r.FindByID(ctx, id)
}

// Delete removes the product and returns it as it was.
func (r *MySQLRepository) Delete(ctx context.Context, id int) (*domain.Product, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM productos WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("deleting product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, productNotFound(id)
	}

	return p, nil
}

// DecrementStock subtracts quantity in a single conditional write. A missing
// product and a short stock both leave the row untouched and report
// InsufficientStockError.
func (r *MySQLRepository) DecrementStock(ctx context.Context, id, quantity int) (*domain.Product, error) {
	query := `UPDATE productos SET stock = stock - ? WHERE id = ? AND stock >= ?`

	result, err := r.db.ExecContext(ctx, query, quantity, id, quantity)
	if err != nil {
		return nil, fmt.Errorf("decrementing stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, errors.NewInsufficientStockError(id, quantity)
	}

	// The decrement is committed; a cancelled caller must still get the row.
	return r.FindByID(context.WithoutCancel(ctx), id)
}

// AdjustPrice locks the row, computes the new price from the locked value and
// writes it back in the same transaction. Lock conflicts are retried.
func (r *MySQLRepository) AdjustPrice(ctx context.Context, id int, reprice func(decimal.Decimal) decimal.Decimal) (*domain.Product, error) {
	err := mysql.WithLockRetry(ctx, r.lockRetryAttempts, r.logger, func() error {
		return r.adjustPriceTx(ctx, id, reprice)
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(context.WithoutCancel(ctx), id)
}

func (r *MySQLRepository) adjustPriceTx(ctx context.Context, id int, reprice func(decimal.Decimal) decimal.Decimal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var price decimal.Decimal
	err = tx.QueryRowContext(ctx, `SELECT precio FROM productos WHERE id = ? FOR UPDATE`, id).Scan(&price)
	if stderrors.Is(err, sql.ErrNoRows) {
		return productNotFound(id)
	}
	if err != nil {
		return fmt.Errorf("locking product price: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE productos SET precio = ? WHERE id = ?`, reprice(price), id); err != nil {
		return fmt.Errorf("updating product price: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing price update: %w", err)
	}
	return nil
}

// dateArg keeps only the calendar date; the column is DATE.
func dateArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

func productNotFound(id int) *errors.NotFoundError {
	return errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
}

func duplicateName(name string) *errors.ConflictError {
	return errors.NewConflictError(fmt.Sprintf("a product named %q already exists", name))
}
