package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	perrors "github.com/stockit/inventory-service/internal/errors"
)

const productColumns = `id, name, sku, quantity, price, description, threshold_quantity, status, created_at, updated_at`

// uniqueViolation is the PostgreSQL error code for a unique constraint violation.
const uniqueViolation = "23505"

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
	}
}

// FindBySKU retrieves a product by its SKU.
// Returns ErrProductNotFound if no product exists with the given SKU.
func (p *PgStore) FindBySKU(ctx context.Context, sku string) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`
	product, err := scanProduct(p.db.QueryRow(ctx, query, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by SKU: %w", err)
	}
	return product, nil
}

// FindAll retrieves all products ordered by SKU.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY sku`
	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product rows: %w", err)
	}
	return products, nil
}

// Insert adds a new product to the system. The unique index on sku is the
// authoritative uniqueness guard; a violation maps to ErrProductExists.
func (p *PgStore) Insert(ctx context.Context, params InsertParams) (*Product, error) {
	query := `INSERT INTO products (name, sku, quantity, price, description, threshold_quantity)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING ` + productColumns
	product, err := scanProduct(p.db.QueryRow(ctx, query,
		params.Name, params.SKU, params.Quantity, params.Price, params.Description, params.ThresholdQuantity))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, perrors.ErrProductExists
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	return product, nil
}

// Update applies a partial patch to an existing product. Nil patch fields keep
// their stored values via COALESCE.
// Returns ErrProductNotFound if no product exists with the given SKU.
func (p *PgStore) Update(ctx context.Context, sku string, patch UpdateParams) (*Product, error) {
	query := `UPDATE products
	          SET name               = COALESCE($2, name),
	              quantity           = COALESCE($3, quantity),
	              price              = COALESCE($4, price),
	              description        = COALESCE($5, description),
	              threshold_quantity = COALESCE($6, threshold_quantity),
	              updated_at         = now()
	          WHERE sku = $1
	          RETURNING ` + productColumns
	product, err := scanProduct(p.db.QueryRow(ctx, query,
		sku, patch.Name, patch.Quantity, patch.Price, patch.Description, patch.ThresholdQuantity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// AdjustQuantity adds delta to the product's quantity in a single conditional
// UPDATE, so the lower-bound check and the write cannot be interleaved by a
// concurrent adjustment.
func (p *PgStore) AdjustQuantity(ctx context.Context, sku string, delta int64) (*Product, error) {
	query := `UPDATE products
	          SET quantity = quantity + $2, updated_at = now()
	          WHERE sku = $1 AND quantity + $2 >= 0
	          RETURNING ` + productColumns
	product, err := scanProduct(p.db.QueryRow(ctx, query, sku, delta))
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to adjust product quantity: %w", err)
	}
	// No row matched: either the SKU is unknown or the bound check refused the
	// adjustment. Probe existence to report the right error.
	var exists bool
	if probeErr := p.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1)`, sku).Scan(&exists); probeErr != nil {
		return nil, fmt.Errorf("failed to adjust product quantity: %w", probeErr)
	}
	if exists {
		return nil, perrors.ErrInsufficientQuantity
	}
	return nil, perrors.ErrProductNotFound
}

// SetStatus sets the product's status unconditionally.
// Returns ErrProductNotFound if no product exists with the given SKU.
func (p *PgStore) SetStatus(ctx context.Context, sku string, status Status) (*Product, error) {
	query := `UPDATE products SET status = $2, updated_at = now() WHERE sku = $1 RETURNING ` + productColumns
	product, err := scanProduct(p.db.QueryRow(ctx, query, sku, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to set product status: %w", err)
	}
	return product, nil
}

// DeleteBySKU removes a product permanently.
// Returns ErrProductNotFound if no product exists with the given SKU.
func (p *PgStore) DeleteBySKU(ctx context.Context, sku string) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE sku = $1`, sku)
	if err != nil {
		return fmt.Errorf("failed to delete product by SKU: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// scanProduct scans a single product row in productColumns order.
func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var status string
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.SKU,
		&p.Quantity,
		&p.Price,
		&p.Description,
		&p.ThresholdQuantity,
		&status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = Status(status)
	return &p, nil
}
