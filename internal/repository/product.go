package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/karyanastore/storefront/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, price, category, stock, image_url
		FROM products ORDER BY id`

	getProductByIDSQL = `SELECT id, name, price, category, stock, image_url
		FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT id, name, price, category, stock, image_url
		FROM products WHERE id = ANY($1)`

	createProductSQL = `INSERT INTO products (id, name, price, category, stock, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)`

	updateProductSQL = `UPDATE products
		SET name = $2, price = $3, category = $4, stock = $5, image_url = $6, updated_at = now()
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	// Atomic single-row update; GREATEST floors tracked stock at zero so
	// callers never observe a negative count. Untracked stock stays NULL.
	adjustStockSQL = `UPDATE products
		SET stock = GREATEST(stock + $2, 0), updated_at = now()
		WHERE id = $1 AND stock IS NOT NULL`

	productExistsSQL = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its canonical identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id product.ID) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id.String())
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []product.ID) ([]product.Product, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, keys)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create inserts a new catalog entry.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID.String(), p.Name, p.Price, p.Category, p.Stock, p.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update replaces a catalog entry's mutable fields.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID.String(), p.Name, p.Price, p.Category, p.Stock, p.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a catalog entry.
func (r *ProductRepository) Delete(ctx context.Context, id product.ID) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id.String())
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// AdjustStock atomically adds delta to the product's stock counter,
// flooring at zero. Untracked products (NULL stock) are left alone;
// a missing product yields product.ErrNotFound.
func (r *ProductRepository) AdjustStock(ctx context.Context, id product.ID, delta int64) error {
	tag, err := r.pool.Exec(ctx, adjustStockSQL, id.String(), delta)
	if err != nil {
		return fmt.Errorf("adjusting stock for product %q: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// No row updated: either the product is gone or stock is untracked.
	var exists bool
	if err := r.pool.QueryRow(ctx, productExistsSQL, id.String()).Scan(&exists); err != nil {
		return fmt.Errorf("checking product %q: %w", id, err)
	}
	if !exists {
		return product.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		id    string
		price decimal.Decimal
	)
	err := row.Scan(&id, &p.Name, &price, &p.Category, &p.Stock, &p.ImageURL)
	if err != nil {
		return p, err
	}
	p.ID, err = product.ParseID(id)
	p.Price = price
	return p, err
}
