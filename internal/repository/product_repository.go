package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/models"
)

type productRepo struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name required", ErrInvalidInput)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: product price should be positive", ErrInvalidInput)
	}

	sql := `
		INSERT INTO products (
			name,
			category,
			price,
			image,
			active,
			description,
			created_at,
			updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING product_id
	`

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	err := r.db.QueryRow(ctx, sql,
		p.Name,
		p.Category,
		p.Price,
		p.Image,
		p.Active,
		p.Description,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ProductID)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetByID returns an active product together with its size rows, ordered
// PP, P, M, G, GG with unknown labels last.
func (r *productRepo) GetByID(ctx context.Context, id int) (*models.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	sql := `
		SELECT
			product_id,
			name,
			COALESCE(category, ''),
			price,
			COALESCE(image, ''),
			active,
			COALESCE(description, ''),
			created_at,
			updated_at
		FROM products WHERE product_id = $1 AND active = TRUE
		`

	var product models.Product

	err := r.db.QueryRow(ctx, sql, id).Scan(
		&product.ProductID,
		&product.Name,
		&product.Category,
		&product.Price,
		&product.Image,
		&product.Active,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by id %d: %w", id, err)
	}

	sizes, err := r.ListSizes(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Sizes = sizes

	return &product, nil
}

func (r *productRepo) GetAll(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	sql := `
    SELECT
        product_id,
        name,
		COALESCE(category, ''),
		price,
		COALESCE(image, ''),
		active,
		COALESCE(description, ''),
		created_at,
		updated_at
    FROM products
`
	if activeOnly {
		sql += ` WHERE active = TRUE`
	}
	sql += ` ORDER BY product_id`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}

	defer rows.Close()

	var products []models.Product

	for rows.Next() {
		var p models.Product

		err := rows.Scan(&p.ProductID,
			&p.Name,
			&p.Category,
			&p.Price,
			&p.Image,
			&p.Active,
			&p.Description,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return products, nil
}

// Update applies only the fields set in patch.
func (r *productRepo) Update(ctx context.Context, id int, patch ProductPatch) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	var (
		fields []string
		params []interface{}
	)

	add := func(column string, value interface{}) {
		params = append(params, value)
		fields = append(fields, fmt.Sprintf("%s = $%d", column, len(params)))
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			return fmt.Errorf("%w: product name required", ErrInvalidInput)
		}
		add("name", *patch.Name)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Price != nil {
		if *patch.Price <= 0 {
			return fmt.Errorf("%w: product price should be positive", ErrInvalidInput)
		}
		add("price", *patch.Price)
	}
	if patch.Image != nil {
		add("image", *patch.Image)
	}
	if patch.Active != nil {
		add("active", *patch.Active)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}

	if len(fields) == 0 {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	add("updated_at", time.Now())
	params = append(params, id)

	sql := fmt.Sprintf(`UPDATE products SET %s WHERE product_id = $%d`,
		strings.Join(fields, ", "), len(params))

	result, err := r.db.Exec(ctx, sql, params...)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *productRepo) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	sql := `DELETE FROM products WHERE product_id = $1`

	result, err := r.db.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

const sizeOrderClause = `
	ORDER BY
		CASE size
			WHEN 'PP' THEN 1
			WHEN 'P' THEN 2
			WHEN 'M' THEN 3
			WHEN 'G' THEN 4
			WHEN 'GG' THEN 5
			ELSE 6
		END, size`

func (r *productRepo) ListSizes(ctx context.Context, productID int) ([]models.ProductSize, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	sql := `
		SELECT product_id, size, stock
		FROM product_sizes
		WHERE product_id = $1` + sizeOrderClause

	rows, err := r.db.Query(ctx, sql, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sizes for product %d: %w", productID, err)
	}

	defer rows.Close()

	var sizes []models.ProductSize

	for rows.Next() {
		var s models.ProductSize

		if err := rows.Scan(&s.ProductID, &s.Size, &s.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan product sizes: %w", err)
		}
		sizes = append(sizes, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return sizes, nil
}

func (r *productRepo) GetSize(ctx context.Context, productID int, size string) (*models.ProductSize, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}
	if size == "" {
		return nil, fmt.Errorf("%w: size cannot be empty", ErrInvalidInput)
	}

	// Joining on the active flag keeps sizes of retired products
	// invisible, so callers cannot cart or reserve them.
	sql := `
		SELECT ps.product_id, ps.size, ps.stock
		FROM product_sizes ps
		JOIN products p ON p.product_id = ps.product_id
		WHERE ps.product_id = $1 AND ps.size = $2 AND p.active = TRUE
	`

	var s models.ProductSize

	err := r.db.QueryRow(ctx, sql, productID, size).Scan(&s.ProductID, &s.Size, &s.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get size %q of product %d: %w", size, productID, err)
	}

	return &s, nil
}

// ReplaceSizes overwrites the product's whole size set with the given list.
func (r *productRepo) ReplaceSizes(ctx context.Context, productID int, sizes []models.ProductSize) error {
	if productID <= 0 {
		return fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}
	for _, s := range sizes {
		if s.Size == "" {
			return fmt.Errorf("%w: size label cannot be empty", ErrInvalidInput)
		}
		if s.Stock < 0 {
			return fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE product_id = $1)`, productID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check product %d: %w", productID, err)
	}
	if !exists {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_sizes WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("failed to clear sizes of product %d: %w", productID, err)
	}

	insert := `INSERT INTO product_sizes (product_id, size, stock) VALUES ($1, $2, $3)`

	for _, s := range sizes {
		if _, err := tx.Exec(ctx, insert, productID, s.Size, s.Stock); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return ErrNotFound
			}
			return fmt.Errorf("failed to insert size %q for product %d: %w", s.Size, productID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DecrementStock is a single conditional update so two concurrent callers
// can never both succeed on the last units: the store serializes writers on
// the row and re-evaluates stock >= quantity. Returns false when the size
// row is missing or the stock is insufficient; nothing is written then.
func (r *productRepo) DecrementStock(ctx context.Context, productID int, size string, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	sql := `
		UPDATE product_sizes
		SET stock = stock - $3
		WHERE product_id = $1 AND size = $2 AND stock >= $3
	`

	result, err := r.db.Exec(ctx, sql, productID, size, quantity)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock of product %d size %q: %w", productID, size, err)
	}

	return result.RowsAffected() > 0, nil
}
