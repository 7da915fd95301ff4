package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/models"
)

type cartRepo struct {
	db *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) CartRepository {
	return &cartRepo{db: db}
}

// List returns the user's cart joined with the live catalog, restricted to
// active products, most recently added first.
func (r *cartRepo) List(ctx context.Context, userID int) ([]models.CartItem, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user ID must be positive", ErrInvalidInput)
	}

	sql := `
		SELECT
			c.product_id,
			p.name,
			p.price,
			COALESCE(p.image, ''),
			c.size,
			c.quantity
		FROM cart_items c
		JOIN products p ON p.product_id = c.product_id
		WHERE c.user_id = $1 AND p.active = TRUE
		ORDER BY c.cart_item_id DESC
	`

	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart for user %d: %w", userID, err)
	}

	defer rows.Close()

	var items []models.CartItem

	for rows.Next() {
		var item models.CartItem

		err := rows.Scan(
			&item.ProductID,
			&item.Name,
			&item.Price,
			&item.Image,
			&item.Size,
			&item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart items: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return items, nil
}

// Add increments the (user, product, size) line, creating it when absent.
func (r *cartRepo) Add(ctx context.Context, userID, productID int, size string, quantity int) error {
	if userID <= 0 || productID <= 0 {
		return fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}
	if size == "" {
		return fmt.Errorf("%w: size cannot be empty", ErrInvalidInput)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	sql := `
		INSERT INTO cart_items (user_id, product_id, size, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id, size)
		DO UPDATE SET quantity = cart_items.quantity + $4
	`

	if _, err := r.db.Exec(ctx, sql, userID, productID, size, quantity); err != nil {
		return fmt.Errorf("failed to add product %d to cart: %w", productID, err)
	}

	return nil
}

// Remove deletes the line for the given size, or every size of the product
// when size is empty.
func (r *cartRepo) Remove(ctx context.Context, userID, productID int, size string) error {
	if userID <= 0 || productID <= 0 {
		return fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	var err error
	if size == "" {
		_, err = r.db.Exec(ctx,
			`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`,
			userID, productID)
	} else {
		_, err = r.db.Exec(ctx,
			`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2 AND size = $3`,
			userID, productID, size)
	}
	if err != nil {
		return fmt.Errorf("failed to remove product %d from cart: %w", productID, err)
	}

	return nil
}

func (r *cartRepo) Clear(ctx context.Context, userID int) error {
	if userID <= 0 {
		return fmt.Errorf("%w: user ID must be positive", ErrInvalidInput)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart for user %d: %w", userID, err)
	}

	return nil
}
