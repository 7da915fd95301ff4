package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/models"
)

type favoriteRepo struct {
	db *pgxpool.Pool
}

func NewFavoriteRepository(db *pgxpool.Pool) FavoriteRepository {
	return &favoriteRepo{db: db}
}

func (r *favoriteRepo) List(ctx context.Context, userID int) ([]models.Favorite, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user ID must be positive", ErrInvalidInput)
	}

	sql := `
		SELECT
			f.product_id,
			p.name,
			p.price,
			COALESCE(p.image, '')
		FROM favorites f
		JOIN products p ON p.product_id = f.product_id
		WHERE f.user_id = $1 AND p.active = TRUE
		ORDER BY f.favorite_id DESC
	`

	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get favorites for user %d: %w", userID, err)
	}

	defer rows.Close()

	var favorites []models.Favorite

	for rows.Next() {
		var f models.Favorite

		if err := rows.Scan(&f.ProductID, &f.Name, &f.Price, &f.Image); err != nil {
			return nil, fmt.Errorf("failed to scan favorites: %w", err)
		}
		favorites = append(favorites, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return favorites, nil
}

// Toggle flips the favorite mark and reports the new state: true when the
// product is now favorited, false when the mark was removed. Only live
// products can be favorited; a missing or inactive product is ErrNotFound.
func (r *favoriteRepo) Toggle(ctx context.Context, userID, productID int) (bool, error) {
	if userID <= 0 || productID <= 0 {
		return false, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var active bool
	err = tx.QueryRow(ctx,
		`SELECT active FROM products WHERE product_id = $1`, productID,
	).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to check product %d: %w", productID, err)
	}
	if !active {
		return false, ErrNotFound
	}

	var favoriteID int
	err = tx.QueryRow(ctx,
		`SELECT favorite_id FROM favorites WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	).Scan(&favoriteID)

	switch {
	case err == nil:
		if _, err := tx.Exec(ctx, `DELETE FROM favorites WHERE favorite_id = $1`, favoriteID); err != nil {
			return false, fmt.Errorf("failed to remove favorite %d: %w", favoriteID, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return false, nil

	case errors.Is(err, pgx.ErrNoRows):
		_, err := tx.Exec(ctx,
			`INSERT INTO favorites (user_id, product_id) VALUES ($1, $2)`,
			userID, productID)
		if err != nil {
			// The product can be deleted between the check above and
			// this insert; report that as not found, not a store error.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return false, ErrNotFound
			}
			return false, fmt.Errorf("failed to insert favorite: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return true, nil

	default:
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
}
