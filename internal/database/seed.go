package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/auth"
)

// Seed creates the default admin account and a starter catalog so a fresh
// database is immediately usable. Existing rows are left alone.
func Seed(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	if err := seedUser(ctx, pool, "Admin", "admin@storefront.local", "123456", "admin"); err != nil {
		return err
	}
	if err := seedUser(ctx, pool, "Test User", "user@storefront.local", "senha123", "user"); err != nil {
		return err
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Info("seeding starter catalog")

	starters := []struct {
		name        string
		category    string
		price       float64
		image       string
		description string
	}{
		{"Floral Romper", "Rompers", 129.90, "/static/images/romper.jpg", "Light floral romper for everyday wear."},
		{"Pink Crop Top", "Crop Tops", 79.90, "/static/images/crop.jpg", "Ribbed knit crop top, extra comfortable."},
		{"Midi Skirt", "Skirts", 99.90, "/static/images/skirt.jpg", "Midi skirt with an elegant drape."},
		{"Black Blouse", "Blouses", 69.90, "/static/images/blouse.jpg", "Basic black blouse, goes with everything."},
	}

	for _, p := range starters {
		var productID int
		err := pool.QueryRow(ctx, `
			INSERT INTO products (name, category, price, image, active, description)
			VALUES ($1, $2, $3, $4, TRUE, $5)
			RETURNING product_id`,
			p.name, p.category, p.price, p.image, p.description,
		).Scan(&productID)
		if err != nil {
			return fmt.Errorf("failed to seed product %q: %w", p.name, err)
		}

		for _, size := range []string{"PP", "P", "M", "G", "GG"} {
			_, err := pool.Exec(ctx, `
				INSERT INTO product_sizes (product_id, size, stock)
				VALUES ($1, $2, 10)
				ON CONFLICT (product_id, size) DO NOTHING`,
				productID, size)
			if err != nil {
				return fmt.Errorf("failed to seed sizes for product %d: %w", productID, err)
			}
		}
	}

	return nil
}

func seedUser(ctx context.Context, pool *pgxpool.Pool, name, email, password, role string) error {
	var id int
	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to check seed user %s: %w", email, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING`,
		name, email, hash, role)
	if err != nil {
		return fmt.Errorf("failed to seed user %s: %w", email, err)
	}

	return nil
}
