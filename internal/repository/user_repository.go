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

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	if u.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if u.Email == "" {
		return fmt.Errorf("%w: email required", ErrInvalidInput)
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("%w: password hash required", ErrInvalidInput)
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}

	sql := `
		INSERT INTO users (
			name,
			email,
			password_hash,
			role,
			created_at
	) VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`

	u.CreatedAt = time.Now()

	err := r.db.QueryRow(ctx, sql,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return fmt.Errorf("%w: email already exists", ErrDuplicate)
			}
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	sql := `
		SELECT
		id,
		name,
		email,
		password_hash,
		role,
		created_at
		FROM users WHERE id = $1
	`

	var user models.User

	err := r.db.QueryRow(ctx, sql, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}

	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email cannot be empty", ErrInvalidInput)
	}

	sql := `
		SELECT
		id,
		name,
		email,
		password_hash,
		role,
		created_at
		FROM users WHERE email = $1
	`

	var user models.User

	err := r.db.QueryRow(ctx, sql, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}
