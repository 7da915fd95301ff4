package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/models"
)

type sessionRepo struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	if s.Token == "" {
		return fmt.Errorf("%w: token cannot be empty", ErrInvalidInput)
	}
	if s.UserID <= 0 {
		return fmt.Errorf("%w: user ID must be positive", ErrInvalidInput)
	}

	sql := `
		INSERT INTO sessions (token, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET user_id = $2, created_at = $3
	`

	s.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx, sql, s.Token, s.UserID, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *sessionRepo) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token cannot be empty", ErrInvalidInput)
	}

	sql := `
		SELECT token, user_id, created_at
		FROM sessions WHERE token = $1
	`

	var session models.Session

	err := r.db.QueryRow(ctx, sql, token).Scan(
		&session.Token,
		&session.UserID,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session by token: %w", err)
	}

	return &session, nil
}

func (r *sessionRepo) DeleteByUserID(ctx context.Context, userID int) error {
	if userID <= 0 {
		return fmt.Errorf("%w: user ID must be positive", ErrInvalidInput)
	}

	sql := `DELETE FROM sessions WHERE user_id = $1`

	if _, err := r.db.Exec(ctx, sql, userID); err != nil {
		return fmt.Errorf("delete sessions for user %d: %w", userID, err)
	}

	return nil
}
