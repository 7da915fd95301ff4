package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repository"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Authenticator resolves bearer tokens to user records. Verification is
// stateless per request: one session lookup, one user lookup.
type Authenticator struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
}

func NewAuthenticator(sessions repository.SessionRepository, users repository.UserRepository) *Authenticator {
	return &Authenticator{sessions: sessions, users: users}
}

// ParseBearer extracts the token from an Authorization header value of the
// form "Bearer <token>". The prefix match is case-insensitive; any other
// shape yields false rather than an error.
func ParseBearer(header string) (string, bool) {
	const prefix = "bearer "

	header = strings.TrimSpace(header)
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", false
	}

	return token, true
}

// Authenticate maps a raw Authorization header value to the user who owns
// the session. A malformed header, an unknown token or a vanished user all
// yield ErrUnauthenticated; only store failures surface as other errors.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*models.User, error) {
	const op = "auth.Authenticate"

	token, ok := ParseBearer(header)
	if !ok {
		return nil, ErrUnauthenticated
	}

	session, err := a.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := a.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// IsAdmin is a pure predicate over an already-resolved user.
func IsAdmin(user *models.User) bool {
	return user != nil && user.Role == models.RoleAdmin
}

// RequireAdmin returns ErrForbidden for any non-admin user.
func RequireAdmin(user *models.User) error {
	if !IsAdmin(user) {
		return ErrForbidden
	}
	return nil
}
