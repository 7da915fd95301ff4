package handlers

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// UserFrom returns the authenticated user stored by RequireAuth, or nil
// when the request never passed through it.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// RequireAuth resolves the Authorization header to a user and stores it in
// the request context. Requests without a valid session get 401.
func RequireAuth(a *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, auth.ErrUnauthenticated) {
					writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
					return
				}
				writeError(w, http.StatusInternalServerError, "internal_error", "failed to authenticate", nil)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin users with 403. It must be mounted after
// RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFrom(r.Context())
		if err := auth.RequireAdmin(user); err != nil {
			writeError(w, http.StatusForbidden, "forbidden", "admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
