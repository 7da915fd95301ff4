package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/repository"
)

type AuthHandler struct {
	users         repository.UserRepository
	sessions      repository.SessionRepository
	authenticator *auth.Authenticator
	validate      *validator.Validate
	log           *slog.Logger
}

func NewAuthHandler(users repository.UserRepository, sessions repository.SessionRepository, authenticator *auth.Authenticator, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:         users,
		sessions:      sessions,
		authenticator: authenticator,
		validate:      validator.New(),
		log:           log,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type MeResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid registration data", validationDetails(err))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to register", nil)
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}

	if err := h.users.Create(r.Context(), &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusConflict, "duplicate", "email already registered", nil)
			return
		}
		h.log.Error("register failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to register", nil)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "email and password are required", validationDetails(err))
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", nil)
			return
		}
		h.log.Error("login lookup failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to log in", nil)
		return
	}

	if !auth.CheckPasswordHash(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", nil)
		return
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to log in", nil)
		return
	}

	if err := h.sessions.Create(r.Context(), &models.Session{Token: token, UserID: user.ID}); err != nil {
		h.log.Error("session create failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to log in", nil)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// Me reports whether the caller holds a valid session. It answers 200
// either way; the body carries the verdict.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authenticator.Authenticate(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			writeJSON(w, http.StatusOK, MeResponse{Authenticated: false})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to authenticate", nil)
		return
	}

	writeJSON(w, http.StatusOK, MeResponse{Authenticated: true, User: user})
}

func validationDetails(err error) interface{} {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
