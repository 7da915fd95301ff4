package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/repository"
)

type FavoriteHandler struct {
	favorites repository.FavoriteRepository
	log       *slog.Logger
}

func NewFavoriteHandler(favorites repository.FavoriteRepository, log *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, log: log}
}

type FavoriteToggleRequest struct {
	ProductID int `json:"product_id"`
}

type FavoriteToggleResponse struct {
	ProductID int  `json:"product_id"`
	Favorited bool `json:"favorited"`
}

func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())

	favorites, err := h.favorites.List(r.Context(), user.ID)
	if err != nil {
		h.log.Error("list favorites failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get favorites", nil)
		return
	}

	writeJSON(w, http.StatusOK, favorites)
}

func (h *FavoriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())

	var req FavoriteToggleRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "product_id is required", nil)
		return
	}

	favorited, err := h.favorites.Toggle(r.Context(), user.ID, req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusBadRequest, "invalid_input", "unknown product", nil)
		default:
			h.log.Error("favorite toggle failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to toggle favorite", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, FavoriteToggleResponse{ProductID: req.ProductID, Favorited: favorited})
}
