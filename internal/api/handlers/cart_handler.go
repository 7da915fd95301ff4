package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"storefront/internal/repository"
)

type CartHandler struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	validate *validator.Validate
	log      *slog.Logger
}

func NewCartHandler(carts repository.CartRepository, products repository.ProductRepository, log *slog.Logger) *CartHandler {
	return &CartHandler{carts: carts, products: products, validate: validator.New(), log: log}
}

type CartAddRequest struct {
	ProductID int    `json:"product_id" validate:"required,gt=0"`
	Size      string `json:"size" validate:"required,max=10"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=99"`
}

type CartRemoveRequest struct {
	ProductID int    `json:"product_id" validate:"required,gt=0"`
	Size      string `json:"size" validate:"max=10"`
}

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())

	items, err := h.carts.List(r.Context(), user.ID)
	if err != nil {
		h.log.Error("list cart failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get cart", nil)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())

	var req CartAddRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid cart item", validationDetails(err))
		return
	}

	// An omitted quantity means one unit.
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	// The size lookup only resolves sizes of active products, so this
	// rejects unknown products, retired products and unknown labels alike.
	if _, err := h.products.GetSize(r.Context(), req.ProductID, req.Size); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "invalid_input", "unknown product or size", nil)
			return
		}
		h.log.Error("size lookup failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to add to cart", nil)
		return
	}

	if err := h.carts.Add(r.Context(), user.ID, req.ProductID, req.Size, req.Quantity); err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
			return
		}
		h.log.Error("cart add failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to add to cart", nil)
		return
	}

	items, err := h.carts.List(r.Context(), user.ID)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "item added"})
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())

	var req CartRemoveRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid cart item", validationDetails(err))
		return
	}

	if err := h.carts.Remove(r.Context(), user.ID, req.ProductID, req.Size); err != nil {
		h.log.Error("cart remove failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to remove from cart", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "item removed"})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())

	if err := h.carts.Clear(r.Context(), user.ID); err != nil {
		h.log.Error("cart clear failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}
