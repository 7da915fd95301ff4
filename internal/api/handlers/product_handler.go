package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"storefront/internal/models"
	"storefront/internal/repository"
)

type ProductHandler struct {
	repo     repository.ProductRepository
	validate *validator.Validate
	log      *slog.Logger
}

func NewProductHandler(repo repository.ProductRepository, log *slog.Logger) *ProductHandler {
	return &ProductHandler{repo: repo, validate: validator.New(), log: log}
}

type SizePayload struct {
	Size  string `json:"size" validate:"required,max=10"`
	Stock int    `json:"stock" validate:"gte=0"`
}

type ProductCreateRequest struct {
	Name        string        `json:"name" validate:"required,max=100"`
	Category    string        `json:"category" validate:"required,max=50"`
	Price       float64       `json:"price" validate:"required,gt=0,lte=999999"`
	Image       string        `json:"image" validate:"max=500"`
	Description string        `json:"description" validate:"max=1000"`
	Sizes       []SizePayload `json:"sizes" validate:"omitempty,dive"`
}

type ProductUpdateRequest struct {
	Name        *string        `json:"name" validate:"omitempty,max=100"`
	Category    *string        `json:"category" validate:"omitempty,max=50"`
	Price       *float64       `json:"price" validate:"omitempty,gt=0,lte=999999"`
	Image       *string        `json:"image" validate:"omitempty,max=500"`
	Active      *bool          `json:"active"`
	Description *string        `json:"description" validate:"omitempty,max=1000"`
	Sizes       *[]SizePayload `json:"sizes" validate:"omitempty,dive"`
}

func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.GetAll(r.Context(), true)
	if err != nil {
		h.log.Error("list products failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get products", nil)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "product not found", nil)
		case errors.Is(err, repository.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to get product", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) GetSizes(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	sizes, err := h.repo.ListSizes(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "product not found", nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to get sizes", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, sizes)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductCreateRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid product data", validationDetails(err))
		return
	}

	p := models.Product{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Image:       req.Image,
		Active:      true,
		Description: req.Description,
	}

	if err := h.repo.Create(r.Context(), &p); err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
			return
		}
		h.log.Error("create product failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create product", nil)
		return
	}

	if len(req.Sizes) > 0 {
		sizes := make([]models.ProductSize, 0, len(req.Sizes))
		for _, s := range req.Sizes {
			sizes = append(sizes, models.ProductSize{ProductID: p.ProductID, Size: s.Size, Stock: s.Stock})
		}
		if err := h.repo.ReplaceSizes(r.Context(), p.ProductID, sizes); err != nil {
			h.log.Error("set product sizes failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to set product sizes", nil)
			return
		}
		p.Sizes = sizes
	}

	w.Header().Set("Location", "/api/products/"+strconv.Itoa(p.ProductID))
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req ProductUpdateRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid product data", validationDetails(err))
		return
	}

	patch := repository.ProductPatch{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Image:       req.Image,
		Active:      req.Active,
		Description: req.Description,
	}

	hasColumns := req.Name != nil || req.Category != nil || req.Price != nil ||
		req.Image != nil || req.Active != nil || req.Description != nil
	if !hasColumns && req.Sizes == nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "nothing to update", nil)
		return
	}

	if hasColumns {
		if err := h.repo.Update(r.Context(), id, patch); err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				writeError(w, http.StatusNotFound, "not_found", "product not found", nil)
			case errors.Is(err, repository.ErrInvalidInput):
				writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
			default:
				h.log.Error("update product failed", slog.String("error", err.Error()))
				writeError(w, http.StatusInternalServerError, "internal_error", "failed to update product", nil)
			}
			return
		}
	}

	if req.Sizes != nil {
		sizes := make([]models.ProductSize, 0, len(*req.Sizes))
		for _, s := range *req.Sizes {
			sizes = append(sizes, models.ProductSize{ProductID: id, Size: s.Size, Stock: s.Stock})
		}
		if err := h.repo.ReplaceSizes(r.Context(), id, sizes); err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				writeError(w, http.StatusNotFound, "not_found", "product not found", nil)
			case errors.Is(err, repository.ErrInvalidInput):
				writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
			default:
				h.log.Error("replace product sizes failed", slog.String("error", err.Error()))
				writeError(w, http.StatusInternalServerError, "internal_error", "failed to set product sizes", nil)
			}
			return
		}
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		// The update landed; report it even if the re-read raced a delete.
		writeJSON(w, http.StatusOK, map[string]any{"product_id": id})
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "product not found", nil)
		case errors.Is(err, repository.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		default:
			h.log.Error("delete product failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete product", nil)
		}
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := chi.URLParam(r, "id")

	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid product id", nil)
		return 0, false
	}
	return id, true
}
