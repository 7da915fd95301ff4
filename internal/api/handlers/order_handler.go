package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	"storefront/internal/repository"
	"storefront/internal/service"
)

type OrderHandler struct {
	checkout        *service.Checkout
	orders          repository.OrderRepository
	ordersFinalized prometheus.Counter
	validate        *validator.Validate
	log             *slog.Logger
}

func NewOrderHandler(checkout *service.Checkout, orders repository.OrderRepository, ordersFinalized prometheus.Counter, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		checkout:        checkout,
		orders:          orders,
		ordersFinalized: ordersFinalized,
		validate:        validator.New(),
		log:             log,
	}
}

type CheckoutLineRequest struct {
	ProductID int     `json:"product_id" validate:"required,gt=0"`
	Name      string  `json:"name" validate:"max=100"`
	Price     float64 `json:"price" validate:"gte=0"`
	Size      string  `json:"size" validate:"max=10"`
	Quantity  int     `json:"quantity" validate:"required,gte=1,lte=99"`
}

// CheckoutRequest accepts two shapes: with Products absent the order is
// built from the caller's cart; with Products present (even empty) the
// supplied lines are used verbatim.
type CheckoutRequest struct {
	PaymentMethod string                 `json:"payment_method"`
	Products      *[]CheckoutLineRequest `json:"products" validate:"omitempty,dive"`
}

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())

	var req CheckoutRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid checkout data", validationDetails(err))
		return
	}

	var lines []service.Line
	if req.Products != nil {
		lines = make([]service.Line, 0, len(*req.Products))
		for _, p := range *req.Products {
			lines = append(lines, service.Line{
				ProductID: p.ProductID,
				Name:      p.Name,
				Price:     p.Price,
				Size:      p.Size,
				Quantity:  p.Quantity,
			})
		}
	}

	order, err := h.checkout.Finalize(r.Context(), user.ID, req.PaymentMethod, lines)
	if err != nil {
		var stockErr *repository.StockError
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, "empty_cart", "nothing to check out", nil)
		case errors.As(err, &stockErr):
			writeError(w, http.StatusBadRequest, "insufficient_stock", stockErr.Error(), map[string]string{"size": stockErr.Size})
		case errors.Is(err, repository.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		default:
			h.log.Error("checkout failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to check out", nil)
		}
		return
	}

	if h.ordersFinalized != nil {
		h.ordersFinalized.Inc()
	}

	writeJSON(w, http.StatusCreated, order)
}

// Get returns one of the caller's orders with its line items. Orders that
// belong to someone else are reported as not found rather than forbidden,
// so order ids cannot be probed.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid order id", nil)
		return
	}

	order, items, err := h.orders.GetOrderWithItems(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "order not found", nil)
		case errors.Is(err, repository.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		default:
			h.log.Error("get order failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to get order", nil)
		}
		return
	}

	if order.UserID != user.ID {
		writeError(w, http.StatusNotFound, "not_found", "order not found", nil)
		return
	}

	order.Items = items
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())

	orders, err := h.orders.GetByUserID(r.Context(), user.ID)
	if err != nil {
		h.log.Error("list orders failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get orders", nil)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}
