package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repository"
)

// DefaultPaymentMethod labels orders whose request carried no payment
// method. Payment is a free-text label at this layer; there is no gateway.
const DefaultPaymentMethod = "Unknown"

var ErrEmptyCart = errors.New("empty cart")

// Line is the normalized checkout line. Both request variants — the
// cart-derived one and the client-supplied product list — are reduced to
// this shape before the engine runs, so the engine never branches on input
// shape.
type Line struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
}

type CartReader interface {
	List(ctx context.Context, userID int) ([]models.CartItem, error)
}

type OrderWriter interface {
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
}

// Checkout turns a user's cart (or an explicit line list) into a paid
// order: it computes the total from the snapshot prices, reserves stock
// per sized line, persists the order with its item snapshots and clears
// the cart — all or nothing.
type Checkout struct {
	carts  CartReader
	orders OrderWriter
	log    *slog.Logger
}

func NewCheckout(carts CartReader, orders OrderWriter, log *slog.Logger) *Checkout {
	return &Checkout{carts: carts, orders: orders, log: log}
}

// Finalize runs the checkout for the given user. When lines is nil the
// user's current cart is used; an empty result either way fails with
// ErrEmptyCart before anything is written. Prices come from the lines
// themselves, never re-read from the catalog: the price agreed when the
// line entered the cart is the price charged.
func (c *Checkout) Finalize(ctx context.Context, userID int, paymentMethod string, lines []Line) (*models.Order, error) {
	const op = "service.Finalize"

	if lines == nil {
		cartItems, err := c.carts.List(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		lines = FromCart(cartItems)
	}

	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var total float64
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%s: %w: quantity must be positive", op, repository.ErrInvalidInput)
		}
		total += line.Price * float64(line.Quantity)
	}

	method := strings.TrimSpace(paymentMethod)
	if method == "" {
		method = DefaultPaymentMethod
	}

	order := &models.Order{
		UserID:        userID,
		Total:         total,
		PaymentMethod: method,
		Status:        models.StatusPaid,
	}

	// Snapshots keep the line order so receipts are deterministic.
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Size:      line.Size,
			Quantity:  line.Quantity,
		})
	}

	if err := c.orders.CreateOrder(ctx, order, items); err != nil {
		var stockErr *repository.StockError
		if errors.As(err, &stockErr) {
			return nil, stockErr
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.log.Info("order finalized",
		slog.Int("user_id", userID),
		slog.Int("order_id", order.OrderID),
		slog.Float64("total", order.Total),
		slog.String("payment_method", order.PaymentMethod),
	)

	return order, nil
}

// FromCart converts cart items to checkout lines, preserving their order.
func FromCart(items []models.CartItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Size:      item.Size,
			Quantity:  item.Quantity,
		})
	}
	return lines
}
