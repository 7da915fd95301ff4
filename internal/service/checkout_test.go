package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repository"
)

type stubCart struct {
	items []models.CartItem
	err   error
}

func (s *stubCart) List(_ context.Context, _ int) ([]models.CartItem, error) {
	return s.items, s.err
}

type stubOrders struct {
	err     error
	created *models.Order
	items   []models.OrderItem
	calls   int
}

func (s *stubOrders) CreateOrder(_ context.Context, order *models.Order, items []models.OrderItem) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	order.OrderID = 41 + s.calls
	s.created = order
	s.items = items
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFinalizeFromCart(t *testing.T) {
	carts := &stubCart{items: []models.CartItem{
		{ProductID: 1, Name: "Floral Romper", Price: 129.90, Size: "M", Quantity: 2},
	}}
	orders := &stubOrders{}

	checkout := NewCheckout(carts, orders, testLogger())

	order, err := checkout.Finalize(context.Background(), 7, "pix", nil)
	if err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}

	if !almostEqual(order.Total, 259.80) {
		t.Errorf("total = %v, want 259.80", order.Total)
	}
	if order.Status != models.StatusPaid {
		t.Errorf("status = %q, want %q", order.Status, models.StatusPaid)
	}
	if order.PaymentMethod != "pix" {
		t.Errorf("payment method = %q, want pix", order.PaymentMethod)
	}
	if order.OrderID == 0 {
		t.Error("order id was not assigned")
	}

	if len(orders.items) != 1 {
		t.Fatalf("got %d order items, want 1", len(orders.items))
	}
	item := orders.items[0]
	if item.ProductID != 1 || item.Size != "M" || item.Quantity != 2 || !almostEqual(item.Price, 129.90) {
		t.Errorf("unexpected item snapshot: %+v", item)
	}
}

func TestFinalizeExplicitLines(t *testing.T) {
	// The cart reader must not be consulted when lines are supplied.
	carts := &stubCart{err: errors.New("cart must not be read")}
	orders := &stubOrders{}

	checkout := NewCheckout(carts, orders, testLogger())

	lines := []Line{
		{ProductID: 3, Name: "Midi Skirt", Price: 99.90, Size: "G", Quantity: 1},
		{ProductID: 4, Name: "Black Blouse", Price: 69.90, Size: "P", Quantity: 3},
	}

	order, err := checkout.Finalize(context.Background(), 7, "card", lines)
	if err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}

	want := 99.90 + 3*69.90
	if !almostEqual(order.Total, want) {
		t.Errorf("total = %v, want %v", order.Total, want)
	}
	if len(orders.items) != 2 {
		t.Fatalf("got %d order items, want 2", len(orders.items))
	}
	if orders.items[0].ProductID != 3 || orders.items[1].ProductID != 4 {
		t.Errorf("item order not preserved: %+v", orders.items)
	}
}

func TestFinalizeEmptyCart(t *testing.T) {
	carts := &stubCart{}
	orders := &stubOrders{}

	checkout := NewCheckout(carts, orders, testLogger())

	if _, err := checkout.Finalize(context.Background(), 7, "", nil); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
	if orders.calls != 0 {
		t.Error("CreateOrder was called for an empty cart")
	}
}

func TestFinalizeEmptyExplicitLines(t *testing.T) {
	carts := &stubCart{items: []models.CartItem{{ProductID: 1, Price: 10, Quantity: 1}}}
	orders := &stubOrders{}

	checkout := NewCheckout(carts, orders, testLogger())

	// A present-but-empty line list means "buy nothing", not "use the cart".
	if _, err := checkout.Finalize(context.Background(), 7, "", []Line{}); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
	if orders.calls != 0 {
		t.Error("CreateOrder was called for empty explicit lines")
	}
}

func TestFinalizeDefaultPaymentMethod(t *testing.T) {
	orders := &stubOrders{}
	checkout := NewCheckout(&stubCart{}, orders, testLogger())

	lines := []Line{{ProductID: 1, Price: 10, Quantity: 1}}

	order, err := checkout.Finalize(context.Background(), 7, "   ", lines)
	if err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}
	if order.PaymentMethod != DefaultPaymentMethod {
		t.Errorf("payment method = %q, want %q", order.PaymentMethod, DefaultPaymentMethod)
	}
}

func TestFinalizeInsufficientStock(t *testing.T) {
	stockErr := &repository.StockError{Size: "GG"}
	orders := &stubOrders{err: stockErr}
	checkout := NewCheckout(&stubCart{}, orders, testLogger())

	lines := []Line{{ProductID: 1, Price: 10, Size: "GG", Quantity: 5}}

	_, err := checkout.Finalize(context.Background(), 7, "", lines)

	var got *repository.StockError
	if !errors.As(err, &got) {
		t.Fatalf("err = %v, want *repository.StockError", err)
	}
	if got.Size != "GG" {
		t.Errorf("stock error size = %q, want GG", got.Size)
	}
	if !errors.Is(err, repository.ErrNotEnough) {
		t.Error("stock error does not unwrap to ErrNotEnough")
	}
}

func TestFinalizeInvalidQuantity(t *testing.T) {
	orders := &stubOrders{}
	checkout := NewCheckout(&stubCart{}, orders, testLogger())

	lines := []Line{{ProductID: 1, Price: 10, Quantity: 0}}

	if _, err := checkout.Finalize(context.Background(), 7, "", lines); !errors.Is(err, repository.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if orders.calls != 0 {
		t.Error("CreateOrder was called for an invalid quantity")
	}
}

func TestFromCartPreservesOrder(t *testing.T) {
	items := []models.CartItem{
		{ProductID: 2, Name: "Pink Crop Top", Price: 79.90, Size: "P", Quantity: 1},
		{ProductID: 1, Name: "Floral Romper", Price: 129.90, Size: "M", Quantity: 2},
	}

	lines := FromCart(items)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].ProductID != 2 || lines[1].ProductID != 1 {
		t.Errorf("line order not preserved: %+v", lines)
	}
}
