package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/api"
	"storefront/internal/api/handlers"
	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/service"
)

const (
	adminToken = "test-admin-token"
	userToken  = "test-user-token"
)

type testEnv struct {
	router http.Handler
	store  *memStore
	userID int
}

// newTestEnv wires the full router against in-memory repositories and
// seeds an admin, a regular user and two sized products.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	users := &memUsers{s: store}
	sessions := &memSessions{s: store}
	products := &memProducts{s: store}
	carts := &memCarts{s: store}
	favorites := &memFavorites{s: store}
	orders := &memOrders{s: store}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	authenticator := auth.NewAuthenticator(sessions, users)
	checkout := service.NewCheckout(carts, orders, log)

	h := api.Handlers{
		Auth:      handlers.NewAuthHandler(users, sessions, authenticator, log),
		Products:  handlers.NewProductHandler(products, log),
		Carts:     handlers.NewCartHandler(carts, products, log),
		Favorites: handlers.NewFavoriteHandler(favorites, log),
		Orders:    handlers.NewOrderHandler(checkout, orders, nil, log),
	}

	env := &testEnv{
		router: api.NewRouter(h, authenticator, nil, log),
		store:  store,
	}

	hash, err := auth.HashPassword("senha123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	ctx := t.Context()

	admin := &models.User{Name: "Admin", Email: "admin@storefront.local", PasswordHash: hash, Role: models.RoleAdmin}
	if err := users.Create(ctx, admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	user := &models.User{Name: "Maria", Email: "maria@storefront.local", PasswordHash: hash, Role: models.RoleUser}
	if err := users.Create(ctx, user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	env.userID = user.ID

	_ = sessions.Create(ctx, &models.Session{Token: adminToken, UserID: admin.ID})
	_ = sessions.Create(ctx, &models.Session{Token: userToken, UserID: user.ID})

	romper := &models.Product{Name: "Floral Romper", Category: "rompers", Price: 129.90, Active: true}
	if err := products.Create(ctx, romper); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	_ = products.ReplaceSizes(ctx, romper.ProductID, []models.ProductSize{
		{ProductID: romper.ProductID, Size: "M", Stock: 10},
		{ProductID: romper.ProductID, Size: "GG", Stock: 2},
	})

	top := &models.Product{Name: "Pink Crop Top", Category: "tops", Price: 79.90, Active: true}
	if err := products.Create(ctx, top); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	_ = products.ReplaceSizes(ctx, top.ProductID, []models.ProductSize{
		{ProductID: top.ProductID, Size: "P", Stock: 5},
	})

	// Retired but still carrying stock, like a product pulled mid-season.
	hidden := &models.Product{Name: "Retired Dress", Category: "dresses", Price: 49.90, Active: false}
	if err := products.Create(ctx, hidden); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	_ = products.ReplaceSizes(ctx, hidden.ProductID, []models.ProductSize{
		{ProductID: hidden.ProductID, Size: "M", Stock: 3},
	})

	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func (e *testEnv) stockOf(productID int, size string) int {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	for _, ps := range e.store.sizes[productID] {
		if ps.Size == size {
			return ps.Stock
		}
	}
	return -1
}
