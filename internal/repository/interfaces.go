package repository

import (
	"context"

	"storefront/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteByUserID(ctx context.Context, userID int) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id int) (*models.Product, error)
	GetAll(ctx context.Context, activeOnly bool) ([]models.Product, error)
	Update(ctx context.Context, id int, patch ProductPatch) error
	Delete(ctx context.Context, id int) error

	ListSizes(ctx context.Context, productID int) ([]models.ProductSize, error)
	GetSize(ctx context.Context, productID int, size string) (*models.ProductSize, error)
	ReplaceSizes(ctx context.Context, productID int, sizes []models.ProductSize) error
	DecrementStock(ctx context.Context, productID int, size string, quantity int) (bool, error)
}

// ProductPatch carries the optional fields of a partial product update;
// nil means leave the column untouched.
type ProductPatch struct {
	Name        *string
	Category    *string
	Price       *float64
	Image       *string
	Active      *bool
	Description *string
}

type CartRepository interface {
	List(ctx context.Context, userID int) ([]models.CartItem, error)
	Add(ctx context.Context, userID, productID int, size string, quantity int) error
	Remove(ctx context.Context, userID, productID int, size string) error
	Clear(ctx context.Context, userID int) error
}

type FavoriteRepository interface {
	List(ctx context.Context, userID int) ([]models.Favorite, error)
	Toggle(ctx context.Context, userID, productID int) (bool, error)
}

type OrderRepository interface {
	// CreateOrder persists the order with its item snapshots, decrements
	// stock for every sized item and clears the user's cart, all inside a
	// single transaction. Nothing is written when any line has
	// insufficient stock.
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetByUserID(ctx context.Context, userID int) ([]models.Order, error)
	GetOrderWithItems(ctx context.Context, id int) (*models.Order, []models.OrderItem, error)
}
