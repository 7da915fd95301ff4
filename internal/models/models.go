package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// StatusPaid is the only status checkout produces; payment is modeled
// as always succeeding at this layer.
const StatusPaid = "Pago"

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Session struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ProductID   int       `json:"product_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Active      bool      `json:"active"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Sizes is filled only by single-product reads.
	Sizes []ProductSize `json:"sizes,omitempty"`
}

// ProductSize is a per-product stock keeping unit keyed by a label
// (PP/P/M/G/GG for the seeded catalog, free-form for admin-created sets).
type ProductSize struct {
	ProductID int    `json:"product_id"`
	Size      string `json:"size"`
	Stock     int    `json:"stock"`
}

type CartItem struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
}

type Favorite struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
}

type Order struct {
	OrderID       int         `json:"order_id"`
	UserID        int         `json:"user_id"`
	Total         float64     `json:"total"`
	PaymentMethod string      `json:"payment_method"`
	Status        string      `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	Items         []OrderItem `json:"items,omitempty"`
}

// OrderItem snapshots the purchased product at checkout time so later
// catalog edits do not alter order history.
type OrderItem struct {
	OrderItemID int     `json:"order_item_id"`
	OrderID     int     `json:"order_id"`
	ProductID   int     `json:"product_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Size        string  `json:"size,omitempty"`
	Quantity    int     `json:"quantity"`
}
