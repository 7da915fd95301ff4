package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/models"
)

type orderRepo struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &orderRepo{db: db}
}

// CreateOrder writes the order header, its item snapshots, the per-size
// stock decrements and the cart clear in one transaction. The stock
// decrement is a conditional update re-evaluated by the store, so a
// concurrent checkout on the same size cannot oversell; the first
// insufficient line aborts and rolls back everything already written.
func (r *orderRepo) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	if order == nil {
		return fmt.Errorf("%w: order cannot be nil", ErrInvalidInput)
	}
	if order.UserID <= 0 {
		return fmt.Errorf("%w: user ID must be positive", ErrInvalidInput)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: items cannot be empty", ErrInvalidInput)
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
		}
		if item.ProductID <= 0 {
			return fmt.Errorf("%w: product ID must be positive", ErrInvalidInput)
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `INSERT INTO orders (
	user_id,
	total,
	payment_method,
	status,
	created_at
	) VALUES ($1, $2, $3, $4, $5)
	RETURNING order_id
	`

	order.CreatedAt = time.Now().UTC()

	err = tx.QueryRow(ctx, insert,
		order.UserID,
		order.Total,
		order.PaymentMethod,
		order.Status,
		order.CreatedAt,
	).Scan(&order.OrderID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	decrement := `
		UPDATE product_sizes
		SET stock = stock - $3
		WHERE product_id = $1 AND size = $2 AND stock >= $3
	`

	insertItemSQL := `INSERT INTO order_items (order_id, product_id, name, price, size, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING order_item_id
	`

	for i := range items {
		item := &items[i]

		if item.Size != "" {
			result, err := tx.Exec(ctx, decrement, item.ProductID, item.Size, item.Quantity)
			if err != nil {
				return fmt.Errorf("failed to decrement stock for product %d: %w", item.ProductID, err)
			}
			if result.RowsAffected() == 0 {
				return &StockError{Size: item.Size}
			}
		}

		var size interface{}
		if item.Size != "" {
			size = item.Size
		}

		err = tx.QueryRow(ctx, insertItemSQL,
			order.OrderID,
			item.ProductID,
			item.Name,
			item.Price,
			size,
			item.Quantity,
		).Scan(&item.OrderItemID)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
		item.OrderID = order.OrderID
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, order.UserID); err != nil {
		return fmt.Errorf("failed to clear cart for user %d: %w", order.UserID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *orderRepo) GetByUserID(ctx context.Context, userID int) ([]models.Order, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT
		order_id,
		user_id,
		total,
		payment_method,
		status,
		created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY order_id DESC`

	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders by user %d: %w", userID, err)
	}

	defer rows.Close()

	var orders []models.Order

	for rows.Next() {
		var o models.Order

		err := rows.Scan(&o.OrderID,
			&o.UserID,
			&o.Total,
			&o.PaymentMethod,
			&o.Status,
			&o.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan orders by user: %w", err)
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	for i := range orders {
		items, err := r.itemsForOrder(ctx, orders[i].OrderID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *orderRepo) itemsForOrder(ctx context.Context, orderID int) ([]models.OrderItem, error) {
	sql := `SELECT
		order_item_id,
		product_id,
		name,
		price,
		size,
		quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY order_item_id`

	rows, err := r.db.Query(ctx, sql, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get items of order %d: %w", orderID, err)
	}

	defer rows.Close()

	var items []models.OrderItem

	for rows.Next() {
		var item models.OrderItem
		var size pgtype.Text

		err := rows.Scan(
			&item.OrderItemID,
			&item.ProductID,
			&item.Name,
			&item.Price,
			&size,
			&item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order items: %w", err)
		}

		item.OrderID = orderID
		if size.Valid {
			item.Size = size.String
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return items, nil
}

func (r *orderRepo) GetOrderWithItems(ctx context.Context, id int) (*models.Order, []models.OrderItem, error) {
	if id <= 0 {
		return nil, nil, fmt.Errorf("%w: order ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT
	o.order_id,
	o.user_id,
	o.total,
	o.payment_method,
	o.status,
	o.created_at,
	oi.order_item_id,
	oi.product_id,
	oi.name,
	oi.price,
	oi.size,
	oi.quantity
	FROM orders o
	LEFT JOIN order_items oi ON o.order_id = oi.order_id
	WHERE o.order_id = $1
	ORDER BY oi.order_item_id
	`

	rows, err := r.db.Query(ctx, sql, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get order with items %d: %w", id, err)
	}

	defer rows.Close()

	var order *models.Order
	var items []models.OrderItem
	var orderFound bool

	for rows.Next() {
		var currentOrder models.Order
		var orderItemID pgtype.Int4
		var productID pgtype.Int4
		var name pgtype.Text
		var price pgtype.Float8
		var size pgtype.Text
		var quantity pgtype.Int4

		err := rows.Scan(&currentOrder.OrderID,
			&currentOrder.UserID,
			&currentOrder.Total,
			&currentOrder.PaymentMethod,
			&currentOrder.Status,
			&currentOrder.CreatedAt,
			&orderItemID,
			&productID,
			&name,
			&price,
			&size,
			&quantity,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("scan order/item: %w", err)
		}
		if !orderFound {
			order = &currentOrder
			orderFound = true
		}
		if orderItemID.Valid {
			items = append(items, models.OrderItem{
				OrderItemID: int(orderItemID.Int32),
				OrderID:     currentOrder.OrderID,
				ProductID:   int(productID.Int32),
				Name:        name.String,
				Price:       price.Float64,
				Size:        size.String,
				Quantity:    int(quantity.Int32),
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("rows iteration: %w", err)
	}

	if !orderFound {
		return nil, nil, ErrNotFound
	}

	return order, items, nil
}
