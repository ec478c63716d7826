package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shophub/shop-api/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

const orderColumns = `o.id, o.user_id, COALESCE(u.name, ''), COALESCE(u.email, ''), o.order_items, o.shipping_address,
	o.payment_method, o.items_price, o.tax_price, o.shipping_price, o.total_price,
	o.is_paid, o.paid_at, o.is_delivered, o.delivered_at, o.created_at, o.updated_at`

// LEFT JOIN: пользователь мог быть удален, заказ при этом остается
const orderFrom = ` FROM orders o LEFT JOIN users u ON u.id = o.user_id`

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrder сохраняет снимок заказа как есть.
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrderByID возвращает заказ с раскрытым владельцем (имя и почта).
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// GetOrdersByUserID возвращает заказы пользователя, новые первыми.
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Order, error)
	// ListOrders - все заказы, новые первыми; limit <= 0 означает без ограничения.
	ListOrders(ctx context.Context, limit int) ([]*models.Order, error)
	// UpdateOrderStatus применяет переданные флаги независимо друг от друга.
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, isPaid, isDelivered *bool) (*models.Order, error)
}

// orderRepository - конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func scanOrder(row rowScanner) (*models.Order, error) {
	o := &models.Order{}
	var items, address []byte
	var paidAt, deliveredAt sql.NullTime
	err := row.Scan(&o.ID, &o.User.ID, &o.User.Name, &o.User.Email, &items, &address,
		&o.PaymentMethod, &o.ItemsPrice, &o.TaxPrice, &o.ShippingPrice, &o.TotalPrice,
		&o.IsPaid, &paidAt, &o.IsDelivered, &deliveredAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.OrderItems); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to decode shipping address: %w", err)
	}
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	if deliveredAt.Valid {
		o.DeliveredAt = &deliveredAt.Time
	}
	return o, nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query orders")
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder вставляет новый заказ в таблицу orders.
func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	items, err := json.Marshal(order.OrderItems)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order items: %w", err)
	}
	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to encode shipping address: %w", err)
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	query := `INSERT INTO orders (id, user_id, order_items, shipping_address, payment_method,
	              items_price, tax_price, shipping_price, total_price, is_paid, is_delivered, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, FALSE, NOW(), NOW())
	          RETURNING items_price, tax_price, shipping_price, total_price, created_at, updated_at`
	// суммы читаем обратно: в ответе то, что реально сохранено
	err = r.db.QueryRowContext(ctx, query,
		order.ID, order.User.ID, items, address, order.PaymentMethod,
		order.ItemsPrice, order.TaxPrice, order.ShippingPrice, order.TotalPrice,
	).Scan(&order.ItemsPrice, &order.TaxPrice, &order.ShippingPrice, &order.TotalPrice, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create order")
	}
	order.IsPaid = false
	order.IsDelivered = false
	return order, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+orderFrom+" WHERE o.id = $1", id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "failed to get order")
	}
	return order, nil
}

// GetOrdersByUserID возвращает список заказов для пользователя.
func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	query := "SELECT " + orderColumns + orderFrom + " WHERE o.user_id = $1 ORDER BY o.created_at DESC"
	return r.queryOrders(ctx, query, userID)
}

func (r *orderRepository) ListOrders(ctx context.Context, limit int) ([]*models.Order, error) {
	query := "SELECT " + orderColumns + orderFrom + " ORDER BY o.created_at DESC"
	if limit > 0 {
		return r.queryOrders(ctx, query+" LIMIT $1", limit)
	}
	return r.queryOrders(ctx, query)
}

// UpdateOrderStatus ставит время оплаты/доставки только при переходе флага из false в true.
// Обратный переход время не сбрасывает.
func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, isPaid, isDelivered *bool) (*models.Order, error) {
	query := `
		WITH updated AS (
			UPDATE orders SET
				paid_at      = CASE WHEN $2::boolean IS TRUE AND NOT is_paid THEN NOW() ELSE paid_at END,
				is_paid      = COALESCE($2::boolean, is_paid),
				delivered_at = CASE WHEN $3::boolean IS TRUE AND NOT is_delivered THEN NOW() ELSE delivered_at END,
				is_delivered = COALESCE($3::boolean, is_delivered),
				updated_at   = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + orderColumns + ` FROM updated o LEFT JOIN users u ON u.id = o.user_id`
	row := r.db.QueryRowContext(ctx, query, id, isPaid, isDelivered)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "failed to update order status")
	}
	return order, nil
}
