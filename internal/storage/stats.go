package storage

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// OrderTotals - агрегаты по всем заказам для панели администратора
type OrderTotals struct {
	TotalOrders     int
	TotalRevenue    decimal.Decimal
	PendingOrders   int
	DeliveredOrders int
}

// StatsStorage - read-side запросы админки
type StatsStorage interface {
	CountUsers(ctx context.Context) (int, error)
	// GetOrderTotals считает выручку по всем заказам, включая неоплаченные.
	GetOrderTotals(ctx context.Context) (*OrderTotals, error)
}

type statsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) StatsStorage {
	return &statsRepository{db: db}
}

func (r *statsRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count users")
	}
	return count, nil
}

func (r *statsRepository) GetOrderTotals(ctx context.Context) (*OrderTotals, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(total_price), 0),
		       COUNT(*) FILTER (WHERE NOT is_paid),
		       COUNT(*) FILTER (WHERE is_delivered)
		FROM orders`
	totals := &OrderTotals{}
	err := r.db.QueryRowContext(ctx, query).Scan(&totals.TotalOrders, &totals.TotalRevenue, &totals.PendingOrders, &totals.DeliveredOrders)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate orders")
	}
	return totals, nil
}
