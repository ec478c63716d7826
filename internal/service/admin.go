package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/shophub/shop-api/internal/domain/access"
	"github.com/shophub/shop-api/internal/domain/models"
	"github.com/shophub/shop-api/internal/lib/apperr"
	"github.com/shophub/shop-api/internal/storage"
)

// сколько последних заказов и пользователей показывает панель
const recentLimit = 5

// DashboardStats - сводка для панели администратора.
// TotalRevenue включает неоплаченные заказы.
type DashboardStats struct {
	TotalUsers      int             `json:"totalUsers"`
	TotalOrders     int             `json:"totalOrders"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	PendingOrders   int             `json:"pendingOrders"`
	DeliveredOrders int             `json:"deliveredOrders"`
	RecentOrders    []*models.Order `json:"recentOrders"`
	RecentUsers     []*models.User  `json:"recentUsers"`
}

// OrderStatusInput - флаги, nil означает "не менять"
type OrderStatusInput struct {
	IsPaid      *bool
	IsDelivered *bool
}

type AdminService interface {
	ListAllOrders(ctx context.Context) ([]*models.Order, error)
	ListAllUsers(ctx context.Context) ([]*models.User, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	UpdateOrderStatus(ctx context.Context, orderID string, in OrderStatusInput) (*models.Order, error)
	DeleteUser(ctx context.Context, caller access.Identity, targetID string) error
}

type adminService struct {
	log       *slog.Logger
	userRepo  storage.UserStorage
	orderRepo storage.OrderStorage
	statsRepo storage.StatsStorage
}

func NewAdminService(log *slog.Logger, userRepo storage.UserStorage, orderRepo storage.OrderStorage, statsRepo storage.StatsStorage) AdminService {
	return &adminService{
		log:       log,
		userRepo:  userRepo,
		orderRepo: orderRepo,
		statsRepo: statsRepo,
	}
}

func (s *adminService) ListAllOrders(ctx context.Context) ([]*models.Order, error) {
	const op = "service.AdminService.ListAllOrders"
	logger := s.log.With(slog.String("op", op))

	orders, err := s.orderRepo.ListOrders(ctx, 0)
	if err != nil {
		logger.Error("failed to list orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Internal("Error fetching orders", err))
	}
	return orders, nil
}

func (s *adminService) ListAllUsers(ctx context.Context) ([]*models.User, error) {
	const op = "service.AdminService.ListAllUsers"
	logger := s.log.With(slog.String("op", op))

	users, err := s.userRepo.ListUsers(ctx, 0)
	if err != nil {
		logger.Error("failed to list users", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Internal("Error fetching users", err))
	}
	return users, nil
}

// DashboardStats собирает агрегаты параллельно, первая ошибка отменяет остальные запросы.
func (s *adminService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	const op = "service.AdminService.DashboardStats"
	logger := s.log.With(slog.String("op", op))

	stats := &DashboardStats{}
	var totals *storage.OrderTotals

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.statsRepo.CountUsers(gctx)
		stats.TotalUsers = count
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.statsRepo.GetOrderTotals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.RecentOrders, err = s.orderRepo.ListOrders(gctx, recentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		stats.RecentUsers, err = s.userRepo.ListUsers(gctx, recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("failed to collect stats", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Internal("Error fetching dashboard stats", err))
	}

	stats.TotalOrders = totals.TotalOrders
	stats.TotalRevenue = totals.TotalRevenue
	stats.PendingOrders = totals.PendingOrders
	stats.DeliveredOrders = totals.DeliveredOrders
	return stats, nil
}

func (s *adminService) UpdateOrderStatus(ctx context.Context, orderID string, in OrderStatusInput) (*models.Order, error) {
	const op = "service.AdminService.UpdateOrderStatus"
	logger := s.log.With(slog.String("op", op), slog.String("orderID", orderID))

	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.InvalidIDFormat("Invalid order ID format"))
	}

	order, err := s.orderRepo.UpdateOrderStatus(ctx, id, in.IsPaid, in.IsDelivered)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errOrderNotFound)
		}
		logger.Error("failed to update order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Internal("Error updating order", err))
	}

	logger.Info("order status updated",
		slog.Bool("isPaid", order.IsPaid),
		slog.Bool("isDelivered", order.IsDelivered),
	)
	return order, nil
}

// DeleteUser удаляет только запись пользователя, корзина и заказы остаются.
// Удалить самого себя нельзя независимо от того, существует ли запись.
func (s *adminService) DeleteUser(ctx context.Context, caller access.Identity, targetID string) error {
	const op = "service.AdminService.DeleteUser"
	logger := s.log.With(
		slog.String("op", op),
		slog.String("callerID", caller.UserID.String()),
		slog.String("targetID", targetID),
	)

	id, err := uuid.Parse(targetID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, apperr.InvalidIDFormat("Invalid user ID format"))
	}
	if id == caller.UserID {
		logger.Warn("attempt to delete own account")
		return fmt.Errorf("%s: %w", op, apperr.ErrSelfDeleteForbidden)
	}

	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, apperr.NotFound("User not found"))
		}
		logger.Error("failed to delete user", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, apperr.Internal("Error deleting user", err))
	}

	logger.Info("user deleted")
	return nil
}
