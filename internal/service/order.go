package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shophub/shop-api/internal/domain/access"
	"github.com/shophub/shop-api/internal/domain/models"
	"github.com/shophub/shop-api/internal/lib/apperr"
	"github.com/shophub/shop-api/internal/storage"
)

// CreateOrderInput - заказ в том виде, в каком его прислал клиент.
// Суммы сохраняются как есть, без пересчета по каталогу.
type CreateOrderInput struct {
	OrderItems      []models.OrderItem
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
	ItemsPrice      decimal.Decimal
	TaxPrice        decimal.Decimal
	ShippingPrice   decimal.Decimal
	TotalPrice      decimal.Decimal
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, in CreateOrderInput) (*models.Order, error)
	GetMyOrders(ctx context.Context, userID uuid.UUID) ([]*models.Order, error)
	GetOrderByID(ctx context.Context, caller access.Identity, orderID string) (*models.Order, error)
}

type orderService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
}

func NewOrderService(log *slog.Logger, orderRepo storage.OrderStorage) OrderService {
	return &orderService{
		log:       log,
		orderRepo: orderRepo,
	}
}

var (
	ErrEmptyOrder        = apperr.New(apperr.KindInvalidInput, apperr.CodeEmptyOrder, "No order items")
	ErrMissingProductRef = apperr.New(apperr.KindInvalidInput, apperr.CodeMissingProductRef, "Each order item must have a product ID")
	ErrMissingAddress    = apperr.New(apperr.KindInvalidInput, apperr.CodeMissingAddress, "Shipping address is required")

	errOrderNotFound = apperr.NotFound("Order not found")
)

// validateOrder проверяет запрос в фиксированном порядке:
// пустой список, ссылка на товар, формат id, адрес.
func validateOrder(in CreateOrderInput) error {
	if len(in.OrderItems) == 0 {
		return ErrEmptyOrder
	}
	for _, item := range in.OrderItems {
		if item.Product == "" {
			return ErrMissingProductRef
		}
	}
	for _, item := range in.OrderItems {
		if _, err := uuid.Parse(item.Product); err != nil {
			return apperr.InvalidIDFormat("Invalid product: " + item.Product)
		}
	}
	if strings.TrimSpace(in.ShippingAddress.Address) == "" {
		return ErrMissingAddress
	}
	return nil
}

func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, in CreateOrderInput) (*models.Order, error) {
	const op = "service.OrderService.CreateOrder"
	logger := s.log.With(slog.String("op", op), slog.String("userID", userID.String()))

	if err := validateOrder(in); err != nil {
		logger.Warn("invalid order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order, err := s.orderRepo.CreateOrder(ctx, &models.Order{
		User:            models.UserRef{ID: userID},
		OrderItems:      in.OrderItems,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		ItemsPrice:      in.ItemsPrice,
		TaxPrice:        in.TaxPrice,
		ShippingPrice:   in.ShippingPrice,
		TotalPrice:      in.TotalPrice,
	})
	if err != nil {
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, apperr.Internal("Error creating order", err))
	}

	logger.Info("order created",
		slog.String("orderID", order.ID.String()),
		slog.String("total", order.TotalPrice.String()),
	)
	return order, nil
}

func (s *orderService) GetMyOrders(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	const op = "service.OrderService.GetMyOrders"
	logger := s.log.With(slog.String("op", op), slog.String("userID", userID.String()))

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		logger.Error("failed to get orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Internal("Error fetching orders", err))
	}
	return orders, nil
}

// GetOrderByID отдает заказ только его владельцу, админ смотрит заказы через админку.
func (s *orderService) GetOrderByID(ctx context.Context, caller access.Identity, orderID string) (*models.Order, error) {
	const op = "service.OrderService.GetOrderByID"
	logger := s.log.With(
		slog.String("op", op),
		slog.String("userID", caller.UserID.String()),
		slog.String("orderID", orderID),
	)

	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.InvalidIDFormat("Invalid order ID format"))
	}

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errOrderNotFound)
		}
		logger.Error("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Internal("Error fetching order", err))
	}

	if access.CheckOwnership(order.User.ID, caller) != access.Allowed {
		logger.Warn("order belongs to another user")
		return nil, fmt.Errorf("%s: %w", op, apperr.Forbidden("Not authorized to view this order"))
	}
	return order, nil
}
