package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shophub/shop-api/internal/domain/models"
	"github.com/shophub/shop-api/internal/lib/api/response"
	"github.com/shophub/shop-api/internal/service"
)

// CreateOrderRequest - снимок заказа от клиента. Проверки порядка полей делает сервис.
type CreateOrderRequest struct {
	OrderItems      []models.OrderItem     `json:"orderItems"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ItemsPrice      decimal.Decimal        `json:"itemsPrice"`
	TaxPrice        decimal.Decimal        `json:"taxPrice"`
	ShippingPrice   decimal.Decimal        `json:"shippingPrice"`
	TotalPrice      decimal.Decimal        `json:"totalPrice"`
}

// CreateOrderHandler - POST /api/orders
func CreateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		caller, ok := callerFrom(w, r, logger)
		if !ok {
			return
		}
		var req CreateOrderRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		order, err := orderService.CreateOrder(r.Context(), caller.UserID, service.CreateOrderInput{
			OrderItems:      req.OrderItems,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			ItemsPrice:      req.ItemsPrice,
			TaxPrice:        req.TaxPrice,
			ShippingPrice:   req.ShippingPrice,
			TotalPrice:      req.TotalPrice,
		})
		if err != nil {
			logger.Error("failed to create order", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		response.JSON(w, http.StatusCreated, order)
	}
}

// GetMyOrdersHandler - GET /api/orders/mine
func GetMyOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetMyOrdersHandler"
		logger := log.With(slog.String("op", op))

		caller, ok := callerFrom(w, r, logger)
		if !ok {
			return
		}

		orders, err := orderService.GetMyOrders(r.Context(), caller.UserID)
		if err != nil {
			logger.Error("failed to get orders", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		response.JSON(w, http.StatusOK, orders)
	}
}

// GetOrderByIDHandler - GET /api/orders/{id}
func GetOrderByIDHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderByIDHandler"
		logger := log.With(slog.String("op", op))

		caller, ok := callerFrom(w, r, logger)
		if !ok {
			return
		}

		order, err := orderService.GetOrderByID(r.Context(), caller, chi.URLParam(r, "id"))
		if err != nil {
			logger.Error("failed to get order", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		response.JSON(w, http.StatusOK, order)
	}
}
