package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shophub/shop-api/internal/lib/api/response"
	"github.com/shophub/shop-api/internal/service"
)

// OrderStatusRequest - отсутствующий флаг не меняется
type OrderStatusRequest struct {
	IsPaid      *bool `json:"isPaid"`
	IsDelivered *bool `json:"isDelivered"`
}

func DashboardStatsHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DashboardStatsHandler"
		logger := log.With(slog.String("op", op))

		stats, err := adminService.DashboardStats(r.Context())
		if err != nil {
			logger.Error("failed to get stats", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		response.JSON(w, http.StatusOK, stats)
	}
}

func ListAllOrdersHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListAllOrdersHandler"
		logger := log.With(slog.String("op", op))

		orders, err := adminService.ListAllOrders(r.Context())
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		response.JSON(w, http.StatusOK, orders)
	}
}

func ListAllUsersHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListAllUsersHandler"
		logger := log.With(slog.String("op", op))

		users, err := adminService.ListAllUsers(r.Context())
		if err != nil {
			logger.Error("failed to list users", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		response.JSON(w, http.StatusOK, users)
	}
}

// UpdateOrderStatusHandler - PUT /api/admin/orders/{id}
func UpdateOrderStatusHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderStatusHandler"
		logger := log.With(slog.String("op", op))

		var req OrderStatusRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		order, err := adminService.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), service.OrderStatusInput{
			IsPaid:      req.IsPaid,
			IsDelivered: req.IsDelivered,
		})
		if err != nil {
			logger.Error("failed to update order", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		response.JSON(w, http.StatusOK, order)
	}
}

// DeleteUserHandler - DELETE /api/admin/users/{id}
func DeleteUserHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteUserHandler"
		logger := log.With(slog.String("op", op))

		caller, ok := callerFrom(w, r, logger)
		if !ok {
			return
		}

		if err := adminService.DeleteUser(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
			logger.Error("failed to delete user", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		response.Message(w, http.StatusOK, "User deleted successfully")
	}
}
