package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shophub/shop-api/internal/domain/models"
	"github.com/shophub/shop-api/internal/lib/api/response"
	"github.com/shophub/shop-api/internal/service"
)

type CartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// emptyCart - ответ, когда у пользователя еще нет корзины
type emptyCart struct {
	Items []models.CartItem `json:"items"`
}

func writeCart(w http.ResponseWriter, cart *models.Cart) {
	if cart.ID == uuid.Nil {
		response.JSON(w, http.StatusOK, emptyCart{Items: []models.CartItem{}})
		return
	}
	response.JSON(w, http.StatusOK, cart)
}

// GetCartHandler - GET /api/cart
func GetCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCartHandler"
		logger := log.With(slog.String("op", op))

		caller, ok := callerFrom(w, r, logger)
		if !ok {
			return
		}

		cart, err := cartService.GetCart(r.Context(), caller.UserID)
		if err != nil {
			logger.Error("failed to get cart", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		writeCart(w, cart)
	}
}

// AddToCartHandler - POST /api/cart/add
func AddToCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddToCartHandler"
		logger := log.With(slog.String("op", op))

		caller, ok := callerFrom(w, r, logger)
		if !ok {
			return
		}
		var req CartItemRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		cart, err := cartService.AddItem(r.Context(), caller.UserID, req.ProductID, req.Quantity)
		if err != nil {
			logger.Error("failed to add to cart", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		writeCart(w, cart)
	}
}

// UpdateCartItemHandler - PUT /api/cart/update
func UpdateCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateCartItemHandler"
		logger := log.With(slog.String("op", op))

		caller, ok := callerFrom(w, r, logger)
		if !ok {
			return
		}
		var req CartItemRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		cart, err := cartService.UpdateItem(r.Context(), caller.UserID, req.ProductID, req.Quantity)
		if err != nil {
			logger.Error("failed to update cart item", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		writeCart(w, cart)
	}
}

// RemoveFromCartHandler - DELETE /api/cart/remove/{productId}
func RemoveFromCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveFromCartHandler"
		logger := log.With(slog.String("op", op))

		caller, ok := callerFrom(w, r, logger)
		if !ok {
			return
		}

		cart, err := cartService.RemoveItem(r.Context(), caller.UserID, chi.URLParam(r, "productId"))
		if err != nil {
			logger.Error("failed to remove from cart", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		writeCart(w, cart)
	}
}
