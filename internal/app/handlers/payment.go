package handlers

import (
	"log/slog"
	"net/http"

	"github.com/shophub/shop-api/internal/lib/api/response"
	"github.com/shophub/shop-api/internal/service"
)

type CreatePaymentRequest struct {
	Amount int64 `json:"amount"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CreatePaymentOrderHandler - POST /api/payment/razorpay/create-order
func CreatePaymentOrderHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreatePaymentOrderHandler"
		logger := log.With(slog.String("op", op))

		caller, ok := callerFrom(w, r, logger)
		if !ok {
			return
		}
		var req CreatePaymentRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		order, err := paymentService.CreatePaymentOrder(r.Context(), caller.UserID, req.Amount)
		if err != nil {
			logger.Error("failed to create payment order", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		response.JSON(w, http.StatusOK, order)
	}
}

// VerifyPaymentHandler - POST /api/payment/razorpay/verify.
// Заказ оплаченным не помечается, это делает админ.
func VerifyPaymentHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.VerifyPaymentHandler"
		logger := log.With(slog.String("op", op))

		var req VerifyPaymentRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		if !paymentService.VerifyPayment(r.Context(), req.OrderID, req.PaymentID, req.Signature) {
			response.JSON(w, http.StatusBadRequest, VerifyPaymentResponse{Success: false, Message: "Invalid signature"})
			return
		}
		response.JSON(w, http.StatusOK, VerifyPaymentResponse{Success: true, Message: "Payment verified successfully"})
	}
}
