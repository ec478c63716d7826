package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shophub/shop-api/internal/domain/models"
	"github.com/shophub/shop-api/internal/lib/apperr"
)

// PaymentProvider открывает платеж у внешнего провайдера
type PaymentProvider interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*models.PaymentIntent, error)
}

// PaymentOrder - ответ клиенту для запуска оплаты на его стороне
type PaymentOrder struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

type PaymentService interface {
	CreatePaymentOrder(ctx context.Context, userID uuid.UUID, amount int64) (*PaymentOrder, error)
	// VerifyPayment только проверяет подпись, заказы не помечаются оплаченными.
	VerifyPayment(ctx context.Context, orderID, paymentID, signature string) bool
}

type PaymentConfig struct {
	KeyID     string
	KeySecret string
	Currency  string
}

type paymentService struct {
	log      *slog.Logger
	provider PaymentProvider
	cfg      PaymentConfig
	now      func() time.Time
}

func NewPaymentService(log *slog.Logger, provider PaymentProvider, cfg PaymentConfig) PaymentService {
	return &paymentService{
		log:      log,
		provider: provider,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *paymentService) CreatePaymentOrder(ctx context.Context, userID uuid.UUID, amount int64) (*PaymentOrder, error) {
	const op = "service.PaymentService.CreatePaymentOrder"
	logger := s.log.With(slog.String("op", op), slog.String("userID", userID.String()))

	if amount <= 0 {
		return nil, fmt.Errorf("%s: %w", op, apperr.InvalidInput("Amount must be a positive integer"))
	}

	receipt := fmt.Sprintf("receipt_%d", s.now().UnixMilli())
	intent, err := s.provider.CreateOrder(ctx, amount, s.cfg.Currency, receipt)
	if err != nil {
		logger.Error("provider rejected order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Internal("Failed to create payment order", err))
	}

	logger.Info("payment order created",
		slog.String("providerOrderID", intent.ID),
		slog.Int64("amount", intent.Amount),
	)
	return &PaymentOrder{
		OrderID:  intent.ID,
		Amount:   intent.Amount,
		Currency: intent.Currency,
		KeyID:    s.cfg.KeyID,
	}, nil
}

func (s *paymentService) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) bool {
	const op = "service.PaymentService.VerifyPayment"
	logger := s.log.With(slog.String("op", op), slog.String("providerOrderID", orderID))

	expected := PaymentSignature(s.cfg.KeySecret, orderID, paymentID)
	ok := hmac.Equal([]byte(expected), []byte(signature))
	if !ok {
		logger.Warn("payment signature mismatch")
		return false
	}

	logger.Info("payment verified", slog.String("paymentID", paymentID))
	return true
}

// PaymentSignature - HMAC-SHA256 от "orderID|paymentID" в нижнем hex
func PaymentSignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
