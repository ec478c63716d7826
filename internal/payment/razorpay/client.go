// Package razorpay - клиент Orders API платежного провайдера.
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/shophub/shop-api/internal/domain/models"
)

type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

type Client struct {
	log        *slog.Logger
	cfg        Config
	httpClient *http.Client
}

func New(log *slog.Logger, cfg Config) *Client {
	return &Client{
		log: log,
		cfg: cfg,
		// без ретраев: повторный запрос открыл бы второй платеж
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type apiError struct {
	Error *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error,omitempty"`
}

// CreateOrder открывает заказ у провайдера. amount в минимальных единицах валюты.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*models.PaymentIntent, error) {
	const op = "razorpay.Client.CreateOrder"
	logger := c.log.With(slog.String("op", op), slog.String("receipt", receipt))

	payload, err := json.Marshal(createOrderRequest{Amount: amount, Currency: currency, Receipt: receipt})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode order request")
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/orders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build order request")
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("provider unreachable", slog.Any("error", err))
		return nil, errors.Wrap(err, "failed to reach razorpay")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read razorpay response")
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != nil {
			return nil, fmt.Errorf("razorpay error (%d): %s", resp.StatusCode, apiErr.Error.Description)
		}
		return nil, fmt.Errorf("razorpay error (%d): %s", resp.StatusCode, string(body))
	}

	var intent models.PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, errors.Wrap(err, "failed to parse razorpay response")
	}
	if intent.ID == "" {
		return nil, errors.New("razorpay returned empty order id")
	}

	logger.Debug("provider order created", slog.String("orderID", intent.ID), slog.String("status", intent.Status))
	return &intent, nil
}
