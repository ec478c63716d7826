package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shophub/shop-api/internal/domain/models"
	"github.com/shophub/shop-api/internal/lib/apperr"
	"github.com/shophub/shop-api/internal/storage"
)

// CartService - корзина вызывающего пользователя. Чужие корзины недоступны:
// userID всегда берется из Identity.
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*models.Cart, error)
}

type cartService struct {
	log      *slog.Logger
	db       *sql.DB
	cartRepo storage.CartStorage
}

func NewCartService(log *slog.Logger, db *sql.DB, cartRepo storage.CartStorage) CartService {
	return &cartService{
		log:      log,
		db:       db,
		cartRepo: cartRepo,
	}
}

var (
	errCartNotFound     = apperr.NotFound("Cart not found")
	errCartItemNotFound = apperr.NotFound("Product not in cart")
	errBadQuantity      = apperr.InvalidInput("Quantity must be a positive integer")
)

// GetCart возвращает корзину с раскрытыми товарами.
// Если корзины еще нет, возвращается пустая без id.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	const op = "service.CartService.GetCart"
	logger := s.log.With(slog.String("op", op), slog.String("userID", userID.String()))

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrCartNotFound) {
			return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
		}
		logger.Error("failed to get cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Internal("Error fetching cart", err))
	}
	return cart, nil
}

// AddItem создает корзину при необходимости и прибавляет quantity к строке товара.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*models.Cart, error) {
	const op = "service.CartService.AddItem"
	logger := s.log.With(slog.String("op", op), slog.String("userID", userID.String()), slog.String("productID", productID))

	if quantity < 1 {
		return nil, fmt.Errorf("%s: %w", op, errBadQuantity)
	}
	pid, err := parseProductID(productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, apperr.Internal("Error adding to cart", err))
	}

	cartID, err := s.cartRepo.EnsureCartTx(ctx, tx, userID)
	if err != nil {
		rollback(logger, tx)
		logger.Error("failed to ensure cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to ensure cart: %w", op, apperr.Internal("Error adding to cart", err))
	}

	if err := s.cartRepo.IncrementItemTx(ctx, tx, cartID, pid, quantity); err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errProductNotFound)
		}
		logger.Error("failed to add item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to add item: %w", op, apperr.Internal("Error adding to cart", err))
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, apperr.Internal("Error adding to cart", err))
	}

	logger.Info("item added to cart", slog.Int("quantity", quantity))
	return s.reload(ctx, op, userID)
}

// UpdateItem заменяет количество в существующей строке.
func (s *cartService) UpdateItem(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*models.Cart, error) {
	const op = "service.CartService.UpdateItem"
	logger := s.log.With(slog.String("op", op), slog.String("userID", userID.String()), slog.String("productID", productID))

	if quantity < 1 {
		return nil, fmt.Errorf("%s: %w", op, errBadQuantity)
	}
	pid, err := parseProductID(productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, apperr.Internal("Error updating cart", err))
	}

	cartID, err := s.cartRepo.TouchCartTx(ctx, tx, userID)
	if err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrCartNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errCartNotFound)
		}
		logger.Error("failed to lock cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to lock cart: %w", op, apperr.Internal("Error updating cart", err))
	}

	if err := s.cartRepo.SetItemQuantityTx(ctx, tx, cartID, pid, quantity); err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrCartItemNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errCartItemNotFound)
		}
		logger.Error("failed to update item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update item: %w", op, apperr.Internal("Error updating cart", err))
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, apperr.Internal("Error updating cart", err))
	}

	logger.Info("cart item updated", slog.Int("quantity", quantity))
	return s.reload(ctx, op, userID)
}

// RemoveItem убирает строку товара. Отсутствие товара в корзине не ошибка.
func (s *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*models.Cart, error) {
	const op = "service.CartService.RemoveItem"
	logger := s.log.With(slog.String("op", op), slog.String("userID", userID.String()), slog.String("productID", productID))

	pid, err := parseProductID(productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, apperr.Internal("Error removing from cart", err))
	}

	cartID, err := s.cartRepo.TouchCartTx(ctx, tx, userID)
	if err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrCartNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errCartNotFound)
		}
		logger.Error("failed to lock cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to lock cart: %w", op, apperr.Internal("Error removing from cart", err))
	}

	if err := s.cartRepo.RemoveItemTx(ctx, tx, cartID, pid); err != nil {
		rollback(logger, tx)
		logger.Error("failed to remove item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to remove item: %w", op, apperr.Internal("Error removing from cart", err))
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, apperr.Internal("Error removing from cart", err))
	}

	logger.Info("cart item removed")
	return s.reload(ctx, op, userID)
}

// reload читает корзину после мутации, чтобы вернуть товары целиком
func (s *cartService) reload(ctx context.Context, op string, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to reload cart", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to reload cart: %w", op, apperr.Internal("Error fetching cart", err))
	}
	return cart, nil
}

func rollback(logger *slog.Logger, tx *sql.Tx) {
	if rbErr := tx.Rollback(); rbErr != nil {
		logger.Error("transaction rollback failed", slog.Any("error", rbErr))
	}
}
