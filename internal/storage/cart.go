package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shophub/shop-api/internal/domain/models"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("product not in cart")
)

// CartStorage описывает методы для работы с корзиной.
// Мутации выполняются внутри транзакции, которую открывает сервис.
type CartStorage interface {
	// GetCartByUserID возвращает корзину с раскрытыми товарами.
	GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	// EnsureCartTx создает корзину, если ее нет, и возвращает ее id.
	EnsureCartTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (uuid.UUID, error)
	// TouchCartTx блокирует существующую корзину и обновляет updated_at.
	TouchCartTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (uuid.UUID, error)
	// IncrementItemTx атомарно добавляет количество к строке или вставляет новую.
	IncrementItemTx(ctx context.Context, tx *sql.Tx, cartID, productID uuid.UUID, quantity int) error
	SetItemQuantityTx(ctx context.Context, tx *sql.Tx, cartID, productID uuid.UUID, quantity int) error
	RemoveItemTx(ctx context.Context, tx *sql.Tx, cartID, productID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart := &models.Cart{UserID: userID}
	row := r.db.QueryRowContext(ctx, "SELECT id, created_at, updated_at FROM carts WHERE user_id = $1", userID)
	if err := row.Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, errors.Wrap(err, "failed to get cart")
	}

	query := `
		SELECT p.id, p.name, p.description, p.price, p.image, p.in_stock, p.category, p.created_at, p.updated_at, ci.quantity
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.cart_id = $1
		ORDER BY p.name`
	rows, err := r.db.QueryContext(ctx, query, cart.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query cart items")
	}
	defer rows.Close()

	cart.Items = make([]models.CartItem, 0)
	for rows.Next() {
		var item models.CartItem
		p := &item.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.InStock, &p.Category, &p.CreatedAt, &p.UpdatedAt, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *cartRepository) EnsureCartTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (uuid.UUID, error) {
	// при конфликте по user_id возвращается id уже существующей корзины
	query := `INSERT INTO carts (id, user_id, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())
	          ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
	          RETURNING id`
	var cartID uuid.UUID
	if err := tx.QueryRowContext(ctx, query, uuid.New(), userID).Scan(&cartID); err != nil {
		return uuid.Nil, errors.Wrap(err, "failed to ensure cart")
	}
	return cartID, nil
}

func (r *cartRepository) TouchCartTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (uuid.UUID, error) {
	var cartID uuid.UUID
	err := tx.QueryRowContext(ctx, "UPDATE carts SET updated_at = NOW() WHERE user_id = $1 RETURNING id", userID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrCartNotFound
		}
		return uuid.Nil, errors.Wrap(err, "failed to lock cart")
	}
	return cartID, nil
}

func (r *cartRepository) IncrementItemTx(ctx context.Context, tx *sql.Tx, cartID, productID uuid.UUID, quantity int) error {
	query := `INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)
	          ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`
	if _, err := tx.ExecContext(ctx, query, cartID, productID, quantity); err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return ErrProductNotFound
		}
		return errors.Wrap(err, "failed to add cart item")
	}
	return nil
}

func (r *cartRepository) SetItemQuantityTx(ctx context.Context, tx *sql.Tx, cartID, productID uuid.UUID, quantity int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $3 WHERE cart_id = $1 AND product_id = $2",
		cartID, productID, quantity)
	if err != nil {
		return errors.Wrap(err, "failed to update cart item")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// RemoveItemTx не считает отсутствие строки ошибкой
func (r *cartRepository) RemoveItemTx(ctx context.Context, tx *sql.Tx, cartID, productID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2", cartID, productID)
	if err != nil {
		return errors.Wrap(err, "failed to remove cart item")
	}
	return nil
}
