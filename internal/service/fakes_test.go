package service_test

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shophub/shop-api/internal/domain/models"
	"github.com/shophub/shop-api/internal/storage"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
	err   error
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, err := f.GetUserByEmail(ctx, user.Email); err == nil {
		return nil, storage.ErrUserExists
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) ListUsers(ctx context.Context, limit int) ([]*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	users := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (f *fakeUserRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return storage.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*models.Product
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*models.Product)}
}

func (f *fakeProductRepo) ListProducts(ctx context.Context) ([]*models.Product, error) {
	products := make([]*models.Product, 0, len(f.products))
	for _, p := range f.products {
		products = append(products, p)
	}
	return products, nil
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProductRepo) UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	if _, ok := f.products[p.ID]; !ok {
		return nil, storage.ErrProductNotFound
	}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProductRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.products[id]; !ok {
		return storage.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

// fakeCartRepo хранит корзины в памяти; транзакция в нем не используется
type fakeCartRepo struct {
	products *fakeProductRepo
	carts    map[uuid.UUID]uuid.UUID        // userID -> cartID
	lines    map[uuid.UUID][]models.CartItem // cartID -> строки
}

var _ storage.CartStorage = (*fakeCartRepo)(nil)

func newFakeCartRepo(products *fakeProductRepo) *fakeCartRepo {
	return &fakeCartRepo{
		products: products,
		carts:    make(map[uuid.UUID]uuid.UUID),
		lines:    make(map[uuid.UUID][]models.CartItem),
	}
}

func (f *fakeCartRepo) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cartID, ok := f.carts[userID]
	if !ok {
		return nil, storage.ErrCartNotFound
	}
	items := append([]models.CartItem{}, f.lines[cartID]...)
	return &models.Cart{ID: cartID, UserID: userID, Items: items}, nil
}

func (f *fakeCartRepo) EnsureCartTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (uuid.UUID, error) {
	if cartID, ok := f.carts[userID]; ok {
		return cartID, nil
	}
	cartID := uuid.New()
	f.carts[userID] = cartID
	return cartID, nil
}

func (f *fakeCartRepo) TouchCartTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (uuid.UUID, error) {
	cartID, ok := f.carts[userID]
	if !ok {
		return uuid.Nil, storage.ErrCartNotFound
	}
	return cartID, nil
}

func (f *fakeCartRepo) IncrementItemTx(ctx context.Context, tx *sql.Tx, cartID, productID uuid.UUID, quantity int) error {
	p, ok := f.products.products[productID]
	if !ok {
		return storage.ErrProductNotFound
	}
	lines := f.lines[cartID]
	for i := range lines {
		if lines[i].Product.ID == productID {
			lines[i].Quantity += quantity
			return nil
		}
	}
	f.lines[cartID] = append(lines, models.CartItem{Product: *p, Quantity: quantity})
	return nil
}

func (f *fakeCartRepo) SetItemQuantityTx(ctx context.Context, tx *sql.Tx, cartID, productID uuid.UUID, quantity int) error {
	lines := f.lines[cartID]
	for i := range lines {
		if lines[i].Product.ID == productID {
			lines[i].Quantity = quantity
			return nil
		}
	}
	return storage.ErrCartItemNotFound
}

func (f *fakeCartRepo) RemoveItemTx(ctx context.Context, tx *sql.Tx, cartID, productID uuid.UUID) error {
	kept := f.lines[cartID][:0]
	for _, line := range f.lines[cartID] {
		if line.Product.ID != productID {
			kept = append(kept, line)
		}
	}
	f.lines[cartID] = kept
	return nil
}

type fakeOrderRepo struct {
	orders  map[uuid.UUID]*models.Order
	lookups int
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (f *fakeOrderRepo) sorted() []*models.Order {
	orders := make([]*models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	f.lookups++
	o, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	orders := make([]*models.Order, 0)
	for _, o := range f.sorted() {
		if o.User.ID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (f *fakeOrderRepo) ListOrders(ctx context.Context, limit int) ([]*models.Order, error) {
	orders := f.sorted()
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

// UpdateOrderStatus повторяет правило хранилища: время ставится только при переходе в true
func (f *fakeOrderRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, isPaid, isDelivered *bool) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	now := time.Now()
	if isPaid != nil {
		if *isPaid && !o.IsPaid {
			o.PaidAt = &now
		}
		o.IsPaid = *isPaid
	}
	if isDelivered != nil {
		if *isDelivered && !o.IsDelivered {
			o.DeliveredAt = &now
		}
		o.IsDelivered = *isDelivered
	}
	return o, nil
}

// fakeStatsRepo считает агрегаты по fakeOrderRepo
type fakeStatsRepo struct {
	users  *fakeUserRepo
	orders *fakeOrderRepo
	err    error
}

var _ storage.StatsStorage = (*fakeStatsRepo)(nil)

func (f *fakeStatsRepo) CountUsers(ctx context.Context) (int, error) {
	return len(f.users.users), nil
}

func (f *fakeStatsRepo) GetOrderTotals(ctx context.Context) (*storage.OrderTotals, error) {
	if f.err != nil {
		return nil, f.err
	}
	totals := &storage.OrderTotals{TotalRevenue: decimal.Zero}
	for _, o := range f.orders.orders {
		totals.TotalOrders++
		totals.TotalRevenue = totals.TotalRevenue.Add(o.TotalPrice)
		if !o.IsPaid {
			totals.PendingOrders++
		}
		if o.IsDelivered {
			totals.DeliveredOrders++
		}
	}
	return totals, nil
}

type fakeProvider struct {
	lastAmount   int64
	lastCurrency string
	lastReceipt  string
	err          error
}

func (f *fakeProvider) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*models.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastAmount, f.lastCurrency, f.lastReceipt = amount, currency, receipt
	return &models.PaymentIntent{ID: "order_test123", Amount: amount, Currency: currency, Receipt: receipt}, nil
}

var errDB = errors.New("db error")
