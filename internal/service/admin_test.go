package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shophub/shop-api/internal/domain/access"
	"github.com/shophub/shop-api/internal/domain/models"
	"github.com/shophub/shop-api/internal/lib/apperr"
	"github.com/shophub/shop-api/internal/service"
)

type adminFixture struct {
	svc    service.AdminService
	users  *fakeUserRepo
	orders *fakeOrderRepo
	stats  *fakeStatsRepo
}

func newAdminFixture() *adminFixture {
	users := newFakeUserRepo()
	orders := newFakeOrderRepo()
	stats := &fakeStatsRepo{users: users, orders: orders}
	return &adminFixture{
		svc:    service.NewAdminService(newLogger(), users, orders, stats),
		users:  users,
		orders: orders,
		stats:  stats,
	}
}

func (f *adminFixture) addOrder(total string, paid, delivered bool, age time.Duration) *models.Order {
	o := &models.Order{
		ID:          uuid.New(),
		User:        models.UserRef{ID: uuid.New()},
		TotalPrice:  decimal.RequireFromString(total),
		IsPaid:      paid,
		IsDelivered: delivered,
		CreatedAt:   time.Now().Add(-age),
	}
	f.orders.orders[o.ID] = o
	return o
}

func TestAdminService_DashboardStats_RevenueIncludesUnpaid(t *testing.T) {
	f := newAdminFixture()
	f.addOrder("100.50", true, true, time.Hour)
	f.addOrder("200.25", false, false, 2*time.Hour)
	f.addOrder("50", false, false, 3*time.Hour)
	for i := 0; i < 7; i++ {
		f.users.users[uuid.New()] = &models.User{CreatedAt: time.Now().Add(-time.Duration(i) * time.Minute)}
	}

	stats, err := f.svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalUsers)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("350.75")), stats.TotalRevenue.String())
	assert.Equal(t, 2, stats.PendingOrders)
	assert.Equal(t, 1, stats.DeliveredOrders)
	assert.Len(t, stats.RecentOrders, 3)
	assert.Len(t, stats.RecentUsers, 5)
}

func TestAdminService_DashboardStats_Failure(t *testing.T) {
	f := newAdminFixture()
	f.stats.err = errDB

	_, err := f.svc.DashboardStats(context.Background())
	e := apperr.As(err)
	assert.Equal(t, apperr.KindInternal, e.Kind)
	assert.Equal(t, "Error fetching dashboard stats", e.Message)
}

func TestAdminService_UpdateOrderStatus(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	order := f.addOrder("10", false, false, time.Hour)
	yes, no := true, false

	updated, err := f.svc.UpdateOrderStatus(ctx, order.ID.String(), service.OrderStatusInput{IsPaid: &yes})
	require.NoError(t, err)
	assert.True(t, updated.IsPaid)
	require.NotNil(t, updated.PaidAt)
	assert.False(t, updated.IsDelivered, "flags are independent")
	assert.Nil(t, updated.DeliveredAt)
	paidAt := *updated.PaidAt

	// повторная установка true не сдвигает время, false его не сбрасывает
	updated, err = f.svc.UpdateOrderStatus(ctx, order.ID.String(), service.OrderStatusInput{IsPaid: &yes, IsDelivered: &yes})
	require.NoError(t, err)
	assert.Equal(t, paidAt, *updated.PaidAt)
	require.NotNil(t, updated.DeliveredAt)

	updated, err = f.svc.UpdateOrderStatus(ctx, order.ID.String(), service.OrderStatusInput{IsPaid: &no})
	require.NoError(t, err)
	assert.False(t, updated.IsPaid)
	assert.NotNil(t, updated.PaidAt)

	_, err = f.svc.UpdateOrderStatus(ctx, uuid.NewString(), service.OrderStatusInput{IsPaid: &yes})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.UpdateOrderStatus(ctx, "nope", service.OrderStatusInput{})
	assert.ErrorIs(t, err, apperr.ErrInvalidIDFormat)
}

func TestAdminService_DeleteUser(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	admin := &models.User{ID: uuid.New(), IsAdmin: true}
	victim := &models.User{ID: uuid.New()}
	f.users.users[admin.ID] = admin
	f.users.users[victim.ID] = victim
	order := f.addOrder("10", false, false, time.Hour)
	order.User.ID = victim.ID
	caller := access.IdentityOf(admin)

	err := f.svc.DeleteUser(ctx, caller, admin.ID.String())
	assert.ErrorIs(t, err, apperr.ErrSelfDeleteForbidden)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	require.NoError(t, f.svc.DeleteUser(ctx, caller, victim.ID.String()))
	_, ok := f.users.users[victim.ID]
	assert.False(t, ok)
	// заказы удаленного пользователя остаются
	assert.Contains(t, f.orders.orders, order.ID)

	err = f.svc.DeleteUser(ctx, caller, victim.ID.String())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAdminService_DeleteSelfFailsEvenWhenRecordIsGone(t *testing.T) {
	f := newAdminFixture()
	caller := access.Identity{UserID: uuid.New(), Role: access.RoleCustomer}

	err := f.svc.DeleteUser(context.Background(), caller, caller.UserID.String())
	assert.ErrorIs(t, err, apperr.ErrSelfDeleteForbidden)
}

func TestAdminService_Lists(t *testing.T) {
	f := newAdminFixture()
	newest := f.addOrder("1", false, false, 0)
	f.addOrder("2", false, false, time.Hour)

	orders, err := f.svc.ListAllOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newest.ID, orders[0].ID)

	f.users.err = errDB
	_, err = f.svc.ListAllUsers(context.Background())
	assert.Equal(t, "Error fetching users", apperr.As(err).Message)
}
