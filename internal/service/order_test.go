package service_test

import (
	"context"
	"testing"

	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/events"
	"github.com/bereketg/artisan-market/internal/service"
	"github.com/bereketg/artisan-market/internal/storage"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, models.CanTransition(models.OrderPending, models.OrderShipped))
	assert.True(t, models.CanTransition(models.OrderPending, models.OrderCancelled))
	assert.True(t, models.CanTransition(models.OrderShipped, models.OrderDelivered))

	assert.False(t, models.CanTransition(models.OrderPending, models.OrderDelivered))
	assert.False(t, models.CanTransition(models.OrderShipped, models.OrderCancelled))
	assert.False(t, models.CanTransition(models.OrderDelivered, models.OrderShipped))
	assert.False(t, models.CanTransition(models.OrderCancelled, models.OrderPending))
}

func newOrderFixture() (service.OrderService, *fakeOrderRepo) {
	repo := newFakeOrderRepo()
	return service.NewOrderService(testLogger(), repo, events.NopPublisher{}), repo
}

func seedOrders(ctx context.Context, repo *fakeOrderRepo) (mine, theirs int64) {
	mine, _ = repo.CreateOrderTx(ctx, nil, &models.Order{CustomerID: 1, ArtisanID: 7, Status: models.OrderPending, PaymentStatus: models.PaymentPending})
	theirs, _ = repo.CreateOrderTx(ctx, nil, &models.Order{CustomerID: 2, ArtisanID: 8, Status: models.OrderPending, PaymentStatus: models.PaymentPending})
	return mine, theirs
}

func TestOrderService_ListOrders_ScopedByRole(t *testing.T) {
	svc, repo := newOrderFixture()
	ctx := context.Background()
	seedOrders(ctx, repo)

	asCustomer, err := svc.ListOrders(ctx, 1, models.RoleCustomer)
	assert.NoError(t, err)
	assert.Len(t, asCustomer, 1)
	assert.Equal(t, int64(1), asCustomer[0].CustomerID)

	asArtisan, err := svc.ListOrders(ctx, 8, models.RoleArtisan)
	assert.NoError(t, err)
	assert.Len(t, asArtisan, 1)
	assert.Equal(t, int64(8), asArtisan[0].ArtisanID)

	asAdmin, err := svc.ListOrders(ctx, 99, models.RoleAdmin)
	assert.NoError(t, err)
	assert.Len(t, asAdmin, 2)
}

func TestOrderService_GetOrder_AccessControl(t *testing.T) {
	svc, repo := newOrderFixture()
	ctx := context.Background()
	mine, theirs := seedOrders(ctx, repo)

	_, err := svc.GetOrder(ctx, 1, models.RoleCustomer, mine)
	assert.NoError(t, err)

	_, err = svc.GetOrder(ctx, 1, models.RoleCustomer, theirs)
	assert.Error(t, err, "a customer may not read someone else's order")

	// the order's artisan and any admin may read it
	_, err = svc.GetOrder(ctx, 7, models.RoleArtisan, mine)
	assert.NoError(t, err)
	_, err = svc.GetOrder(ctx, 99, models.RoleAdmin, theirs)
	assert.NoError(t, err)

	_, err = svc.GetOrder(ctx, 1, models.RoleCustomer, 404)
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	svc, repo := newOrderFixture()
	ctx := context.Background()
	mine, _ := seedOrders(ctx, repo)

	assert.NoError(t, svc.UpdateStatus(ctx, 7, models.RoleArtisan, mine, models.OrderShipped))
	order, _ := repo.GetOrderByID(ctx, mine)
	assert.Equal(t, models.OrderShipped, order.Status)

	assert.NoError(t, svc.UpdateStatus(ctx, 7, models.RoleArtisan, mine, models.OrderDelivered))
}

func TestOrderService_UpdateStatus_BadTransition(t *testing.T) {
	svc, repo := newOrderFixture()
	ctx := context.Background()
	mine, _ := seedOrders(ctx, repo)

	err := svc.UpdateStatus(ctx, 7, models.RoleArtisan, mine, models.OrderDelivered)
	assert.ErrorIs(t, err, service.ErrBadTransition)

	order, _ := repo.GetOrderByID(ctx, mine)
	assert.Equal(t, models.OrderPending, order.Status, "a rejected transition must not change the order")
}

func TestOrderService_UpdateStatus_NotTheOrdersArtisan(t *testing.T) {
	svc, repo := newOrderFixture()
	ctx := context.Background()
	mine, _ := seedOrders(ctx, repo)

	err := svc.UpdateStatus(ctx, 8, models.RoleArtisan, mine, models.OrderShipped)
	assert.Error(t, err)

	// admins may move any order
	assert.NoError(t, svc.UpdateStatus(ctx, 99, models.RoleAdmin, mine, models.OrderShipped))
}
