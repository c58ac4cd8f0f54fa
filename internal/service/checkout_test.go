package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/events"
	"github.com/bereketg/artisan-market/internal/service"
	"github.com/stretchr/testify/assert"
)

type checkoutFixture struct {
	svc         service.CheckoutService
	cartRepo    *fakeCartRepo
	productRepo *fakeProductRepo
	orderRepo   *fakeOrderRepo
	paymentRepo *fakePaymentRepo
	userRepo    *fakeUserRepo
	gateway     *fakeGateway
	mock        sqlmock.Sqlmock
}

func newCheckoutFixture(t *testing.T, products ...*models.Product) *checkoutFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := testLogger()
	cartRepo := newFakeCartRepo()
	productRepo := newFakeProductRepo(products...)
	orderRepo := newFakeOrderRepo()
	paymentRepo := newFakePaymentRepo()
	userRepo := newFakeUserRepo()
	gateway := &fakeGateway{}

	cartSvc := service.NewCartService(log, cartRepo, productRepo)
	paymentSvc := service.NewPaymentService(log, gateway, paymentRepo, orderRepo, userRepo, events.NopPublisher{}, "ETB", "https://market.example/orders")
	svc := service.NewCheckoutService(log, db, cartSvc, cartRepo, productRepo, orderRepo, userRepo, paymentSvc, events.NopPublisher{})

	return &checkoutFixture{
		svc:         svc,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		mock:        mock,
	}
}

func (f *checkoutFixture) seedCustomer(ctx context.Context) *models.User {
	user, _ := f.userRepo.CreateUser(ctx, &models.User{
		Email: "abel@example.com",
		Name:  "Abel Tesfaye",
		Phone: "0911000000",
		Role:  models.RoleCustomer,
	})
	return user
}

func TestCheckout_EmptyCartBlocked(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(ctx)

	_, err := f.svc.Checkout(ctx, customer.ID)
	assert.Error(t, err)

	var vErr *service.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "cart", vErr.Field)

	assert.Empty(t, f.orderRepo.orders, "no order may exist after a blocked checkout")
	assert.Zero(t, f.gateway.initCalls, "no provider call may happen on a blocked checkout")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCheckout_MultipleArtisansBlocked(t *testing.T) {
	f := newCheckoutFixture(t,
		&models.Product{ID: 1, Name: "Clay mug", Price: 50, Stock: 10, ArtisanID: 7},
		&models.Product{ID: 2, Name: "Woven basket", Price: 30, Stock: 10, ArtisanID: 8},
	)
	ctx := context.Background()
	customer := f.seedCustomer(ctx)

	f.cartRepo.carts[customer.ID] = &models.Cart{UserID: customer.ID, Items: []models.CartItem{
		{ProductID: 1, Name: "Clay mug", UnitPrice: 50, Quantity: 2, ArtisanID: 7},
		{ProductID: 2, Name: "Woven basket", UnitPrice: 30, Quantity: 1, ArtisanID: 8},
	}}

	_, err := f.svc.Checkout(ctx, customer.ID)
	assert.ErrorIs(t, err, service.ErrMultipleArtisans)
	assert.Empty(t, f.orderRepo.orders)
	assert.Zero(t, f.gateway.initCalls)
}

func TestCheckout_ResolvesMissingArtisanFromCatalog(t *testing.T) {
	f := newCheckoutFixture(t,
		&models.Product{ID: 1, Name: "Clay mug", Price: 50, Stock: 10, ArtisanID: 7},
		&models.Product{ID: 2, Name: "Woven basket", Price: 30, Stock: 10, ArtisanID: 7},
	)
	ctx := context.Background()
	customer := f.seedCustomer(ctx)

	// second line carries no artisan; it resolves from the catalog and the
	// single-artisan check still passes
	f.cartRepo.carts[customer.ID] = &models.Cart{UserID: customer.ID, Items: []models.CartItem{
		{ProductID: 1, Name: "Clay mug", UnitPrice: 50, Quantity: 2, ArtisanID: 7},
		{ProductID: 2, Name: "Woven basket", UnitPrice: 30, Quantity: 1},
	}}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.svc.Checkout(ctx, customer.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), result.Order.ArtisanID)
}

func TestCheckout_UnresolvableArtisanBlocked(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(ctx)

	f.cartRepo.carts[customer.ID] = &models.Cart{UserID: customer.ID, Items: []models.CartItem{
		{ProductID: 99, Name: "Ghost item", UnitPrice: 10, Quantity: 1},
	}}

	_, err := f.svc.Checkout(ctx, customer.ID)
	var vErr *service.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "artisan_id", vErr.Field)
	assert.Zero(t, f.gateway.initCalls)
}

func TestCheckout_Success(t *testing.T) {
	f := newCheckoutFixture(t,
		&models.Product{ID: 1, Name: "Clay mug", Price: 50, Stock: 10, ArtisanID: 7},
		&models.Product{ID: 2, Name: "Woven basket", Price: 30, Stock: 10, ArtisanID: 7},
	)
	ctx := context.Background()
	customer := f.seedCustomer(ctx)

	f.cartRepo.carts[customer.ID] = &models.Cart{UserID: customer.ID, Items: []models.CartItem{
		{ProductID: 1, Name: "Clay mug", UnitPrice: 50, Quantity: 2, ArtisanID: 7},
		{ProductID: 2, Name: "Woven basket", UnitPrice: 30, Quantity: 1, ArtisanID: 7},
	}}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.svc.Checkout(ctx, customer.ID)
	assert.NoError(t, err)

	assert.Equal(t, 130.0, result.Order.TotalAmount)
	assert.Equal(t, models.OrderPending, result.Order.Status)
	assert.Equal(t, models.PaymentPending, result.Order.PaymentStatus)
	assert.Len(t, result.Order.Items, 2)
	assert.Empty(t, result.PaymentError)
	assert.NotEmpty(t, result.CheckoutURL)
	assert.NotEmpty(t, result.TxRef)

	// stock is decremented inside the order transaction
	assert.Equal(t, 8, f.productRepo.products[1].Stock)
	assert.Equal(t, 9, f.productRepo.products[2].Stock)

	// the cart empties once the order is placed
	cart, err := f.cartRepo.LoadCart(ctx, customer.ID)
	assert.NoError(t, err)
	assert.Empty(t, cart.Items)

	assert.Equal(t, 1, f.gateway.initCalls)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCheckout_InsufficientStockRollsBack(t *testing.T) {
	f := newCheckoutFixture(t,
		&models.Product{ID: 1, Name: "Clay mug", Price: 50, Stock: 1, ArtisanID: 7},
	)
	ctx := context.Background()
	customer := f.seedCustomer(ctx)

	// cart line says 3 but only 1 is left on the shelf
	f.cartRepo.carts[customer.ID] = &models.Cart{UserID: customer.ID, Items: []models.CartItem{
		{ProductID: 1, Name: "Clay mug", UnitPrice: 50, Quantity: 3, ArtisanID: 7},
	}}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.Checkout(ctx, customer.ID)
	assert.Error(t, err)
	assert.Empty(t, f.orderRepo.orders)
	assert.Equal(t, 1, f.productRepo.products[1].Stock)
	assert.Zero(t, f.gateway.initCalls)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCheckout_PaymentFailureKeepsOrderPending(t *testing.T) {
	f := newCheckoutFixture(t,
		&models.Product{ID: 1, Name: "Clay mug", Price: 50, Stock: 10, ArtisanID: 7},
	)
	ctx := context.Background()
	customer := f.seedCustomer(ctx)
	f.gateway.initErr = errors.New("provider unreachable")

	f.cartRepo.carts[customer.ID] = &models.Cart{UserID: customer.ID, Items: []models.CartItem{
		{ProductID: 1, Name: "Clay mug", UnitPrice: 50, Quantity: 2, ArtisanID: 7},
	}}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.svc.Checkout(ctx, customer.ID)
	assert.NoError(t, err, "a payment failure after the commit is not a checkout error")

	assert.NotNil(t, result.Order)
	assert.NotEmpty(t, result.PaymentError)
	assert.Empty(t, result.CheckoutURL)

	// the order survives with its payment leg still pending
	stored, err := f.orderRepo.GetOrderByID(ctx, result.Order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.PaymentStatus)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
