package service_test

import (
	"context"
	"testing"

	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/service"
	"github.com/stretchr/testify/assert"
)

func newCartFixture(products ...*models.Product) (service.CartService, *fakeCartRepo) {
	cartRepo := newFakeCartRepo()
	productRepo := newFakeProductRepo(products...)
	return service.NewCartService(testLogger(), cartRepo, productRepo), cartRepo
}

func TestCartService_AddItem_ClampsToStock(t *testing.T) {
	svc, _ := newCartFixture(&models.Product{ID: 1, Name: "Clay mug", Price: 50, Stock: 3, ArtisanID: 7})
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, 42, 1, 10)
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity, "quantity must be clamped to the stock ceiling")
	assert.Equal(t, 3, cart.Items[0].StockCeiling)
}

func TestCartService_AddItem_MergesExistingLine(t *testing.T) {
	svc, _ := newCartFixture(&models.Product{ID: 1, Name: "Clay mug", Price: 50, Stock: 5, ArtisanID: 7})
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 42, 1, 2)
	assert.NoError(t, err)

	cart, err := svc.AddItem(ctx, 42, 1, 2)
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 1, "re-adding the same product must merge, not duplicate")
	assert.Equal(t, 4, cart.Items[0].Quantity)

	// a third add overshoots the stock and clamps
	cart, err = svc.AddItem(ctx, 42, 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestCartService_AddItem_RejectsOutOfStock(t *testing.T) {
	svc, _ := newCartFixture(&models.Product{ID: 1, Name: "Clay mug", Price: 50, Stock: 0, ArtisanID: 7})

	_, err := svc.AddItem(context.Background(), 42, 1, 1)
	assert.Error(t, err)
}

func TestCartService_AddItem_UnknownProduct(t *testing.T) {
	svc, _ := newCartFixture()

	_, err := svc.AddItem(context.Background(), 42, 99, 1)
	assert.Error(t, err)
}

func TestCartService_SetQuantity_ClampsBothEnds(t *testing.T) {
	svc, _ := newCartFixture(&models.Product{ID: 1, Name: "Clay mug", Price: 50, Stock: 4, ArtisanID: 7})
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 42, 1, 2)
	assert.NoError(t, err)

	cart, err := svc.SetQuantity(ctx, 42, 1, 100)
	assert.NoError(t, err)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	cart, err = svc.SetQuantity(ctx, 42, 1, 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity, "setting below one floors at one, it does not remove the line")
}

func TestCartService_SetQuantity_NotInCart(t *testing.T) {
	svc, _ := newCartFixture(&models.Product{ID: 1, Name: "Clay mug", Price: 50, Stock: 4, ArtisanID: 7})

	_, err := svc.SetQuantity(context.Background(), 42, 1, 2)
	assert.ErrorIs(t, err, service.ErrNotInCart)
}

func TestCartService_RemoveItem_StaysRemoved(t *testing.T) {
	svc, cartRepo := newCartFixture(
		&models.Product{ID: 1, Name: "Clay mug", Price: 50, Stock: 4, ArtisanID: 7},
		&models.Product{ID: 2, Name: "Woven basket", Price: 30, Stock: 9, ArtisanID: 7},
	)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 42, 1, 2)
	assert.NoError(t, err)
	_, err = svc.AddItem(ctx, 42, 2, 1)
	assert.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, 42, 1)
	assert.NoError(t, err)
	assert.Equal(t, -1, cart.Find(1))
	assert.Len(t, cart.Items, 1)

	// the removed line must not resurrect on the next load
	reloaded, err := cartRepo.LoadCart(ctx, 42)
	assert.NoError(t, err)
	assert.Equal(t, -1, reloaded.Find(1))

	_, err = svc.RemoveItem(ctx, 42, 1)
	assert.ErrorIs(t, err, service.ErrNotInCart)
}

func TestCartService_ClearCart(t *testing.T) {
	svc, _ := newCartFixture(&models.Product{ID: 1, Name: "Clay mug", Price: 50, Stock: 4, ArtisanID: 7})
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 42, 1, 2)
	assert.NoError(t, err)

	assert.NoError(t, svc.ClearCart(ctx, 42))

	cart, err := svc.GetCart(ctx, 42)
	assert.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCart_Total(t *testing.T) {
	cart := &models.Cart{Items: []models.CartItem{
		{ProductID: 1, UnitPrice: 50, Quantity: 2},
		{ProductID: 2, UnitPrice: 30, Quantity: 1},
	}}
	assert.Equal(t, 130.0, cart.Total())
}
