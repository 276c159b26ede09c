package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/northmart/backend-go/repository/memory"
	"github.com/northmart/backend-go/utils"
)

func newCartFixture(t *testing.T) (*CartService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewCartService(store.Carts(), store.Products()), store
}

func TestGetCartCreatesOnFirstUse(t *testing.T) {
	svc, store := newCartFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	cart, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, cart.UserID)
	assert.Empty(t, cart.Items)

	// Second call returns the same cart, not a new one.
	again, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)

	saved, err := store.Carts().GetByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, saved.ID)
}

func TestAddToCart(t *testing.T) {
	svc, store := newCartFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	product := seedProduct(t, store, "Widget", 25, 10)

	cart, err := svc.AddToCart(ctx, userID, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 25.0, cart.Items[0].Price)
	assert.Equal(t, 2, cart.TotalItems)
	assert.Equal(t, 50.0, cart.TotalPrice)

	// Same product merges into the existing line.
	cart, err = svc.AddToCart(ctx, userID, product.ID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 125.0, cart.TotalPrice)
}

func TestAddToCartStockChecks(t *testing.T) {
	svc, store := newCartFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	product := seedProduct(t, store, "Widget", 25, 5)

	_, err := svc.AddToCart(ctx, userID, product.ID, 6)
	assert.Equal(t, 400, utils.StatusCode(err))

	// The merged quantity counts against stock too.
	_, err = svc.AddToCart(ctx, userID, product.ID, 4)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, userID, product.ID, 2)
	assert.Equal(t, 400, utils.StatusCode(err))

	// A failed add leaves the cart as it was.
	cart, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].Quantity)
}

func TestAddToCartRejectsBadInput(t *testing.T) {
	svc, store := newCartFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	_, err := svc.AddToCart(ctx, userID, primitive.NewObjectID(), 1)
	assert.Equal(t, 404, utils.StatusCode(err))

	product := seedProduct(t, store, "Widget", 25, 5)
	_, err = svc.AddToCart(ctx, userID, product.ID, 0)
	assert.Equal(t, 400, utils.StatusCode(err))

	inactive := seedProduct(t, store, "Retired", 25, 5)
	inactive.IsActive = false
	require.NoError(t, store.Products().Update(ctx, inactive))
	_, err = svc.AddToCart(ctx, userID, inactive.ID, 1)
	assert.Equal(t, 400, utils.StatusCode(err))
}

func TestUpdateCartItem(t *testing.T) {
	svc, store := newCartFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	product := seedProduct(t, store, "Widget", 25, 5)
	cart, err := svc.AddToCart(ctx, userID, product.ID, 1)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = svc.UpdateCartItem(ctx, userID, itemID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 75.0, cart.TotalPrice)

	_, err = svc.UpdateCartItem(ctx, userID, itemID, 6)
	assert.Equal(t, 400, utils.StatusCode(err))

	_, err = svc.UpdateCartItem(ctx, userID, primitive.NewObjectID(), 1)
	assert.Equal(t, 404, utils.StatusCode(err))

	_, err = svc.UpdateCartItem(ctx, primitive.NewObjectID(), itemID, 1)
	assert.Equal(t, 404, utils.StatusCode(err))
}

func TestRemoveFromCart(t *testing.T) {
	svc, store := newCartFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	productA := seedProduct(t, store, "Widget A", 25, 5)
	productB := seedProduct(t, store, "Widget B", 40, 5)
	_, err := svc.AddToCart(ctx, userID, productA.ID, 1)
	require.NoError(t, err)
	cart, err := svc.AddToCart(ctx, userID, productB.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	cart, err = svc.RemoveFromCart(ctx, userID, cart.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, productB.ID, cart.Items[0].ProductID)
	assert.Equal(t, 40.0, cart.TotalPrice)

	_, err = svc.RemoveFromCart(ctx, userID, primitive.NewObjectID())
	assert.Equal(t, 404, utils.StatusCode(err))
}

func TestClearCart(t *testing.T) {
	svc, store := newCartFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	product := seedProduct(t, store, "Widget", 25, 5)
	_, err := svc.AddToCart(ctx, userID, product.ID, 2)
	require.NoError(t, err)

	cart, err := svc.ClearCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalItems)
	assert.Zero(t, cart.TotalPrice)

	_, err = svc.ClearCart(ctx, primitive.NewObjectID())
	assert.Equal(t, 404, utils.StatusCode(err))
}

func TestSyncCartPrices(t *testing.T) {
	svc, store := newCartFixture(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	product := seedProduct(t, store, "Widget", 25, 5)
	_, err := svc.AddToCart(ctx, userID, product.ID, 2)
	require.NoError(t, err)

	product.Price = 30
	require.NoError(t, store.Products().Update(ctx, product))

	cart, err := svc.SyncCartPrices(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, cart.Items[0].Price)
	assert.Equal(t, 60.0, cart.TotalPrice)
}
