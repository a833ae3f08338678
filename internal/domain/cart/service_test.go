package cart

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshloaf/storefront-backend/internal/config"
	"github.com/freshloaf/storefront-backend/internal/pkg/apperr"
)

func testCartService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{}
	cfg.Checkout.TaxRate = "0.05"
	cfg.Checkout.DeliveryFee = "2.50"

	s, err := NewService(redisClient, cfg)
	require.NoError(t, err)
	return s, mr
}

func TestNewServiceRejectsBadRates(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{}
	cfg.Checkout.TaxRate = "not-a-number"
	cfg.Checkout.DeliveryFee = "2.50"

	_, err := NewService(redisClient, cfg)
	assert.Error(t, err)
}

func TestGetReturnsEmptyCartForNewUser(t *testing.T) {
	s, _ := testCartService(t)

	response, err := s.Get(context.Background(), 1)
	require.NoError(t, err)

	assert.Empty(t, response.Items)
	assert.Equal(t, "0.00", response.Totals.Subtotal)
	assert.Equal(t, "0.00", response.Totals.DeliveryFee)
	assert.Equal(t, "0.00", response.Totals.Total)
}

func TestAddItemPersistsAcrossLoads(t *testing.T) {
	s, _ := testCartService(t)
	ctx := context.Background()

	_, err := s.AddItem(ctx, 1, 13)
	require.NoError(t, err)
	_, err = s.AddItem(ctx, 1, 13)
	require.NoError(t, err)

	response, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, response.Items, 1)
	assert.Equal(t, 2, response.Items[0].Quantity)
	assert.Equal(t, "20.00", response.Items[0].LineTotal)
}

func TestAddItemUnknownCatalogID(t *testing.T) {
	s, _ := testCartService(t)

	_, err := s.AddItem(context.Background(), 1, 999)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestTotalsInResponse(t *testing.T) {
	s, _ := testCartService(t)
	ctx := context.Background()

	response, err := s.AddItem(ctx, 1, 13) // Mousse Cake 10.00
	require.NoError(t, err)

	assert.Equal(t, "10.00", response.Totals.Subtotal)
	assert.Equal(t, "0.50", response.Totals.Tax)
	assert.Equal(t, "2.50", response.Totals.DeliveryFee)
	assert.Equal(t, "13.00", response.Totals.Total)
}

func TestDecreaseFloorsThroughService(t *testing.T) {
	s, _ := testCartService(t)
	ctx := context.Background()

	_, err := s.AddItem(ctx, 1, 1)
	require.NoError(t, err)

	response, err := s.DecreaseItem(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, response.Items, 1)
	assert.Equal(t, 1, response.Items[0].Quantity)
}

func TestRemoveItemThroughService(t *testing.T) {
	s, _ := testCartService(t)
	ctx := context.Background()

	_, err := s.AddItem(ctx, 1, 1)
	require.NoError(t, err)
	_, err = s.AddItem(ctx, 1, 2)
	require.NoError(t, err)

	response, err := s.RemoveItem(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, response.Items, 1)
	assert.Equal(t, 2, response.Items[0].ItemID)
}

func TestClearDeletesSnapshot(t *testing.T) {
	s, mr := testCartService(t)
	ctx := context.Background()

	_, err := s.AddItem(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, mr.Exists("cart:user:1"))

	require.NoError(t, s.Clear(ctx, 1))
	assert.False(t, mr.Exists("cart:user:1"))
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	s, _ := testCartService(t)
	ctx := context.Background()

	_, err := s.AddItem(ctx, 1, 1)
	require.NoError(t, err)

	other, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other.Items)
}

func TestSnapshotHasNoExpiry(t *testing.T) {
	s, mr := testCartService(t)

	_, err := s.AddItem(context.Background(), 1, 1)
	require.NoError(t, err)

	assert.Zero(t, mr.TTL("cart:user:1"))
}
