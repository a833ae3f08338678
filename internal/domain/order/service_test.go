package order

import (
	"context"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/freshloaf/storefront-backend/internal/pkg/apperr"
	"github.com/freshloaf/storefront-backend/internal/pkg/stream"
)

func testService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Order{}, &Item{}))

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewService(db, stream.NewBroker(redisClient, log))
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createRequest(userID uint) *CreateRequest {
	return &CreateRequest{
		UserID: userID,
		CustomerDetails: CustomerDetails{
			Name:    "Jamie Cruz",
			Email:   "jamie@example.com",
			Phone:   "555-0101",
			Address: "12 Rye Lane",
		},
		Items: []Item{
			{ItemID: 13, Name: "Mousse Cake", Price: money("10.00"), Quantity: 1, LineTotal: money("10.00")},
		},
		Subtotal:      money("10.00"),
		Tax:           money("0.50"),
		DeliveryFee:   money("2.50"),
		Total:         money("13.00"),
		PaymentMethod: "Cash on Delivery",
	}
}

func TestCreateStartsProcessing(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, createRequest(1))
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, StatusProcessing, created.Status)
	assert.False(t, created.PlacedAt.IsZero())
	assert.Equal(t, "13.00", created.Total.StringFixed(2))
}

func TestCreateRejectsEmptyOrder(t *testing.T) {
	s := testService(t)

	req := createRequest(1)
	req.Items = nil

	_, err := s.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestListByUserNewestFirstAndScoped(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	first, err := s.Create(ctx, createRequest(1))
	require.NoError(t, err)
	second, err := s.Create(ctx, createRequest(1))
	require.NoError(t, err)
	_, err = s.Create(ctx, createRequest(2))
	require.NoError(t, err)

	orders, err := s.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// Same placement timestamp resolution can tie in sqlite; both
	// orders must be present and none from other users.
	ids := []uint{orders[0].ID, orders[1].ID}
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, ids)

	require.Len(t, orders[0].Items, 1, "items are preloaded")
}

func TestGetForUserDeniesOtherUsers(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, createRequest(1))
	require.NoError(t, err)

	_, err = s.GetForUser(ctx, 2, created.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	found, err := s.GetForUser(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestUpdateStatus(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, createRequest(1))
	require.NoError(t, err)

	updated, err := s.UpdateStatus(ctx, created.ID, StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, updated.Status)

	// Only the status may change.
	assert.Equal(t, created.Total.StringFixed(2), updated.Total.StringFixed(2))
	assert.Equal(t, created.CustomerDetails.Name, updated.CustomerDetails.Name)

	// Any status is reachable from any other.
	back, err := s.UpdateStatus(ctx, created.ID, StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, back.Status)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, createRequest(1))
	require.NoError(t, err)

	_, err = s.UpdateStatus(ctx, created.ID, Status("lost"))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDelete(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, createRequest(1))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))

	err = s.Delete(ctx, created.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteByUserRemovesAllTheirOrders(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, createRequest(1))
	require.NoError(t, err)
	_, err = s.Create(ctx, createRequest(1))
	require.NoError(t, err)
	kept, err := s.Create(ctx, createRequest(2))
	require.NoError(t, err)

	require.NoError(t, s.DeleteByUser(ctx, 1))

	gone, err := s.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, gone)

	remaining, err := s.ListByUser(ctx, 2)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)
}

func TestDisplayID(t *testing.T) {
	o := &Order{ID: 42}
	assert.Equal(t, "#000042", o.DisplayID())
}
