package user

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

	"github.com/freshloaf/storefront-backend/internal/domain/order"
	"github.com/freshloaf/storefront-backend/internal/pkg/apperr"
	"github.com/freshloaf/storefront-backend/internal/pkg/stream"
)

func newAdminFixture(t *testing.T) (*AdminService, *order.Service, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}, &order.Order{}, &order.Item{}))

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	log := logrus.New()
	log.SetOutput(io.Discard)
	broker := stream.NewBroker(redisClient, log)

	orderService := order.NewService(db, broker)
	return NewAdminService(db, redisClient, orderService, broker), orderService, db, mr
}

func seedUser(t *testing.T, db *gorm.DB, email string, isAdmin bool) *User {
	t.Helper()
	u := &User{
		Email:       email,
		Password:    "irrelevant-hash",
		DisplayName: "Someone",
		IsAdmin:     isAdmin,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedOrder(t *testing.T, orderService *order.Service, userID uint) *order.Order {
	t.Helper()
	ten := decimal.RequireFromString("10.00")
	created, err := orderService.Create(context.Background(), &order.CreateRequest{
		UserID: userID,
		CustomerDetails: order.CustomerDetails{
			Name: "Someone", Email: "x@example.com", Phone: "1", Address: "2",
		},
		Items:         []order.Item{{ItemID: 13, Name: "Mousse Cake", Price: ten, Quantity: 1, LineTotal: ten}},
		Subtotal:      ten,
		Tax:           decimal.RequireFromString("0.50"),
		DeliveryFee:   decimal.RequireFromString("2.50"),
		Total:         decimal.RequireFromString("13.00"),
		PaymentMethod: "Cash on Delivery",
	})
	require.NoError(t, err)
	return created
}

func TestListUsersStripsPasswords(t *testing.T) {
	s, _, db, _ := newAdminFixture(t)

	seedUser(t, db, "a@example.com", false)
	seedUser(t, db, "b@example.com", true)

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.Password)
	}
}

func TestDeleteUserCascadesToOrders(t *testing.T) {
	s, orderService, db, mr := newAdminFixture(t)
	ctx := context.Background()

	victim := seedUser(t, db, "victim@example.com", false)
	other := seedUser(t, db, "other@example.com", false)
	seedOrder(t, orderService, victim.ID)
	seedOrder(t, orderService, other.ID)

	// Stale per-user state that must not survive the account.
	mr.Set("cart:user:1", "{}")

	require.NoError(t, s.DeleteUser(ctx, victim.ID))

	var count int64
	db.Model(&User{}).Count(&count)
	assert.Equal(t, int64(1), count)

	gone, err := orderService.ListByUser(ctx, victim.ID)
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := orderService.ListByUser(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	assert.False(t, mr.Exists("cart:user:1"))
}

func TestDeleteUserRefusesAdmins(t *testing.T) {
	s, _, db, _ := newAdminFixture(t)

	admin := seedUser(t, db, "admin@example.com", true)

	err := s.DeleteUser(context.Background(), admin.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	var count int64
	db.Model(&User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteUserNotFound(t *testing.T) {
	s, _, _, _ := newAdminFixture(t)

	err := s.DeleteUser(context.Background(), 999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPromoteToAdmin(t *testing.T) {
	s, _, db, _ := newAdminFixture(t)
	ctx := context.Background()

	seedUser(t, db, "new@example.com", false)

	promoted, err := s.PromoteToAdmin(ctx, "new@example.com")
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)

	// Promoting twice is a conflict.
	_, err = s.PromoteToAdmin(ctx, "new@example.com")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// Unknown accounts cannot be promoted.
	_, err = s.PromoteToAdmin(ctx, "missing@example.com")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
