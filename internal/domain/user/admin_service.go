// internal/domain/user/admin_service.go
package user

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/freshloaf/storefront-backend/internal/domain/order"
	"github.com/freshloaf/storefront-backend/internal/pkg/apperr"
	"github.com/freshloaf/storefront-backend/internal/pkg/stream"
)

// AdminService handles admin operations over user accounts
type AdminService struct {
	db           *gorm.DB
	redisClient  *redis.Client
	orderService *order.Service
	broker       *stream.Broker
}

// NewAdminService creates a new admin user service
func NewAdminService(db *gorm.DB, redisClient *redis.Client, orderService *order.Service, broker *stream.Broker) *AdminService {
	return &AdminService{
		db:           db,
		redisClient:  redisClient,
		orderService: orderService,
		broker:       broker,
	}
}

// ListUsers returns all registered accounts, newest first
func (s *AdminService) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to list users", err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// DeleteUser removes an account and its orders. Admin accounts are
// not deletable through this path. Issued tokens are not revoked:
// they expire on their own, and the access gate's store lookup stops
// honoring them for admin routes immediately.
func (s *AdminService) DeleteUser(ctx context.Context, userID uint) error {
	var user User
	result := s.db.WithContext(ctx).First(&user, userID)
	if result.Error == gorm.ErrRecordNotFound {
		return apperr.New(apperr.KindNotFound, "user not found")
	} else if result.Error != nil {
		return apperr.Wrap(apperr.KindStore, "failed to load user", result.Error)
	}

	if user.IsAdmin {
		return apperr.New(apperr.KindAuthorization, "admin accounts cannot be deleted")
	}

	if err := s.orderService.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user orders: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&User{}, userID).Error; err != nil {
		return apperr.Wrap(apperr.KindStore, "failed to delete user", err)
	}

	// Drop the cached admin verdict and cart so nothing stale survives
	// the account.
	s.redisClient.Del(ctx,
		fmt.Sprintf("admin:auth:%d", userID),
		fmt.Sprintf("cart:user:%d", userID),
		fmt.Sprintf("checkout:user:%d", userID),
	)

	s.broker.Publish(ctx, stream.ChannelUsers, "deleted", map[string]interface{}{"user_id": userID})

	return nil
}

// PromoteToAdmin grants the admin flag. Guarded at the route layer by
// the setup key.
func (s *AdminService) PromoteToAdmin(ctx context.Context, email string) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	} else if result.Error != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to load user", result.Error)
	}

	if user.IsAdmin {
		return nil, apperr.New(apperr.KindConflict, "user is already an admin")
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("is_admin", true).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to promote user", err)
	}
	user.IsAdmin = true

	s.broker.Publish(ctx, stream.ChannelUsers, "promoted", map[string]interface{}{"user_id": user.ID, "email": user.Email})

	user.Password = ""
	return &user, nil
}
