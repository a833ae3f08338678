// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/freshloaf/storefront-backend/internal/pkg/apperr"
	"github.com/freshloaf/storefront-backend/internal/pkg/stream"
)

// Service handles order business logic
type Service struct {
	db     *gorm.DB
	broker *stream.Broker
}

// NewService creates a new order service
func NewService(db *gorm.DB, broker *stream.Broker) *Service {
	return &Service{
		db:     db,
		broker: broker,
	}
}

// CreateRequest carries everything needed to append a new order
type CreateRequest struct {
	UserID          uint
	CustomerDetails CustomerDetails
	Items           []Item
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	DeliveryFee     decimal.Decimal
	Total           decimal.Decimal
	PaymentMethod   string
}

// Create appends a new order to the store and returns it with its
// assigned id. Orders start in processing status.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, apperr.New(apperr.KindValidation, "order must contain at least one item")
	}

	order := Order{
		UserID:          req.UserID,
		CustomerDetails: req.CustomerDetails,
		Items:           req.Items,
		Subtotal:        req.Subtotal,
		Tax:             req.Tax,
		DeliveryFee:     req.DeliveryFee,
		Total:           req.Total,
		Status:          StatusProcessing,
		PaymentMethod:   req.PaymentMethod,
		PlacedAt:        time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to create order", err)
	}

	s.broker.Publish(ctx, stream.ChannelOrders, "created", &order)

	return &order, nil
}

// ListByUser returns the user's own orders, newest first
func (s *Service) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	var orders []Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("placed_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to list orders", err)
	}
	return orders, nil
}

// GetForUser returns one of the user's orders by id
func (s *Service) GetForUser(ctx context.Context, userID, orderID uint) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.New(apperr.KindNotFound, "order not found")
	} else if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to load order", err)
	}
	return &order, nil
}

// List returns all orders, newest first. Admin view only.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	var orders []Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Order("placed_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to list orders", err)
	}
	return orders, nil
}

// UpdateStatus transitions an order's status. Status is the only field
// an admin may change; every known status is reachable from every
// other.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, status Status) (*Order, error) {
	if !ValidStatus(status) {
		return nil, apperr.New(apperr.KindValidation, fmt.Sprintf("unknown order status %q", status))
	}

	var order Order
	err := s.db.WithContext(ctx).Preload("Items").First(&order, orderID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.New(apperr.KindNotFound, "order not found")
	} else if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to load order", err)
	}

	if err := s.db.WithContext(ctx).Model(&order).Update("status", status).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to update order status", err)
	}
	order.Status = status

	s.broker.Publish(ctx, stream.ChannelOrders, "updated", &order)

	return &order, nil
}

// Delete removes an order entirely. Admin view only.
func (s *Service) Delete(ctx context.Context, orderID uint) error {
	result := s.db.WithContext(ctx).Delete(&Order{}, orderID)
	if result.Error != nil {
		return apperr.Wrap(apperr.KindStore, "failed to delete order", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "order not found")
	}

	s.broker.Publish(ctx, stream.ChannelOrders, "deleted", map[string]uint{"id": orderID})

	return nil
}

// DeleteByUser removes every order belonging to a user. Used by the
// admin user-deletion cascade.
func (s *Service) DeleteByUser(ctx context.Context, userID uint) error {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&Order{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return apperr.Wrap(apperr.KindStore, "failed to find user orders", err)
	}
	if len(ids) == 0 {
		return nil
	}

	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&Order{}).Error; err != nil {
		return apperr.Wrap(apperr.KindStore, "failed to delete user orders", err)
	}

	for _, id := range ids {
		s.broker.Publish(ctx, stream.ChannelOrders, "deleted", map[string]uint{"id": id})
	}

	return nil
}
