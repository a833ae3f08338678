// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/freshloaf/storefront-backend/internal/config"
	"github.com/freshloaf/storefront-backend/internal/domain/catalog"
	"github.com/freshloaf/storefront-backend/internal/pkg/apperr"
)

// Service handles cart business logic. The cart is persisted as a
// keyed JSON snapshot with no expiry; one writer per session, last
// write wins.
type Service struct {
	redisClient *redis.Client
	rates       Rates
}

// NewService creates a new cart service
func NewService(redisClient *redis.Client, cfg *config.Config) (*Service, error) {
	taxRate, err := decimal.NewFromString(cfg.Checkout.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKOUT_TAX_RATE %q: %w", cfg.Checkout.TaxRate, err)
	}
	deliveryFee, err := decimal.NewFromString(cfg.Checkout.DeliveryFee)
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKOUT_DELIVERY_FEE %q: %w", cfg.Checkout.DeliveryFee, err)
	}

	return &Service{
		redisClient: redisClient,
		rates:       Rates{TaxRate: taxRate, DeliveryFee: deliveryFee},
	}, nil
}

// Rates returns the configured tax rate and delivery fee
func (s *Service) Rates() Rates {
	return s.rates
}

// LineResponse is a cart line with its presentation-rounded total
type LineResponse struct {
	ItemID    int    `json:"item_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

// Totals is the derived pricing summary, rounded to 2 decimal places
// for presentation
type Totals struct {
	Subtotal    string `json:"subtotal"`
	Tax         string `json:"tax"`
	DeliveryFee string `json:"delivery_fee"`
	Total       string `json:"total"`
}

// Response represents the cart returned to the client
type Response struct {
	Items     []LineResponse `json:"items"`
	Totals    Totals         `json:"totals"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// AddItemRequest represents an add-to-cart request
type AddItemRequest struct {
	ItemID int `json:"item_id" binding:"required"`
}

// Get retrieves the current cart for a user
func (s *Service) Get(ctx context.Context, userID uint) (*Response, error) {
	c, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(c), nil
}

// AddItem adds a catalog item to the cart
func (s *Service) AddItem(ctx context.Context, userID uint, itemID int) (*Response, error) {
	item, err := catalog.ItemByID(itemID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNotFound, "item not found", err)
	}

	return s.mutate(ctx, userID, func(c *Cart) {
		c.Add(item)
	})
}

// IncreaseItem increments an item's quantity by 1
func (s *Service) IncreaseItem(ctx context.Context, userID uint, itemID int) (*Response, error) {
	return s.mutate(ctx, userID, func(c *Cart) {
		c.Increase(itemID)
	})
}

// DecreaseItem decrements an item's quantity by 1, floored at 1
func (s *Service) DecreaseItem(ctx context.Context, userID uint, itemID int) (*Response, error) {
	return s.mutate(ctx, userID, func(c *Cart) {
		c.Decrease(itemID)
	})
}

// RemoveItem deletes an item's line from the cart
func (s *Service) RemoveItem(ctx context.Context, userID uint, itemID int) (*Response, error) {
	return s.mutate(ctx, userID, func(c *Cart) {
		c.Remove(itemID)
	})
}

// Clear empties the cart
func (s *Service) Clear(ctx context.Context, userID uint) error {
	return s.redisClient.Del(ctx, s.cartKey(userID)).Err()
}

// Load reads the persisted cart snapshot, returning an empty cart when
// no snapshot exists
func (s *Service) Load(ctx context.Context, userID uint) (*Cart, error) {
	data, err := s.redisClient.Get(ctx, s.cartKey(userID)).Result()
	if err == redis.Nil {
		return &Cart{UserID: userID, UpdatedAt: time.Now().UTC()}, nil
	} else if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to load cart", err)
	}

	var c Cart
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to decode cart snapshot", err)
	}
	return &c, nil
}

// Save persists the cart snapshot. The snapshot has no expiry, matching
// the session-local cart that survives reloads.
func (s *Service) Save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.redisClient.Set(ctx, s.cartKey(c.UserID), data, 0).Err(); err != nil {
		return apperr.Wrap(apperr.KindStore, "failed to save cart", err)
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, userID uint, fn func(*Cart)) (*Response, error) {
	c, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	fn(c)
	if err := s.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.toResponse(c), nil
}

func (s *Service) toResponse(c *Cart) *Response {
	items := make([]LineResponse, len(c.Lines))
	for i, line := range c.Lines {
		items[i] = LineResponse{
			ItemID:    line.ItemID,
			Name:      line.Name,
			Price:     line.Price.StringFixed(2),
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal().StringFixed(2),
		}
	}

	return &Response{
		Items: items,
		Totals: Totals{
			Subtotal:    c.Subtotal().StringFixed(2),
			Tax:         c.Tax(s.rates).StringFixed(2),
			DeliveryFee: c.DeliveryFee(s.rates).StringFixed(2),
			Total:       c.Total(s.rates).StringFixed(2),
		},
		UpdatedAt: c.UpdatedAt,
	}
}

func (s *Service) cartKey(userID uint) string {
	return fmt.Sprintf("cart:user:%d", userID)
}
