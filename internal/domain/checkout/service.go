// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/freshloaf/storefront-backend/internal/config"
	"github.com/freshloaf/storefront-backend/internal/domain/cart"
	"github.com/freshloaf/storefront-backend/internal/domain/order"
	"github.com/freshloaf/storefront-backend/internal/pkg/apperr"
)

// Service drives the checkout flow: it owns the persisted session,
// converts the cart into an order on confirmation, and clears the cart
// afterwards. Order creation happens-before cart clearing
// happens-before the confirmation response, by sequencing.
type Service struct {
	redisClient  *redis.Client
	config       *config.Config
	cartService  *cart.Service
	orderService *order.Service
}

// NewService creates a new checkout service
func NewService(redisClient *redis.Client, cfg *config.Config, cartService *cart.Service, orderService *order.Service) *Service {
	return &Service{
		redisClient:  redisClient,
		config:       cfg,
		cartService:  cartService,
		orderService: orderService,
	}
}

// Summary is the checkout state shown to the user
type Summary struct {
	State   State           `json:"state"`
	Details CustomerDetails `json:"details"`
	Cart    *cart.Response  `json:"cart"`
	OrderID uint            `json:"order_id,omitempty"`
}

// Confirmation is returned after a successful placement. It retains
// the pre-clear line items for the confirmation view even though the
// cart is already empty.
type Confirmation struct {
	OrderID       uint                `json:"order_id"`
	DisplayID     string              `json:"display_id"`
	Items         []cart.LineResponse `json:"items"`
	Totals        cart.Totals         `json:"totals"`
	PaymentMethod string              `json:"payment_method"`
}

// PlaceRequest carries the delivery details submitted at placement
type PlaceRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address" binding:"required"`
	Notes   string `json:"notes"`
}

// GetSummary returns the current checkout session and cart
func (s *Service) GetSummary(ctx context.Context, userID uint) (*Summary, error) {
	session, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	cartResponse, err := s.cartService.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Summary{
		State:   session.State,
		Details: session.Details,
		Cart:    cartResponse,
		OrderID: session.OrderID,
	}, nil
}

// BeginReview initiates checkout. Fails on an empty cart.
func (s *Service) BeginReview(ctx context.Context, userID uint, prefill CustomerDetails) (*Summary, error) {
	session, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	c, err := s.cartService.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := session.BeginReview(c.IsEmpty()); err != nil {
		return nil, err
	}

	// Pre-fill delivery details from the profile where still blank.
	if session.Details.Name == "" {
		session.Details.Name = prefill.Name
	}
	if session.Details.Email == "" {
		session.Details.Email = prefill.Email
	}
	if session.Details.Phone == "" {
		session.Details.Phone = prefill.Phone
	}

	if err := s.saveSession(ctx, userID, session); err != nil {
		return nil, err
	}
	return s.GetSummary(ctx, userID)
}

// Back returns from review to browsing without touching the cart
func (s *Service) Back(ctx context.Context, userID uint) (*Summary, error) {
	session, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := session.BackToBrowsing(); err != nil {
		return nil, err
	}
	if err := s.saveSession(ctx, userID, session); err != nil {
		return nil, err
	}
	return s.GetSummary(ctx, userID)
}

// Place submits the order: validates details, writes the order to the
// store, clears the cart, and returns a confirmation holding the
// pre-clear lines. On store failure the session drops back to
// reviewing and the error is reported; nothing is retried.
func (s *Service) Place(ctx context.Context, userID uint, req *PlaceRequest) (*Confirmation, error) {
	session, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	c, err := s.cartService.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, apperr.New(apperr.KindValidation, "cannot place an order with an empty cart")
	}

	details := CustomerDetails{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	}

	if err := session.Submit(details); err != nil {
		return nil, err
	}
	if err := s.saveSession(ctx, userID, session); err != nil {
		return nil, err
	}

	// Snapshot the lines and totals before the cart is cleared.
	rates := s.cartService.Rates()
	items := make([]order.Item, len(c.Lines))
	for i, line := range c.Lines {
		items[i] = order.Item{
			ItemID:    line.ItemID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal(),
		}
	}

	created, err := s.orderService.Create(ctx, &order.CreateRequest{
		UserID: userID,
		CustomerDetails: order.CustomerDetails{
			Name:    details.Name,
			Email:   details.Email,
			Phone:   details.Phone,
			Address: details.Address,
			Notes:   details.Notes,
		},
		Items:         items,
		Subtotal:      c.Subtotal(),
		Tax:           c.Tax(rates),
		DeliveryFee:   c.DeliveryFee(rates),
		Total:         c.Total(rates),
		PaymentMethod: s.config.Checkout.PaymentMethod,
	})
	if err != nil {
		// Store rejected the order: report and return to reviewing.
		if failErr := session.Fail(); failErr == nil {
			if saveErr := s.saveSession(ctx, userID, session); saveErr != nil {
				return nil, saveErr
			}
		}
		return nil, err
	}

	if err := session.Confirm(created.ID); err != nil {
		return nil, err
	}
	if err := s.saveSession(ctx, userID, session); err != nil {
		return nil, err
	}

	// The order exists; only now may the cart be emptied.
	if err := s.cartService.Clear(ctx, userID); err != nil {
		return nil, err
	}

	lines := make([]cart.LineResponse, len(items))
	for i, item := range items {
		lines[i] = cart.LineResponse{
			ItemID:    item.ItemID,
			Name:      item.Name,
			Price:     item.Price.StringFixed(2),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal.StringFixed(2),
		}
	}

	return &Confirmation{
		OrderID:   created.ID,
		DisplayID: created.DisplayID(),
		Items:     lines,
		Totals: cart.Totals{
			Subtotal:    created.Subtotal.StringFixed(2),
			Tax:         created.Tax.StringFixed(2),
			DeliveryFee: created.DeliveryFee.StringFixed(2),
			Total:       created.Total.StringFixed(2),
		},
		PaymentMethod: created.PaymentMethod,
	}, nil
}

// ContinueShopping exits the placed state back to browsing
func (s *Service) ContinueShopping(ctx context.Context, userID uint) (*Summary, error) {
	session, err := s.loadSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := session.ContinueShopping(); err != nil {
		return nil, err
	}
	if err := s.saveSession(ctx, userID, session); err != nil {
		return nil, err
	}
	if err := s.cartService.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return s.GetSummary(ctx, userID)
}

func (s *Service) loadSession(ctx context.Context, userID uint) (*Session, error) {
	data, err := s.redisClient.Get(ctx, s.sessionKey(userID)).Result()
	if err == redis.Nil {
		return NewSession(), nil
	} else if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to load checkout session", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to decode checkout session", err)
	}
	return &session, nil
}

func (s *Service) saveSession(ctx context.Context, userID uint, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}
	if err := s.redisClient.Set(ctx, s.sessionKey(userID), data, 0).Err(); err != nil {
		return apperr.Wrap(apperr.KindStore, "failed to save checkout session", err)
	}
	return nil
}

func (s *Service) sessionKey(userID uint) string {
	return fmt.Sprintf("checkout:user:%d", userID)
}
