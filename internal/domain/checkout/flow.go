// internal/domain/checkout/flow.go
package checkout

import (
	"fmt"
	"strings"

	"github.com/freshloaf/storefront-backend/internal/pkg/apperr"
)

// State is a stage of the checkout flow
type State string

const (
	// StateBrowsing is the resting state: the user is shopping.
	StateBrowsing State = "browsing"
	// StateReviewing means checkout has been initiated and the user is
	// confirming items and delivery details.
	StateReviewing State = "reviewing"
	// StatePlacing means the order has been submitted and the flow is
	// waiting for the store to acknowledge creation.
	StatePlacing State = "placing"
	// StatePlaced is terminal: the order exists in the store. The only
	// exit is an explicit continue-shopping action.
	StatePlaced State = "placed"
)

// CustomerDetails is the delivery contact collected during review. All
// fields except Notes are required before an order may be placed.
type CustomerDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// Validate reports the blank required fields, if any
func (d *CustomerDetails) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(d.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(d.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(d.Address) == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return apperr.Validation(
			fmt.Sprintf("required fields missing: %s", strings.Join(missing, ", ")),
			missing...,
		)
	}
	return nil
}

// Session is one checkout flow instance, scoped to a browsing session
// and persisted across requests. Transitions are linear:
//
//	Browsing → Reviewing → Placing → Placed
//
// with a back-transition Reviewing → Browsing, and a failure
// transition Placing → Reviewing (the flow never retries on its own).
type Session struct {
	State   State           `json:"state"`
	Details CustomerDetails `json:"details"`
	OrderID uint            `json:"order_id,omitempty"`
}

// NewSession returns a session at rest
func NewSession() *Session {
	return &Session{State: StateBrowsing}
}

// BeginReview moves Browsing → Reviewing. Requires a non-empty cart.
func (s *Session) BeginReview(cartEmpty bool) error {
	if s.State == StatePlaced {
		return apperr.New(apperr.KindConflict, "order already placed; continue shopping to start over")
	}
	if cartEmpty {
		return apperr.New(apperr.KindValidation, "cannot check out an empty cart")
	}
	s.State = StateReviewing
	return nil
}

// BackToBrowsing moves Reviewing → Browsing, keeping the cart intact
func (s *Session) BackToBrowsing() error {
	if s.State != StateReviewing {
		return apperr.New(apperr.KindConflict, fmt.Sprintf("cannot go back from %s", s.State))
	}
	s.State = StateBrowsing
	return nil
}

// Submit moves Reviewing → Placing once the delivery details validate
func (s *Session) Submit(details CustomerDetails) error {
	if s.State != StateReviewing {
		return apperr.New(apperr.KindConflict, fmt.Sprintf("cannot place an order from %s", s.State))
	}
	if err := details.Validate(); err != nil {
		return err
	}
	s.Details = details
	s.State = StatePlacing
	return nil
}

// Confirm moves Placing → Placed with the order id the store assigned
func (s *Session) Confirm(orderID uint) error {
	if s.State != StatePlacing {
		return apperr.New(apperr.KindConflict, fmt.Sprintf("cannot confirm an order from %s", s.State))
	}
	s.OrderID = orderID
	s.State = StatePlaced
	return nil
}

// Fail returns Placing → Reviewing after a store error. The user may
// resubmit; the flow does not retry automatically.
func (s *Session) Fail() error {
	if s.State != StatePlacing {
		return apperr.New(apperr.KindConflict, fmt.Sprintf("cannot fail an order from %s", s.State))
	}
	s.State = StateReviewing
	return nil
}

// ContinueShopping is the only exit from Placed: back to Browsing with
// an empty cart
func (s *Session) ContinueShopping() error {
	if s.State != StatePlaced {
		return apperr.New(apperr.KindConflict, fmt.Sprintf("cannot continue shopping from %s", s.State))
	}
	s.State = StateBrowsing
	s.OrderID = 0
	s.Details = CustomerDetails{}
	return nil
}
