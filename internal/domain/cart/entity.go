// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/freshloaf/storefront-backend/internal/domain/catalog"
)

// Line represents one catalog item in the cart with its quantity.
// Invariant: at most one Line per item id within a cart.
type Line struct {
	ItemID   int             `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// LineTotal returns price × quantity for this line
func (l Line) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the ordered set of lines for one browsing session. All
// mutation goes through the methods below; totals are derived fresh on
// every read so they can never drift from line state.
type Cart struct {
	UserID    uint      `json:"user_id"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Rates holds the pricing rules applied on top of the subtotal
type Rates struct {
	TaxRate     decimal.Decimal
	DeliveryFee decimal.Decimal
}

// Add puts an item in the cart: a new line with quantity 1, or +1 on
// the existing line for the same item id
func (c *Cart) Add(item *catalog.Item) {
	for i := range c.Lines {
		if c.Lines[i].ItemID == item.ID {
			c.Lines[i].Quantity++
			return
		}
	}
	c.Lines = append(c.Lines, Line{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: 1,
	})
}

// Increase increments the matching line's quantity by 1. No-op if the
// item is not in the cart.
func (c *Cart) Increase(itemID int) {
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			c.Lines[i].Quantity++
			return
		}
	}
}

// Decrease decrements the matching line's quantity by 1, floored at 1.
// A line is never removed here; Remove is the only operation that
// deletes a line. No-op if the item is not in the cart.
func (c *Cart) Decrease(itemID int) {
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			if c.Lines[i].Quantity > 1 {
				c.Lines[i].Quantity--
			}
			return
		}
	}
}

// Remove deletes the matching line entirely, regardless of quantity
func (c *Cart) Remove(itemID int) {
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Lines = nil
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Subtotal sums price × quantity over all lines, recomputed on every
// call rather than cached
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range c.Lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	return subtotal
}

// Tax returns subtotal × tax rate
func (c *Cart) Tax(rates Rates) decimal.Decimal {
	return c.Subtotal().Mul(rates.TaxRate)
}

// DeliveryFee returns the flat fee for non-empty carts, zero otherwise
func (c *Cart) DeliveryFee(rates Rates) decimal.Decimal {
	if c.Subtotal().IsPositive() {
		return rates.DeliveryFee
	}
	return decimal.Zero
}

// Total returns subtotal + tax + delivery fee. No rounding happens
// here; amounts are rounded to 2 decimal places at presentation only.
func (c *Cart) Total(rates Rates) decimal.Decimal {
	return c.Subtotal().Add(c.Tax(rates)).Add(c.DeliveryFee(rates))
}
