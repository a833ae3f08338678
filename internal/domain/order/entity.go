// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the order status
type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ValidStatus reports whether s is a known order status. Any valid
// status is reachable from any other; only the admin view transitions
// them.
func ValidStatus(s Status) bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CustomerDetails holds the delivery contact captured at checkout,
// embedded in the order record
type CustomerDetails struct {
	Name    string `gorm:"size:255;not null" json:"name"`
	Email   string `gorm:"size:255;not null" json:"email"`
	Phone   string `gorm:"size:50;not null" json:"phone"`
	Address string `gorm:"size:500;not null" json:"address"`
	Notes   string `gorm:"type:text" json:"notes,omitempty"`
}

// Order represents a placed order. Created exactly once per successful
// checkout; immutable afterwards except Status.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	CustomerDetails CustomerDetails `gorm:"embedded;embeddedPrefix:customer_" json:"customer_details"`

	Subtotal    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Tax         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax"`
	DeliveryFee decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"delivery_fee"`
	Total       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`

	Status        Status    `gorm:"size:20;not null;default:'processing'" json:"status"`
	PaymentMethod string    `gorm:"size:50;not null" json:"payment_method"`
	PlacedAt      time.Time `gorm:"not null;index" json:"placed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []Item `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// Item represents one line of an order, denormalized from the cart at
// placement time so later catalog changes cannot alter history
type Item struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ItemID    int             `gorm:"not null" json:"item_id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"line_total"`
}

// TableName overrides
func (Order) TableName() string { return "orders" }
func (Item) TableName() string  { return "order_items" }

// DisplayID returns the short id shown in order lists
func (o *Order) DisplayID() string {
	return fmt.Sprintf("#%06d", o.ID)
}
