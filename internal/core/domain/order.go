package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest value a numeric(10,2) money column holds.
var MaxAmount = decimal.RequireFromString("99999999.99")

// MaxOrderQuantity bounds the quantity of a single order.
const MaxOrderQuantity = 10000

// Order binds a client, a transporter and one or more products. Status is a
// free-text label; it is never driven by a state machine.
type Order struct {
	ID            uint            `json:"id"             gorm:"primaryKey"`
	ClientID      uint            `json:"client_id"      gorm:"not null;index"`
	Client        *Client         `json:"-"              gorm:"constraint:OnDelete:CASCADE"`
	TransporterID *uint           `json:"transporter_id" gorm:"index"`
	Transporter   *Transporter    `json:"-"              gorm:"constraint:OnDelete:SET NULL"`
	Products      []Product       `json:"products"       gorm:"many2many:order_products;constraint:OnDelete:CASCADE"`
	Quantity      int             `json:"quantity"       gorm:"not null;default:1"`
	TotalAmount   decimal.Decimal `json:"total_amount"   gorm:"type:numeric(10,2)"`
	Status        string          `json:"status"         gorm:"size:50"`
	DeliveryDate  *time.Time      `json:"delivery_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Delivered reports whether the order has a delivery timestamp.
func (o *Order) Delivered() bool { return o.DeliveryDate != nil }

// VisibleTo applies the role-scoped visibility rule for a single order.
func (o *Order) VisibleTo(id Identity) bool {
	switch id.Kind {
	case IdentityClient:
		return o.ClientID == id.ClientID
	case IdentityTransporter:
		return o.TransporterID != nil && *o.TransporterID == id.TransporterID
	default:
		return false
	}
}

// OrderTotal is the sum of product values multiplied by quantity.
func OrderTotal(products []Product, quantity int) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range products {
		sum = sum.Add(p.Value)
	}
	return sum.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
