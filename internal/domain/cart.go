package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/storefront-backend/internal/platform/money"
)

// Product is one entry of the upstream product feed.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price"`
	Picture     string `json:"picture,omitempty"`
}

// LineItem is one product entry in a cart. Quantity is always >= 1; an item
// whose quantity would drop to zero is removed from the cart, never retained.
type LineItem struct {
	ProductID      int64  `json:"productId"`
	Title          string `json:"title"`
	UnitPriceCents int64  `json:"unitPrice"`
	Quantity       int    `json:"quantity"`
	ImageRef       string `json:"imageRef,omitempty"`
}

// CartSnapshot is a read-only view of a cart at a point in time. Subtotal and
// ItemCount are derived from Items on construction; nothing maintains them
// incrementally, so they cannot drift from the item list.
type CartSnapshot struct {
	Items         []LineItem `json:"items"`
	SubtotalCents int64      `json:"subtotalCents"`
	Subtotal      string     `json:"subtotal"`
	ItemCount     int        `json:"itemCount"`
}

// NewCartSnapshot copies items and recomputes both totals.
func NewCartSnapshot(items []LineItem) CartSnapshot {
	copied := make([]LineItem, len(items))
	copy(copied, items)
	var subtotal int64
	var count int
	for _, it := range copied {
		subtotal += money.LineSubtotalCents(it.UnitPriceCents, it.Quantity)
		count += it.Quantity
	}
	return CartSnapshot{
		Items:         copied,
		SubtotalCents: subtotal,
		Subtotal:      money.FormatCents(subtotal),
		ItemCount:     count,
	}
}

// Empty reports whether the cart is in its Empty macro-state.
func (s CartSnapshot) Empty() bool { return len(s.Items) == 0 }

// OrderSummary is the checkout-facing breakdown of a snapshot: subtotal plus
// flat shipping and estimated tax. Like the snapshot's totals it is derived
// on demand, never stored.
type OrderSummary struct {
	SubtotalCents int64  `json:"subtotalCents"`
	ShippingCents int64  `json:"shippingCents"`
	TaxCents      int64  `json:"taxCents"`
	TotalCents    int64  `json:"totalCents"`
	Subtotal      string `json:"subtotal"`
	Shipping      string `json:"shipping"`
	Tax           string `json:"tax"`
	Total         string `json:"total"`
	ItemCount     int    `json:"itemCount"`
}

func NewOrderSummary(s CartSnapshot) OrderSummary {
	shipping := money.ShippingCents(s.SubtotalCents)
	tax := money.TaxCents(s.SubtotalCents)
	total := s.SubtotalCents + shipping + tax
	return OrderSummary{
		SubtotalCents: s.SubtotalCents,
		ShippingCents: shipping,
		TaxCents:      tax,
		TotalCents:    total,
		Subtotal:      money.FormatCents(s.SubtotalCents),
		Shipping:      money.FormatCents(shipping),
		Tax:           money.FormatCents(tax),
		Total:         money.FormatCents(total),
		ItemCount:     s.ItemCount,
	}
}

// CartRecord is the durable snapshot row: one named record per session
// holding the JSON-serialized line item array.
type CartRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"session_id"`
	Items     datatypes.JSON `gorm:"column:items;not null" json:"items"`
	UpdatedAt time.Time      `gorm:"not null;index" json:"updated_at"`
}

func (CartRecord) TableName() string { return "cart_record" }
