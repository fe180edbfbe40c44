package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Channel identifies which sales channel an order belongs to after
// classification.
type Channel string

const (
	ChannelD2C          Channel = "d2c"
	ChannelRetail       Channel = "retail"
	ChannelGoPuff       Channel = "gopuff"
	ChannelUnclassified Channel = "unclassified"
)

// Source tags which backend produced a raw order record.
type Source string

const (
	SourceStorefront Source = "storefront"
	SourceWarehouse  Source = "warehouse"
)

// LineItem is a single order line after normalization.
type LineItem struct {
	VariantID int64           `json:"variant_id"`
	SKU       string          `json:"sku,omitempty"`
	Title     string          `json:"title,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Order is the canonical order record every downstream component consumes.
// DispatchedAt is the warehouse processed date and is the sole temporal key;
// the storefront creation date is kept for display only.
type Order struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Source         Source          `json:"source"`
	Channel        Channel         `json:"channel"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
	DispatchedAt   time.Time       `json:"dispatched_at"`
	CustomerName   string          `json:"customer_name"`
	ShippingMethod string          `json:"shipping_method,omitempty"`
	Currency       string          `json:"currency,omitempty"`
	LineItems      []LineItem      `json:"line_items"`
	Discount       decimal.Decimal `json:"discount"`
	ShippingCharge decimal.Decimal `json:"shipping_charge"`
	DistinctSKUs   int             `json:"distinct_skus"`
	TotalUnits     int             `json:"total_units"`
}

// DispatchWeekday is the weekday of the authoritative dispatch date.
func (o Order) DispatchWeekday() time.Weekday {
	return o.DispatchedAt.Weekday()
}

// VariantCost is a resolved unit cost for a product variant. Found is false
// when the variant exists but carries no cost, or cannot be looked up at all;
// callers must treat that as "unknown cost", never as zero.
type VariantCost struct {
	VariantID int64           `json:"variant_id"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Found     bool            `json:"found"`
}

// CostSnapshot is the set of variant costs a whole refresh cycle computes
// against. All orders in one cycle observe the same snapshot.
type CostSnapshot map[int64]VariantCost

// Lookup returns the cost entry for a variant, with Found=false for variants
// the snapshot never resolved.
func (s CostSnapshot) Lookup(variantID int64) VariantCost {
	if vc, ok := s[variantID]; ok {
		return vc
	}
	return VariantCost{VariantID: variantID}
}

// SalesFeedRow is one row of the spreadsheet-synced GoPuff sales feed.
type SalesFeedRow struct {
	Date     time.Time `json:"date"`
	Product  string    `json:"product"`
	Quantity int       `json:"quantity"`
}
