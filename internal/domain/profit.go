package domain

import "github.com/shopspring/decimal"

// Margin is a contribution margin percentage that may be undefined. A zero
// net revenue makes the percentage meaningless; Valid=false distinguishes
// that from an actual 0% margin.
type Margin struct {
	Pct   decimal.Decimal `json:"pct"`
	Valid bool            `json:"valid"`
}

// UndefinedMargin is the flagged result for orders with zero net revenue.
func UndefinedMargin() Margin { return Margin{} }

// NewMargin builds a defined margin percentage.
func NewMargin(pct decimal.Decimal) Margin {
	return Margin{Pct: pct, Valid: true}
}

// ProfitabilityResult is the per-order financial breakdown.
//
// Contribution = NetRevenue - TotalCOGS - PackagingFee, exactly. When any
// line's cost is unresolved MissingCosts is set and TotalCOGS covers only the
// lines that had costs; the number is flagged partial rather than silently
// wrong.
type ProfitabilityResult struct {
	OrderID        int64           `json:"order_id"`
	OrderName      string          `json:"order_name"`
	GrossItemValue decimal.Decimal `json:"gross_item_value"`
	NetRevenue     decimal.Decimal `json:"net_revenue"`
	TotalCOGS      decimal.Decimal `json:"total_cogs"`
	PackagingFee   decimal.Decimal `json:"packaging_fee"`
	BoxType        string          `json:"box_type"`
	BoxCount       int             `json:"box_count"`
	Contribution   decimal.Decimal `json:"contribution"`
	Margin         Margin          `json:"contribution_margin"`
	MissingCosts   bool            `json:"missing_costs"`
	MissingSKUs    []string        `json:"missing_skus,omitempty"`
}

// OrderProfit pairs an order with its computed profitability for bucketing.
type OrderProfit struct {
	Order  Order               `json:"order"`
	Profit ProfitabilityResult `json:"profit"`
}

// RetailProfitability is the retail cost-model breakdown for one wholesale
// order (cases delivered to a store).
type RetailProfitability struct {
	Revenue      decimal.Decimal `json:"revenue"`
	COGS         decimal.Decimal `json:"cogs"`
	OrderCosts   decimal.Decimal `json:"order_costs"`
	CaseCosts    decimal.Decimal `json:"case_costs"`
	UnitCosts    decimal.Decimal `json:"unit_costs"`
	DeliveryCost decimal.Decimal `json:"delivery_cost"`
	Commission   decimal.Decimal `json:"commission"`
	TotalCosts   decimal.Decimal `json:"total_costs"`
	Profit       decimal.Decimal `json:"profit"`
	Margin       Margin          `json:"margin"`
}
