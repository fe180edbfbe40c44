package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodRollup reduces a bucket of orders to summary metrics. Margin is
// contribution over revenue for the bucket; entries with zero net revenue are
// included in the sums at their literal value but never make the margin
// undefined for the bucket unless the whole bucket's revenue is zero.
type PeriodRollup struct {
	Label           string          `json:"label"`
	Start           time.Time       `json:"start"`
	End             time.Time       `json:"end"`
	OrderCount      int             `json:"order_count"`
	TotalUnits      int             `json:"total_units"`
	RevenueSum      decimal.Decimal `json:"revenue_sum"`
	DiscountSum     decimal.Decimal `json:"discount_sum"`
	COGSSum         decimal.Decimal `json:"cogs_sum"`
	PackagingSum    decimal.Decimal `json:"packaging_sum"`
	ContributionSum decimal.Decimal `json:"contribution_sum"`
	Margin          Margin          `json:"margin"`
	AOV             decimal.Decimal `json:"aov"`
	Delta           *RollupDelta    `json:"delta,omitempty"`
}

// RollupDelta compares a rollup against a reference period (prior month or
// prior-year like-for-like). PctValid is false when the reference revenue or
// contribution is zero.
type RollupDelta struct {
	Against         string          `json:"against"`
	RevenueAbs      decimal.Decimal `json:"revenue_abs"`
	RevenuePct      decimal.Decimal `json:"revenue_pct"`
	RevenuePctValid bool            `json:"revenue_pct_valid"`
	ProfitAbs       decimal.Decimal `json:"profit_abs"`
	ProfitPct       decimal.Decimal `json:"profit_pct"`
	ProfitPctValid  bool            `json:"profit_pct_valid"`
	OrderCountDiff  int             `json:"order_count_diff"`
}

// WeekRollup is a PeriodRollup for one ISO week, labelled "2024-W05" with the
// Monday/Sunday calendar dates made explicit.
type WeekRollup struct {
	PeriodRollup
	ISOYear int `json:"iso_year"`
	ISOWeek int `json:"iso_week"`
}

// WindowKind names the calendar comparison windows the aggregator produces.
type WindowKind string

const (
	WindowMTD       WindowKind = "mtd"
	WindowYTD       WindowKind = "ytd"
	WindowLastMonth WindowKind = "vs_last_month"
	WindowLFL       WindowKind = "lfl"
	WindowYTDLFL    WindowKind = "ytd_lfl"
)

// WarningKind categorises data-quality findings surfaced with computed views.
type WarningKind string

const (
	WarnDuplicateStore  WarningKind = "duplicate_store"
	WarnZeroSKUCount    WarningKind = "zero_sku_count"
	WarnExcessDiscount  WarningKind = "discount_exceeds_gross"
	WarnUnclassified    WarningKind = "unclassified_order"
	WarnMalformedOrder  WarningKind = "malformed_order"
	WarnPartialData     WarningKind = "partial_data"
	WarnMissingCost     WarningKind = "missing_cost"
	WarnExcludedAccount WarningKind = "excluded_account"
)

// Warning is a non-fatal data-quality finding. Computation proceeds with
// best-effort values; the warning travels with the view so the dashboard can
// surface it.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	OrderID int64       `json:"order_id,omitempty"`
	Detail  string      `json:"detail"`
}
