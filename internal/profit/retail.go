package profit

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/homecooks/profitboard/internal/domain"
)

// Retail wholesale cost assumptions. These are commercially agreed rates,
// not tunables, so they live in code alongside the model that uses them.
var (
	retailOrderProcessing = decimal.RequireFromString("1.09")
	retailOrderTracking   = decimal.RequireFromString("0.27")
	retailFreightPerCase  = decimal.RequireFromString("0.66")
	retailCasePicking     = decimal.RequireFromString("0.14")
	retailCaseLabelling   = decimal.Zero
	retailSKUCaseCost     = decimal.RequireFromString("0.10")
	retailSleeveX6        = decimal.RequireFromString("0.67")
	retailCaseProduction  = decimal.RequireFromString("15.48")
	retailFreightPerUnit  = decimal.RequireFromString("0.14")
	retailCommissionPct   = decimal.RequireFromString("0.10")
	retailOverflowPerCase = decimal.RequireFromString("2.15")
)

// deliveryCosts maps case count to the carrier's banded delivery charge for
// 1 to 60 cases. The bands are not linear (the 51-case rate drops below the
// 50-case one), so the table is carried verbatim rather than modelled.
var deliveryCosts = map[int]decimal.Decimal{
	1: d("24.00"), 2: d("24.00"), 3: d("24.00"), 4: d("24.00"), 5: d("24.00"), 6: d("24.00"),
	7: d("26.95"), 8: d("30.80"), 9: d("30.80"), 10: d("31.50"),
	11: d("34.65"), 12: d("37.80"), 13: d("40.95"), 14: d("44.10"), 15: d("47.25"),
	16: d("48.00"), 17: d("48.45"), 18: d("51.30"), 19: d("54.15"), 20: d("57.00"),
	21: d("57.75"), 22: d("60.50"), 23: d("63.25"), 24: d("66.00"), 25: d("68.75"),
	26: d("68.75"), 27: d("68.75"), 28: d("70.00"), 29: d("72.50"), 30: d("75.00"),
	31: d("77.50"), 32: d("80.00"), 33: d("82.50"), 34: d("85.00"), 35: d("87.50"),
	36: d("87.50"), 37: d("87.50"), 38: d("89.30"), 39: d("91.65"), 40: d("94.00"),
	41: d("96.35"), 42: d("98.70"), 43: d("101.05"), 44: d("103.40"), 45: d("105.75"),
	46: d("108.10"), 47: d("110.45"), 48: d("112.80"), 49: d("115.15"), 50: d("117.50"),
	51: d("109.65"), 52: d("111.80"), 53: d("113.95"), 54: d("116.10"), 55: d("118.25"),
	56: d("120.40"), 57: d("122.55"), 58: d("124.70"), 59: d("126.85"), 60: d("129.00"),
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// DeliveryCost returns the banded delivery charge for a case count. Above
// sixty cases the sixty-case rate is extrapolated per extra case.
func DeliveryCost(cases int) decimal.Decimal {
	if cases <= 0 {
		return decimal.Zero
	}
	if c, ok := deliveryCosts[cases]; ok {
		return c
	}
	extra := decimal.NewFromInt(int64(cases - 60))
	return deliveryCosts[60].Add(retailOverflowPerCase.Mul(extra))
}

// ComputeRetail applies the wholesale cost model to one retail order.
// Revenue is the order total charge, cases and units both come from the
// dispatched item count.
func ComputeRetail(revenue decimal.Decimal, cases, units int) domain.RetailProfitability {
	casesD := decimal.NewFromInt(int64(cases))
	unitsD := decimal.NewFromInt(int64(units))

	perCase := retailFreightPerCase.
		Add(retailCasePicking).
		Add(retailCaseLabelling).
		Add(retailSKUCaseCost).
		Add(retailSleeveX6)

	res := domain.RetailProfitability{
		Revenue:      revenue,
		OrderCosts:   retailOrderProcessing.Add(retailOrderTracking),
		CaseCosts:    perCase.Mul(casesD),
		COGS:         retailCaseProduction.Mul(casesD),
		UnitCosts:    retailFreightPerUnit.Mul(unitsD),
		DeliveryCost: DeliveryCost(cases),
		Commission:   revenue.Mul(retailCommissionPct),
	}
	res.TotalCosts = res.OrderCosts.
		Add(res.CaseCosts).
		Add(res.COGS).
		Add(res.UnitCosts).
		Add(res.DeliveryCost).
		Add(res.Commission)
	res.Profit = revenue.Sub(res.TotalCosts)
	res.Margin = marginOf(res.Profit, revenue)
	return res
}

// ExcludedFromRetailProfit reports whether a store's orders are carried in
// listings but left out of profitability totals. Go Puff and On the Rocks
// trade under separate commercial terms the standard model does not cover.
func ExcludedFromRetailProfit(store string) bool {
	s := strings.ToLower(store)
	return strings.Contains(s, "go puff") ||
		strings.Contains(s, "gopuff") ||
		strings.Contains(s, "on the rocks")
}
