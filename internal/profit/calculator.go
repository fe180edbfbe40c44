package profit

import (
	"github.com/shopspring/decimal"

	"github.com/homecooks/profitboard/internal/costing"
	"github.com/homecooks/profitboard/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Calculator computes per-order contribution for direct-to-consumer orders.
// It is pure: every input (order, cost snapshot, tier table) is passed in,
// so identical inputs always produce identical results.
type Calculator struct {
	tiers costing.TierTable
}

func NewCalculator(tiers costing.TierTable) *Calculator {
	return &Calculator{tiers: tiers}
}

// Compute derives the profitability of one order against a fixed cost
// snapshot.
//
// Gross item value is the sum of quantity times unit price across line
// items. Net revenue subtracts the order-level discount. COGS sums quantity
// times unit cost for every line item with a known cost; unknown costs are
// flagged on the result rather than silently treated as zero-cost-profit.
// Contribution is net revenue minus COGS minus the packaging fee, and margin
// is contribution over net revenue, undefined when net revenue is not
// positive.
func (c *Calculator) Compute(order domain.Order, costs domain.CostSnapshot) (domain.ProfitabilityResult, error) {
	res := domain.ProfitabilityResult{
		OrderID:   order.ID,
		OrderName: order.Name,
	}

	for _, li := range order.LineItems {
		qty := decimal.NewFromInt(int64(li.Quantity))
		res.GrossItemValue = res.GrossItemValue.Add(li.UnitPrice.Mul(qty))

		vc := costs.Lookup(li.VariantID)
		if !vc.Found {
			res.MissingCosts = true
			res.MissingSKUs = append(res.MissingSKUs, li.SKU)
			continue
		}
		res.TotalCOGS = res.TotalCOGS.Add(vc.UnitCost.Mul(qty))
	}

	res.NetRevenue = res.GrossItemValue.Sub(order.Discount)

	tier, err := c.tiers.Classify(order.DistinctSKUs)
	if err != nil {
		return domain.ProfitabilityResult{}, err
	}
	res.PackagingFee = tier.Fee
	res.BoxType = tier.Label
	res.BoxCount = tier.Boxes

	res.Contribution = res.NetRevenue.Sub(res.TotalCOGS).Sub(res.PackagingFee)
	res.Margin = marginOf(res.Contribution, res.NetRevenue)
	return res, nil
}

// marginOf returns contribution over revenue as a percentage, or an
// undefined margin when revenue is not positive. A fully discounted order
// reports "no margin", never a fabricated 0%.
func marginOf(contribution, revenue decimal.Decimal) domain.Margin {
	if revenue.LessThanOrEqual(decimal.Zero) {
		return domain.UndefinedMargin()
	}
	return domain.NewMargin(contribution.Div(revenue).Mul(hundred))
}
