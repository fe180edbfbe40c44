package costing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/homecooks/profitboard/internal/domain"
)

// Tier is one packaging band: orders whose distinct SKU count falls in
// [Min, Max] pay Fee. Max of zero means unbounded.
type Tier struct {
	Min   int
	Max   int
	Fee   decimal.Decimal
	Label string
	Boxes int
}

// TierTable is the ordered, validated packaging tier set. It is static
// configuration: built once at startup, immutable afterwards.
type TierTable struct {
	tiers []Tier
}

// DefaultTiers is the standing packaging cost table. The small box runs
// 12.66 all-in (box, wool, coolant, shipping, pick & pack), the large 13.81,
// and past sixteen items the order ships as two large boxes.
func DefaultTiers() TierTable {
	t, err := NewTierTable([]Tier{
		{Min: 1, Max: 10, Fee: decimal.RequireFromString("12.66"), Label: "Small", Boxes: 1},
		{Min: 11, Max: 16, Fee: decimal.RequireFromString("13.81"), Label: "Large", Boxes: 1},
		{Min: 17, Max: 0, Fee: decimal.RequireFromString("27.62"), Label: "2x Large", Boxes: 2},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// NewTierTable validates that the tiers partition [1, ∞) with no gap or
// overlap. A malformed table is a configuration defect and fatal at startup,
// never a runtime data issue.
func NewTierTable(tiers []Tier) (TierTable, error) {
	if len(tiers) == 0 {
		return TierTable{}, &domain.ConfigError{Component: "packaging", Reason: "no tiers configured"}
	}
	if tiers[0].Min != 1 {
		return TierTable{}, &domain.ConfigError{Component: "packaging",
			Reason: fmt.Sprintf("first tier starts at %d, must start at 1", tiers[0].Min)}
	}
	for i, t := range tiers {
		last := i == len(tiers)-1
		if last {
			if t.Max != 0 {
				return TierTable{}, &domain.ConfigError{Component: "packaging",
					Reason: fmt.Sprintf("last tier caps at %d, must be unbounded", t.Max)}
			}
			continue
		}
		if t.Max < t.Min {
			return TierTable{}, &domain.ConfigError{Component: "packaging",
				Reason: fmt.Sprintf("tier %q has max %d below min %d", t.Label, t.Max, t.Min)}
		}
		if tiers[i+1].Min != t.Max+1 {
			return TierTable{}, &domain.ConfigError{Component: "packaging",
				Reason: fmt.Sprintf("gap or overlap between tier %q (max %d) and tier %q (min %d)",
					t.Label, t.Max, tiers[i+1].Label, tiers[i+1].Min)}
		}
	}
	return TierTable{tiers: tiers}, nil
}

// Classify maps a distinct SKU count to its packaging tier. A count below 1
// is rejected loudly: a valid order always has at least one SKU, so this is
// a data defect upstream, not something to default around.
func (tt TierTable) Classify(skuCount int) (Tier, error) {
	if skuCount < 1 {
		return Tier{}, fmt.Errorf("packaging: sku count %d is out of domain", skuCount)
	}
	for _, t := range tt.tiers {
		if skuCount >= t.Min && (t.Max == 0 || skuCount <= t.Max) {
			return t, nil
		}
	}
	// Unreachable with a validated table.
	return Tier{}, fmt.Errorf("packaging: no tier matches sku count %d", skuCount)
}
