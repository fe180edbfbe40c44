package profit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryCostBands(t *testing.T) {
	cases := []struct {
		cases int
		want  string
	}{
		{0, "0"},
		{-3, "0"},
		{1, "24.00"},
		{6, "24.00"},
		{7, "26.95"},
		{10, "31.50"},
		{50, "117.50"},
		{51, "109.65"}, // bands are not monotonic; 51 drops below 50
		{60, "129.00"},
		{61, "131.15"},
		{70, "150.50"},
	}
	for _, tc := range cases {
		got := DeliveryCost(tc.cases)
		assert.True(t, got.Equal(dec(tc.want)), "cases=%d got %s want %s", tc.cases, got, tc.want)
	}
}

func TestComputeRetailBreakdown(t *testing.T) {
	res := ComputeRetail(dec("100.00"), 2, 2)

	assert.True(t, res.OrderCosts.Equal(dec("1.36")), "order costs: %s", res.OrderCosts)
	assert.True(t, res.CaseCosts.Equal(dec("3.14")), "case costs: %s", res.CaseCosts)
	assert.True(t, res.COGS.Equal(dec("30.96")), "cogs: %s", res.COGS)
	assert.True(t, res.UnitCosts.Equal(dec("0.28")), "unit costs: %s", res.UnitCosts)
	assert.True(t, res.DeliveryCost.Equal(dec("24.00")), "delivery: %s", res.DeliveryCost)
	assert.True(t, res.Commission.Equal(dec("10.00")), "commission: %s", res.Commission)
	assert.True(t, res.TotalCosts.Equal(dec("69.74")), "total costs: %s", res.TotalCosts)
	assert.True(t, res.Profit.Equal(dec("30.26")), "profit: %s", res.Profit)

	require.True(t, res.Margin.Valid)
	margin, _ := res.Margin.Pct.Round(2).Float64()
	assert.InDelta(t, 30.26, margin, 0.001)
}

func TestComputeRetailUndefinedMarginAtZeroRevenue(t *testing.T) {
	res := ComputeRetail(dec("0"), 1, 1)
	assert.False(t, res.Margin.Valid)
	assert.True(t, res.Profit.IsNegative(), "zero-revenue order still carries costs")
}

func TestExcludedFromRetailProfit(t *testing.T) {
	excluded := []string{
		"Go Puff",
		"GoPuff London",
		"GOPUFF",
		"On the Rocks",
		"ON THE ROCKS (Soho)",
	}
	for _, store := range excluded {
		assert.True(t, ExcludedFromRetailProfit(store), "%q should be excluded", store)
	}

	included := []string{"The Corner Shop", "Rock Bar", "Puff Pastry Co"}
	for _, store := range included {
		assert.False(t, ExcludedFromRetailProfit(store), "%q should not be excluded", store)
	}
}
