package gopuff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecooks/profitboard/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildViewAnchorsOnLatestFeedDate(t *testing.T) {
	rows := []domain.SalesFeedRow{
		{Date: day(2026, 3, 11), Product: "Chicken Katsu", Quantity: 8},
		{Date: day(2026, 3, 12), Product: "Chicken Katsu", Quantity: 5},
		{Date: day(2026, 3, 12), Product: "Beef Rendang", Quantity: 3},
		{Date: day(2026, 3, 12), Product: "Dhal", Quantity: 0},
	}
	view := BuildView(rows, 0)

	assert.Equal(t, day(2026, 3, 12), view.LatestDate)
	assert.Equal(t, 8, view.UnitsToday)
	assert.Equal(t, 2, view.SKUsWithSales)
	assert.Equal(t, 1, view.SKUsZeroSales)

	require.Len(t, view.Today, 3)
	assert.Equal(t, "Chicken Katsu", view.Today[0].Product, "ranked by units")
	assert.Equal(t, 5, view.Today[0].Units)
}

func TestBuildViewWeeklyWindow(t *testing.T) {
	// Thursday 2026-03-12 belongs to the week Mon 9th .. Sun 15th.
	rows := []domain.SalesFeedRow{
		{Date: day(2026, 3, 8), Product: "Chicken Katsu", Quantity: 100}, // prior Sunday
		{Date: day(2026, 3, 9), Product: "Chicken Katsu", Quantity: 4},
		{Date: day(2026, 3, 12), Product: "Chicken Katsu", Quantity: 5},
	}
	view := BuildView(rows, 0)

	assert.Equal(t, day(2026, 3, 9), view.WeekStart)
	assert.Equal(t, day(2026, 3, 15), view.WeekEnd)
	require.Len(t, view.Weekly, 1)
	assert.Equal(t, 9, view.Weekly[0].Units, "prior Sunday stays out of this week")
}

func TestBuildViewTopProducts(t *testing.T) {
	rows := []domain.SalesFeedRow{
		{Date: day(2026, 2, 20), Product: "Beef Rendang", Quantity: 50},
		{Date: day(2026, 3, 2), Product: "Chicken Katsu", Quantity: 30},
		{Date: day(2026, 3, 12), Product: "Dhal", Quantity: 10},
	}
	view := BuildView(rows, 0)

	assert.Equal(t, "Chicken Katsu", view.MonthlyTop.Product, "monthly top covers the latest month only")
	assert.Equal(t, 30, view.MonthlyTop.Units)
	assert.Equal(t, "March 2026", view.MonthlyTopWhen)

	assert.Equal(t, "Beef Rendang", view.AllTimeTop.Product)
	assert.Equal(t, 50, view.AllTimeTop.Units)
}

func TestBuildViewEmptyFeed(t *testing.T) {
	view := BuildView(nil, 0)
	assert.True(t, view.LatestDate.IsZero())
	assert.Zero(t, view.UnitsToday)
	assert.Empty(t, view.Today)
}

func TestFlattenGrid(t *testing.T) {
	grid := [][]interface{}{
		{"Product Name", "3/11/2026", "3/12/2026", "Notes"},
		{"Chicken Katsu", "8", "5", "restock soon"},
		{"Beef Rendang", "", "3.0"},
		{"Dhal", "n/a", "0"},
		{"", "9", "9"},
	}
	rows, err := FlattenGrid(grid)
	require.NoError(t, err)

	byKey := map[string]int{}
	for _, r := range rows {
		byKey[r.Product+"@"+r.Date.Format("2006-01-02")] = r.Quantity
	}

	assert.Equal(t, 8, byKey["Chicken Katsu@2026-03-11"])
	assert.Equal(t, 5, byKey["Chicken Katsu@2026-03-12"])
	assert.Equal(t, 3, byKey["Beef Rendang@2026-03-12"])

	_, blankKept := byKey["Beef Rendang@2026-03-11"]
	assert.False(t, blankKept, "blank cells produce no row")

	zero, zeroKept := byKey["Dhal@2026-03-12"]
	assert.True(t, zeroKept, "explicit zeros are kept")
	assert.Equal(t, 0, zero)

	assert.Len(t, rows, 4, "rows without a product name are dropped")
}

func TestFlattenGridHeaderValidation(t *testing.T) {
	_, err := FlattenGrid([][]interface{}{{"Item", "3/12/2026"}})
	assert.Error(t, err, "missing product column")

	_, err = FlattenGrid([][]interface{}{{"Product Name", "Notes"}})
	assert.Error(t, err, "missing date columns")
}

func TestBuildViewWeekOffset(t *testing.T) {
	rows := []domain.SalesFeedRow{
		{Date: day(2026, 3, 5), Product: "Chicken Katsu", Quantity: 7}, // prior week Thursday
		{Date: day(2026, 3, 12), Product: "Chicken Katsu", Quantity: 5},
	}
	view := BuildView(rows, 1)

	assert.Equal(t, day(2026, 3, 2), view.WeekStart)
	assert.Equal(t, day(2026, 3, 8), view.WeekEnd)
	require.Len(t, view.Weekly, 1)
	assert.Equal(t, 7, view.Weekly[0].Units)
	assert.Equal(t, day(2026, 3, 12), view.LatestDate, "daily card stays anchored on the latest date")
}
