package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecooks/profitboard/internal/domain"
	"github.com/homecooks/profitboard/internal/linnworks"
	"github.com/homecooks/profitboard/internal/shopify"
)

func rawStorefrontOrder() shopify.RawOrder {
	return shopify.RawOrder{
		ID:        1001,
		Name:      "#1001",
		CreatedAt: "2026-03-10T14:00:00Z",
		Currency:  "GBP",
		LineItems: []shopify.RawLineItem{
			{VariantID: 1, SKU: "MEAL-A", Quantity: 2, Price: "10.00"},
			{VariantID: 2, SKU: "MEAL-B", Quantity: 2, Price: "10.00"},
		},
		Customer: &shopify.RawCustomer{FirstName: "Jamie", LastName: "Fox"},
	}
}

func dispatchRecord(when time.Time) *DispatchRecord {
	return &DispatchRecord{
		Reference:      "1001",
		ProcessedAt:    when,
		ShippingMethod: "Royal Mail Tracked 24",
	}
}

func TestFromStorefrontUsesWarehouseDate(t *testing.T) {
	thursday := time.Date(2026, 3, 12, 6, 30, 0, 0, time.UTC)
	raw := rawStorefrontOrder()
	raw.Fulfillments = []shopify.RawFulfillment{{CreatedAt: "2026-03-11T09:00:00Z"}}

	order, err := FromStorefront(raw, dispatchRecord(thursday))
	require.NoError(t, err)

	assert.Equal(t, thursday, order.DispatchedAt, "warehouse date wins over fulfillment date")
	assert.Equal(t, domain.ChannelD2C, order.Channel)
	assert.Equal(t, "Jamie Fox", order.CustomerName)
	assert.Equal(t, 2, order.DistinctSKUs)
	assert.Equal(t, 4, order.TotalUnits)
	assert.Equal(t, domain.SourceStorefront, order.Source)
}

func TestFromStorefrontFallsBackToEarliestFulfillment(t *testing.T) {
	raw := rawStorefrontOrder()
	raw.Fulfillments = []shopify.RawFulfillment{
		{CreatedAt: "2026-03-12T15:00:00Z"},
		{CreatedAt: "2026-03-12T09:00:00Z"},
	}

	order, err := FromStorefront(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC), order.DispatchedAt)
}

func TestFromStorefrontMalformed(t *testing.T) {
	t.Run("no dispatch date", func(t *testing.T) {
		raw := rawStorefrontOrder()
		_, err := FromStorefront(raw, nil)
		assert.ErrorIs(t, err, domain.ErrMalformedOrder)
	})

	t.Run("no line items", func(t *testing.T) {
		raw := rawStorefrontOrder()
		raw.LineItems = nil
		_, err := FromStorefront(raw, dispatchRecord(time.Now()))
		assert.ErrorIs(t, err, domain.ErrMalformedOrder)
	})

	t.Run("no customer name", func(t *testing.T) {
		raw := rawStorefrontOrder()
		raw.Customer = nil
		_, err := FromStorefront(raw, dispatchRecord(time.Now()))
		assert.ErrorIs(t, err, domain.ErrMalformedOrder)
	})
}

func TestFromStorefrontCustomerNameFallbacks(t *testing.T) {
	raw := rawStorefrontOrder()
	raw.Customer = nil
	raw.ShippingAddress = &shopify.RawAddress{Name: "Alex Poole"}

	order, err := FromStorefront(raw, dispatchRecord(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "Alex Poole", order.CustomerName)

	raw.ShippingAddress = nil
	raw.BillingAddress = &shopify.RawAddress{FirstName: "Robin", LastName: "Hale"}
	order, err = FromStorefront(raw, dispatchRecord(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "Robin Hale", order.CustomerName)
}

func TestFromStorefrontDiscountFromCurrentSubtotal(t *testing.T) {
	raw := rawStorefrontOrder()
	raw.CurrentSubtotalPrice = "38.00"
	raw.TotalDiscounts = "99.00" // stale figure, must lose to current subtotal

	order, err := FromStorefront(raw, dispatchRecord(time.Now()))
	require.NoError(t, err)
	assert.True(t, order.Discount.Equal(decimal.RequireFromString("2.00")), "discount: %s", order.Discount)
}

func TestFromStorefrontDiscountFallback(t *testing.T) {
	raw := rawStorefrontOrder()
	raw.TotalDiscounts = "5.00"

	order, err := FromStorefront(raw, dispatchRecord(time.Now()))
	require.NoError(t, err)
	assert.True(t, order.Discount.Equal(decimal.RequireFromString("5.00")))
}

func TestDispatchIndexLookup(t *testing.T) {
	idx := BuildDispatchIndex([]linnworks.ProcessedOrder{
		{ReferenceNum: "1001", ProcessedOn: "2026-03-12T06:30:00", PostalServiceName: "Royal Mail Tracked 24"},
		{ReferenceNum: "#2002", ProcessedOn: "2026-03-12T06:45:00", PostalServiceName: "DPD Next Day"},
	})

	rec, ok := idx.Lookup(1001, "#1001")
	require.True(t, ok)
	assert.Equal(t, "Royal Mail Tracked 24", rec.ShippingMethod)

	// The warehouse stored the reference with a '#'; the cleaned name matches.
	rec, ok = idx.Lookup(2002, "#2002")
	require.True(t, ok)
	assert.Equal(t, "DPD Next Day", rec.ShippingMethod)

	_, ok = idx.Lookup(3003, "#3003")
	assert.False(t, ok)
}

func TestFromWarehouseDetail(t *testing.T) {
	detail := linnworks.OrderDetail{
		OrderID:           "abc-123",
		ProcessedDateTime: "2026-03-11T10:00:00",
	}
	detail.GeneralInfo.SecondaryReference = "#5005"
	detail.CustomerInfo.Address.Company = "Corner Shop"
	detail.CustomerInfo.Address.FullName = "Sam Reed"
	detail.TotalsInfo.TotalCharge = 250.0
	detail.TotalsInfo.PostageCost = 12.5
	detail.Items = []struct {
		SKU      string  `json:"SKU"`
		Title    string  `json:"Title"`
		Quantity int     `json:"Quantity"`
		UnitCost float64 `json:"PricePerUnit"`
	}{
		{SKU: "CASE-A", Title: "Meal Case A", Quantity: 10, UnitCost: 12.50},
	}

	order, err := FromWarehouseDetail(detail, "No Shipping Required")
	require.NoError(t, err)

	assert.Equal(t, int64(5005), order.ID)
	assert.Equal(t, "#5005", order.Name)
	assert.Equal(t, domain.ChannelRetail, order.Channel)
	assert.Equal(t, "Corner Shop (Sam Reed)", order.CustomerName)
	assert.Equal(t, 10, order.TotalUnits)
	assert.Equal(t, domain.SourceWarehouse, order.Source)
	assert.True(t, order.ShippingCharge.Equal(decimal.RequireFromString("12.5")))
}

func TestParseTimeFormats(t *testing.T) {
	cases := []string{
		"2026-03-12T06:30:00Z",
		"2026-03-12T06:30:00",
		"2026-03-12 06:30:00",
		"2026-03-12",
	}
	for _, s := range cases {
		got := ParseTime(s)
		assert.False(t, got.IsZero(), "should parse %q", s)
		assert.Equal(t, 2026, got.Year())
	}

	assert.True(t, ParseTime("").IsZero())
	assert.True(t, ParseTime("not a date").IsZero())
}
