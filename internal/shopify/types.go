package shopify

// Raw wire types for the storefront Admin API. Money fields arrive as
// strings and are parsed downstream; the normalizer owns conversion to the
// canonical Order.

type RawLineItem struct {
	VariantID int64  `json:"variant_id"`
	SKU       string `json:"sku"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type RawCustomer struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	OrdersCount int    `json:"orders_count"`
}

type RawAddress struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
}

type RawFulfillment struct {
	CreatedAt string `json:"created_at"`
}

type moneyAmount struct {
	Amount string `json:"amount"`
}

type priceSet struct {
	ShopMoney moneyAmount `json:"shop_money"`
}

type RawOrder struct {
	ID                    int64            `json:"id"`
	Name                  string           `json:"name"`
	CreatedAt             string           `json:"created_at"`
	ProcessedAt           string           `json:"processed_at"`
	Currency              string           `json:"currency"`
	SubtotalPrice         string           `json:"subtotal_price"`
	TotalDiscounts        string           `json:"total_discounts"`
	CurrentSubtotalPrice  string           `json:"current_subtotal_price"`
	CurrentTotalDiscounts string           `json:"current_total_discounts"`
	TotalShippingPriceSet priceSet         `json:"total_shipping_price_set"`
	LineItems             []RawLineItem    `json:"line_items"`
	Fulfillments          []RawFulfillment `json:"fulfillments"`
	Customer              *RawCustomer     `json:"customer"`
	ShippingAddress       *RawAddress      `json:"shipping_address"`
	BillingAddress        *RawAddress      `json:"billing_address"`
}

// ShippingCharge returns the shop-money shipping amount string, empty when
// the order carries none.
func (o *RawOrder) ShippingCharge() string {
	return o.TotalShippingPriceSet.ShopMoney.Amount
}

type ordersResponse struct {
	Orders []RawOrder `json:"orders"`
}

type variantResponse struct {
	Variant *struct {
		ID              int64 `json:"id"`
		InventoryItemID int64 `json:"inventory_item_id"`
	} `json:"variant"`
}

type inventoryItemResponse struct {
	InventoryItem *struct {
		ID   int64  `json:"id"`
		Cost string `json:"cost"`
	} `json:"inventory_item"`
}
