package linnworks

// Wire types for the warehouse API. Field names follow the upstream JSON
// exactly, including its Hungarian-style prefixes.

type authResponse struct {
	Token  string `json:"Token"`
	Server string `json:"Server"`
}

// ProcessedOrder is one row of a processed-order search page.
type ProcessedOrder struct {
	PkOrderID         string  `json:"pkOrderID"`
	ReferenceNum      string  `json:"ReferenceNum"`
	SecondaryRef      string  `json:"SecondaryReference"`
	ProcessedOn       string  `json:"dProcessedOn"`
	PostalServiceName string  `json:"PostalServiceName"`
	CustomerFullName  string  `json:"cFullName"`
	Company           string  `json:"cCompany"`
	TotalCharge       float64 `json:"fTotalCharge"`
	NumItems          int     `json:"nItems"`
}

type processedOrdersPage struct {
	Data         []ProcessedOrder `json:"Data"`
	TotalEntries int              `json:"TotalEntries"`
}

// OrderDetail is the full order payload from GetOrdersById.
type OrderDetail struct {
	OrderID      string `json:"OrderId"`
	CustomerInfo struct {
		Address struct {
			FullName string `json:"FullName"`
			Company  string `json:"Company"`
		} `json:"Address"`
	} `json:"CustomerInfo"`
	GeneralInfo struct {
		ReferenceNum       string `json:"ReferenceNum"`
		SecondaryReference string `json:"SecondaryReference"`
	} `json:"GeneralInfo"`
	TotalsInfo struct {
		TotalCharge float64 `json:"TotalCharge"`
		PostageCost float64 `json:"PostageCost"`
	} `json:"TotalsInfo"`
	ProcessedDateTime string `json:"ProcessedDateTime"`
	Items             []struct {
		SKU      string  `json:"SKU"`
		Title    string  `json:"Title"`
		Quantity int     `json:"Quantity"`
		UnitCost float64 `json:"PricePerUnit"`
	} `json:"Items"`
}
