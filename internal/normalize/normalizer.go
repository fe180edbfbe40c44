// Package normalize turns raw per-source order records into the canonical
// Order every downstream component consumes. Each source has its own adapter;
// nothing downstream ever branches on source-specific field presence.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/homecooks/profitboard/internal/domain"
	"github.com/homecooks/profitboard/internal/linnworks"
	"github.com/homecooks/profitboard/internal/shopify"
)

// DispatchRecord is the slice of a warehouse processed-order row the
// normalizer needs: when the warehouse sent the order out and how.
type DispatchRecord struct {
	Reference      string
	ProcessedAt    time.Time
	ShippingMethod string
	CustomerName   string
	Company        string
	TotalCharge    decimal.Decimal
	NumItems       int
}

// DispatchIndex maps storefront order identifiers to dispatch records. The
// warehouse stores the storefront order id as its reference number, sometimes
// prefixed with '#', so lookups try id, string id, and cleaned reference.
type DispatchIndex map[string]DispatchRecord

// BuildDispatchIndex converts warehouse search rows into a lookup index.
func BuildDispatchIndex(orders []linnworks.ProcessedOrder) DispatchIndex {
	idx := make(DispatchIndex, len(orders)*2)
	for _, o := range orders {
		ref := strings.TrimSpace(o.ReferenceNum)
		if ref == "" {
			continue
		}
		rec := DispatchRecord{
			Reference:      ref,
			ProcessedAt:    ParseTime(o.ProcessedOn),
			ShippingMethod: o.PostalServiceName,
			CustomerName:   o.CustomerFullName,
			Company:        o.Company,
			TotalCharge:    decimal.NewFromFloat(o.TotalCharge),
			NumItems:       o.NumItems,
		}
		idx[ref] = rec
		if clean := strings.TrimSpace(strings.ReplaceAll(ref, "#", "")); clean != ref {
			idx[clean] = rec
		}
	}
	return idx
}

// Lookup finds the dispatch record for a storefront order, trying the numeric
// id first and the cleaned order name as a legacy fallback.
func (idx DispatchIndex) Lookup(orderID int64, orderName string) (DispatchRecord, bool) {
	if rec, ok := idx[strconv.FormatInt(orderID, 10)]; ok {
		return rec, true
	}
	clean := strings.TrimSpace(strings.ReplaceAll(orderName, "#", ""))
	if rec, ok := idx[clean]; ok {
		return rec, true
	}
	rec, ok := idx[orderName]
	return rec, ok
}

// ParseTime parses the timestamp formats both backends emit, zero time when
// the value is absent or unparseable.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseMoney(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FromStorefront adapts a storefront raw order plus its warehouse dispatch
// record into a canonical Order. The warehouse processed date is the
// authoritative dispatch date; the earliest storefront fulfillment timestamp
// is the fallback when the warehouse has no record. Orders with no dispatch
// date at all, or no line items, or no resolvable customer name fail
// normalization.
func FromStorefront(raw shopify.RawOrder, dispatch *DispatchRecord) (domain.Order, error) {
	dispatchedAt := time.Time{}
	shippingMethod := ""
	if dispatch != nil {
		dispatchedAt = dispatch.ProcessedAt
		shippingMethod = dispatch.ShippingMethod
	}
	if dispatchedAt.IsZero() {
		dispatchedAt = earliestFulfillment(raw.Fulfillments)
	}
	if dispatchedAt.IsZero() {
		return domain.Order{}, fmt.Errorf("order %d: %w: no dispatch date", raw.ID, domain.ErrMalformedOrder)
	}
	if len(raw.LineItems) == 0 {
		return domain.Order{}, fmt.Errorf("order %d: %w: no line items", raw.ID, domain.ErrMalformedOrder)
	}

	customer := customerName(raw)
	if customer == "" {
		return domain.Order{}, fmt.Errorf("order %d: %w: no resolvable customer name", raw.ID, domain.ErrMalformedOrder)
	}

	items := make([]domain.LineItem, 0, len(raw.LineItems))
	totalUnits := 0
	for _, li := range raw.LineItems {
		items = append(items, domain.LineItem{
			VariantID: li.VariantID,
			SKU:       li.SKU,
			Title:     li.Title,
			Quantity:  li.Quantity,
			UnitPrice: parseMoney(li.Price),
		})
		totalUnits += li.Quantity
	}

	order := domain.Order{
		ID:             raw.ID,
		Name:           raw.Name,
		Source:         domain.SourceStorefront,
		CreatedAt:      ParseTime(raw.CreatedAt),
		DispatchedAt:   dispatchedAt,
		CustomerName:   customer,
		ShippingMethod: shippingMethod,
		Currency:       raw.Currency,
		LineItems:      items,
		Discount:       orderDiscount(raw),
		ShippingCharge: parseMoney(raw.ShippingCharge()),
		DistinctSKUs:   distinctSKUs(items),
		TotalUnits:     totalUnits,
	}
	order.Channel = Classify(order.DispatchedAt, order.ShippingMethod)
	return order, nil
}

// FromWarehouseDetail adapts a warehouse full-order payload (retail orders
// never exist on the storefront side) into a canonical Order.
func FromWarehouseDetail(detail linnworks.OrderDetail, shippingMethod string) (domain.Order, error) {
	dispatchedAt := ParseTime(detail.ProcessedDateTime)
	if dispatchedAt.IsZero() {
		return domain.Order{}, fmt.Errorf("order %s: %w: no dispatch date", detail.OrderID, domain.ErrMalformedOrder)
	}
	if len(detail.Items) == 0 {
		return domain.Order{}, fmt.Errorf("order %s: %w: no line items", detail.OrderID, domain.ErrMalformedOrder)
	}

	ref := detail.GeneralInfo.SecondaryReference
	if ref == "" {
		ref = detail.GeneralInfo.ReferenceNum
	}

	items := make([]domain.LineItem, 0, len(detail.Items))
	totalUnits := 0
	for _, it := range detail.Items {
		items = append(items, domain.LineItem{
			SKU:       it.SKU,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: decimal.NewFromFloat(it.UnitCost),
		})
		totalUnits += it.Quantity
	}

	store := StoreName(detail.CustomerInfo.Address.Company, detail.CustomerInfo.Address.FullName)

	order := domain.Order{
		ID:             parseNumericRef(ref),
		Name:           ref,
		Source:         domain.SourceWarehouse,
		DispatchedAt:   dispatchedAt,
		CustomerName:   store,
		ShippingMethod: shippingMethod,
		LineItems:      items,
		Discount:       decimal.Zero,
		ShippingCharge: decimal.NewFromFloat(detail.TotalsInfo.PostageCost),
		DistinctSKUs:   distinctSKUs(items),
		TotalUnits:     totalUnits,
	}
	order.Channel = Classify(order.DispatchedAt, order.ShippingMethod)
	return order, nil
}

func parseNumericRef(ref string) int64 {
	clean := strings.TrimSpace(strings.ReplaceAll(ref, "#", ""))
	id, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func earliestFulfillment(fs []shopify.RawFulfillment) time.Time {
	var earliest time.Time
	for _, f := range fs {
		t := ParseTime(f.CreatedAt)
		if t.IsZero() {
			continue
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}
	return earliest
}

// customerName tries the customer object, then the shipping address, then
// the billing address.
func customerName(raw shopify.RawOrder) string {
	if raw.Customer != nil {
		if name := joinName(raw.Customer.FirstName, raw.Customer.LastName); name != "" {
			return name
		}
	}
	for _, addr := range []*shopify.RawAddress{raw.ShippingAddress, raw.BillingAddress} {
		if addr == nil {
			continue
		}
		if name := strings.TrimSpace(addr.Name); name != "" {
			return name
		}
		if name := joinName(addr.FirstName, addr.LastName); name != "" {
			return name
		}
	}
	return ""
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// orderDiscount prefers the storefront's current figures: when a current
// subtotal is present, the discount is gross minus that subtotal so refunds
// and edits are reflected.
func orderDiscount(raw shopify.RawOrder) decimal.Decimal {
	gross := decimal.Zero
	for _, li := range raw.LineItems {
		gross = gross.Add(parseMoney(li.Price).Mul(decimal.NewFromInt(int64(li.Quantity))))
	}

	if raw.CurrentSubtotalPrice != "" {
		if diff := gross.Sub(parseMoney(raw.CurrentSubtotalPrice)); diff.IsPositive() {
			return diff
		}
		return decimal.Zero
	}
	if raw.CurrentTotalDiscounts != "" {
		return parseMoney(raw.CurrentTotalDiscounts)
	}
	return parseMoney(raw.TotalDiscounts)
}

// distinctSKUs counts unique variant identifiers, preferring the SKU string
// and falling back to the variant id. Quantity is irrelevant here.
func distinctSKUs(items []domain.LineItem) int {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		switch {
		case it.SKU != "":
			seen["sku:"+it.SKU] = struct{}{}
		case it.VariantID != 0:
			seen["vid:"+strconv.FormatInt(it.VariantID, 10)] = struct{}{}
		}
	}
	return len(seen)
}
