package normalize

import (
	"strings"
	"time"

	"github.com/homecooks/profitboard/internal/domain"
)

// retailSentinel is the shipping method the warehouse assigns to wholesale
// orders collected by the store rather than couriered.
const retailSentinel = "no shipping required"

// IsRetail reports whether a shipping method marks an order as a retail
// (wholesale) order. Case-insensitive exact match after trimming.
func IsRetail(shippingMethod string) bool {
	return strings.ToLower(strings.TrimSpace(shippingMethod)) == retailSentinel
}

// IsD2C reports whether an order belongs to the D2C channel: dispatched on a
// Monday or Thursday and not a retail order. Both predicates are pure and
// order-independent, so classification can run concurrently across orders.
func IsD2C(dispatchedAt time.Time, shippingMethod string) bool {
	if IsRetail(shippingMethod) {
		return false
	}
	wd := dispatchedAt.Weekday()
	return wd == time.Monday || wd == time.Thursday
}

// Classify routes an order to its channel. Orders matching neither predicate
// land in the unclassified bucket; they are kept visible for audit but
// excluded from the channel rollups.
func Classify(dispatchedAt time.Time, shippingMethod string) domain.Channel {
	switch {
	case IsRetail(shippingMethod):
		return domain.ChannelRetail
	case IsD2C(dispatchedAt, shippingMethod):
		return domain.ChannelD2C
	default:
		return domain.ChannelUnclassified
	}
}

var storeNameSuffixes = []string{" ltd", " limited", " plc", " inc", " llc", " store", " shop"}

// StoreName blends the warehouse company and contact-name fields into a
// display name, the way the account team reads them.
func StoreName(company, fullName string) string {
	company = strings.TrimSpace(company)
	fullName = strings.TrimSpace(fullName)

	switch {
	case company != "" && fullName != "":
		if strings.EqualFold(company, fullName) {
			return company
		}
		return company + " (" + fullName + ")"
	case company != "":
		return company
	case fullName != "":
		return fullName
	default:
		return "Unknown Store"
	}
}

// CanonicalStoreName reduces a store display name to a collision key for
// duplicate-account detection: lowercase, common company suffixes stripped,
// punctuation removed, whitespace collapsed.
func CanonicalStoreName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "unknown"
	}
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range storeNameSuffixes {
		normalized = strings.ReplaceAll(normalized, suffix, "")
	}

	var b strings.Builder
	for _, r := range normalized {
		if r == ' ' || r == '\t' ||
			(r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
