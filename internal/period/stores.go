package period

import (
	"fmt"
	"sort"
	"strings"

	"github.com/homecooks/profitboard/internal/domain"
	"github.com/homecooks/profitboard/internal/normalize"
)

// StoreSummaries reduces retail orders to one row per store name, plus a
// warning for every group of distinct names that canonicalise to the same
// store. Likely duplicates stay separate rows; merging names is a data fix
// for the warehouse, not something to guess at here.
func StoreSummaries(orders []domain.RetailOrderProfit) ([]domain.StoreSummary, []domain.Warning) {
	byStore := make(map[string]*domain.StoreSummary)
	for _, ro := range orders {
		name := ro.Order.CustomerName
		s, ok := byStore[name]
		if !ok {
			s = &domain.StoreSummary{Store: name}
			byStore[name] = s
		}
		s.Orders++
		s.Units += ro.Order.TotalUnits
		s.RevenueSum = s.RevenueSum.Add(ro.Profit.Revenue)
		if !ro.Excluded {
			s.ProfitSum = s.ProfitSum.Add(ro.Profit.Profit)
		}
		if ro.Order.DispatchedAt.After(s.LastOrder) {
			s.LastOrder = ro.Order.DispatchedAt
		}
	}

	canon := make(map[string][]string)
	for name := range byStore {
		key := normalize.CanonicalStoreName(name)
		canon[key] = append(canon[key], name)
	}

	var warnings []domain.Warning
	keys := make([]string, 0, len(canon))
	for k := range canon {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		names := canon[k]
		if len(names) < 2 {
			continue
		}
		sort.Strings(names)
		for _, n := range names {
			byStore[n].Duplicate = true
		}
		warnings = append(warnings, domain.Warning{
			Kind:   domain.WarnDuplicateStore,
			Detail: fmt.Sprintf("store names %s look like the same store", strings.Join(names, " / ")),
		})
	}

	out := make([]domain.StoreSummary, 0, len(byStore))
	for _, s := range byStore {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RevenueSum.Equal(out[j].RevenueSum) {
			return out[i].RevenueSum.GreaterThan(out[j].RevenueSum)
		}
		return out[i].Store < out[j].Store
	})
	return out, warnings
}
