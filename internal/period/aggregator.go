package period

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/homecooks/profitboard/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Rollup reduces a set of order profits to one PeriodRollup. Margin and AOV
// are derived from the sums, and left at their zero values (margin flagged
// invalid) for an empty or zero-revenue bucket.
func Rollup(label string, start, end time.Time, orders []domain.OrderProfit) domain.PeriodRollup {
	r := domain.PeriodRollup{Label: label, Start: start, End: end}
	for _, op := range orders {
		r.OrderCount++
		r.TotalUnits += op.Order.TotalUnits
		r.RevenueSum = r.RevenueSum.Add(op.Profit.NetRevenue)
		r.DiscountSum = r.DiscountSum.Add(op.Order.Discount)
		r.COGSSum = r.COGSSum.Add(op.Profit.TotalCOGS)
		r.PackagingSum = r.PackagingSum.Add(op.Profit.PackagingFee)
		r.ContributionSum = r.ContributionSum.Add(op.Profit.Contribution)
	}
	if r.RevenueSum.IsPositive() {
		r.Margin = domain.NewMargin(r.ContributionSum.Div(r.RevenueSum).Mul(hundred))
	}
	if r.OrderCount > 0 {
		r.AOV = r.RevenueSum.Div(decimal.NewFromInt(int64(r.OrderCount)))
	}
	return r
}

// WindowRollups buckets orders into the standard comparison windows for
// "today" and attaches deltas: MTD against the prior-month window and
// against LFL, YTD against YTD LFL.
func WindowRollups(today time.Time, orders []domain.OrderProfit) domain.WindowRollups {
	wins := Windows(today)

	bucket := func(k domain.WindowKind) domain.PeriodRollup {
		w := wins[k]
		var in []domain.OrderProfit
		for _, op := range orders {
			if w.Contains(op.Order.DispatchedAt) {
				in = append(in, op)
			}
		}
		return Rollup(w.Label, w.Start, w.End, in)
	}

	out := domain.WindowRollups{
		MTD:       bucket(domain.WindowMTD),
		YTD:       bucket(domain.WindowYTD),
		LastMonth: bucket(domain.WindowLastMonth),
		LFL:       bucket(domain.WindowLFL),
		YTDLFL:    bucket(domain.WindowYTDLFL),
	}

	mtdVsLast := Delta(out.MTD, out.LastMonth)
	out.MTD.Delta = &mtdVsLast
	lflDelta := Delta(out.MTD, out.LFL)
	out.LFL.Delta = &lflDelta
	ytdDelta := Delta(out.YTD, out.YTDLFL)
	out.YTDLFL.Delta = &ytdDelta
	return out
}

// Delta compares a current rollup against a reference one. Percentage
// changes are flagged invalid when the reference sum is zero instead of
// dividing through it.
func Delta(cur, ref domain.PeriodRollup) domain.RollupDelta {
	d := domain.RollupDelta{
		Against:        ref.Label,
		RevenueAbs:     cur.RevenueSum.Sub(ref.RevenueSum),
		ProfitAbs:      cur.ContributionSum.Sub(ref.ContributionSum),
		OrderCountDiff: cur.OrderCount - ref.OrderCount,
	}
	if !ref.RevenueSum.IsZero() {
		d.RevenuePct = d.RevenueAbs.Div(ref.RevenueSum).Mul(hundred)
		d.RevenuePctValid = true
	}
	if !ref.ContributionSum.IsZero() {
		d.ProfitPct = d.ProfitAbs.Div(ref.ContributionSum).Mul(hundred)
		d.ProfitPctValid = true
	}
	return d
}

// WeeklyRollups groups orders by ISO week of their dispatch date, newest
// week first.
func WeeklyRollups(orders []domain.OrderProfit) []domain.WeekRollup {
	type weekKey struct {
		year, week int
	}
	groups := make(map[weekKey][]domain.OrderProfit)
	for _, op := range orders {
		y, w := op.Order.DispatchedAt.ISOWeek()
		k := weekKey{y, w}
		groups[k] = append(groups[k], op)
	}

	out := make([]domain.WeekRollup, 0, len(groups))
	for k, in := range groups {
		monday, sunday := ISOWeekBounds(in[0].Order.DispatchedAt)
		label := fmt.Sprintf("%d-W%02d", k.year, k.week)
		out = append(out, domain.WeekRollup{
			PeriodRollup: Rollup(label, monday, sunday, in),
			ISOYear:      k.year,
			ISOWeek:      k.week,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ISOYear != out[j].ISOYear {
			return out[i].ISOYear > out[j].ISOYear
		}
		return out[i].ISOWeek > out[j].ISOWeek
	})
	return out
}

// RetailWindowRollups adapts retail order profits to the shared window
// machinery. Excluded accounts keep their orders and revenue in every sum;
// only their profit contribution stays out.
func RetailWindowRollups(today time.Time, orders []domain.RetailOrderProfit) domain.WindowRollups {
	return WindowRollups(today, retailAsOrderProfits(orders))
}

func retailAsOrderProfits(orders []domain.RetailOrderProfit) []domain.OrderProfit {
	out := make([]domain.OrderProfit, 0, len(orders))
	for _, ro := range orders {
		pr := domain.ProfitabilityResult{
			OrderID:        ro.Order.ID,
			OrderName:      ro.Order.Name,
			GrossItemValue: ro.Profit.Revenue,
			NetRevenue:     ro.Profit.Revenue,
		}
		if !ro.Excluded {
			pr.TotalCOGS = ro.Profit.COGS
			pr.Contribution = ro.Profit.Profit
			pr.Margin = ro.Profit.Margin
		}
		out = append(out, domain.OrderProfit{Order: ro.Order, Profit: pr})
	}
	return out
}
