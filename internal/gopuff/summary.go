package gopuff

import (
	"sort"
	"time"

	"github.com/homecooks/profitboard/internal/domain"
	"github.com/homecooks/profitboard/internal/period"
)

// BuildView reduces the sales feed to the dashboard summary. All windows
// anchor on the latest date present in the feed, not the wall clock: the
// feed lags a day and "today" means "latest reported sales day". weekOffset
// moves the weekly breakdown back that many whole ISO weeks; the daily and
// monthly cards stay anchored on the latest date.
func BuildView(rows []domain.SalesFeedRow, weekOffset int) domain.GoPuffView {
	var view domain.GoPuffView
	if len(rows) == 0 {
		return view
	}
	if weekOffset < 0 {
		weekOffset = 0
	}
	view.WeekOffset = weekOffset

	for _, r := range rows {
		if r.Date.After(view.LatestDate) {
			view.LatestDate = r.Date
		}
	}
	view.WeekStart, view.WeekEnd = period.ISOWeekBounds(view.LatestDate.AddDate(0, 0, -7*weekOffset))

	todayTotals := map[string]int{}
	weekTotals := map[string]int{}
	monthTotals := map[string]int{}
	allTotals := map[string]int{}
	for _, r := range rows {
		allTotals[r.Product] += r.Quantity
		if sameDay(r.Date, view.LatestDate) {
			todayTotals[r.Product] += r.Quantity
			view.UnitsToday += r.Quantity
			if r.Quantity > 0 {
				view.SKUsWithSales++
			} else {
				view.SKUsZeroSales++
			}
		}
		if !r.Date.Before(view.WeekStart) && !r.Date.After(view.WeekEnd) {
			weekTotals[r.Product] += r.Quantity
		}
		if r.Date.Year() == view.LatestDate.Year() && r.Date.Month() == view.LatestDate.Month() {
			monthTotals[r.Product] += r.Quantity
		}
	}

	view.Today = rank(todayTotals)
	view.Weekly = rank(weekTotals)
	if top := rank(monthTotals); len(top) > 0 {
		view.MonthlyTop = top[0]
		view.MonthlyTopWhen = view.LatestDate.Format("January 2006")
	}
	if top := rank(allTotals); len(top) > 0 {
		view.AllTimeTop = top[0]
	}
	return view
}

func rank(totals map[string]int) []domain.ProductTotal {
	out := make([]domain.ProductTotal, 0, len(totals))
	for p, u := range totals {
		out = append(out, domain.ProductTotal{Product: p, Units: u})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		return out[i].Product < out[j].Product
	})
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
