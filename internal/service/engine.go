// Package service joins the external feeds into channel views: fetch,
// normalize, classify, cost, aggregate. All orchestration lives here;
// handlers only translate HTTP to engine calls.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/homecooks/profitboard/internal/cache"
	"github.com/homecooks/profitboard/internal/config"
	"github.com/homecooks/profitboard/internal/costing"
	"github.com/homecooks/profitboard/internal/domain"
	"github.com/homecooks/profitboard/internal/gopuff"
	"github.com/homecooks/profitboard/internal/linnworks"
	"github.com/homecooks/profitboard/internal/normalize"
	"github.com/homecooks/profitboard/internal/period"
	"github.com/homecooks/profitboard/internal/profit"
	"github.com/homecooks/profitboard/internal/shopify"
)

// StorefrontClient is the slice of the storefront API the engine needs.
type StorefrontClient interface {
	Orders(ctx context.Context, from, to time.Time) ([]shopify.RawOrder, error)
}

// WarehouseClient is the slice of the warehouse API the engine needs.
type WarehouseClient interface {
	ProcessedOrders(ctx context.Context, from, to time.Time) ([]linnworks.ProcessedOrder, error)
	OrderDetails(ctx context.Context, pkOrderIDs []string) ([]linnworks.OrderDetail, error)
}

// FeedClient fetches the spreadsheet sales feed.
type FeedClient interface {
	Fetch(ctx context.Context) ([]domain.SalesFeedRow, error)
}

// Engine is the aggregation core. Loads are memoized per cache generation
// and coalesced, so an arbitrary number of concurrent view requests costs at
// most one upstream fetch per bucket.
type Engine struct {
	store      *cache.Store
	storefront StorefrontClient
	warehouse  WarehouseClient
	feed       FeedClient
	costs      *costing.Resolver
	calc       *profit.Calculator

	orderTTL  time.Duration
	retailTTL time.Duration
	feedTTL   time.Duration

	now   func() time.Time
	loads singleflight.Group
}

// NewEngine wires the aggregation core. A nil now falls back to time.Now.
func NewEngine(
	cfg config.CacheConfig,
	store *cache.Store,
	storefront StorefrontClient,
	warehouse WarehouseClient,
	feed FeedClient,
	costs *costing.Resolver,
	calc *profit.Calculator,
	now func() time.Time,
) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		store:      store,
		storefront: storefront,
		warehouse:  warehouse,
		feed:       feed,
		costs:      costs,
		calc:       calc,
		orderTTL:   time.Duration(cfg.OrderTTLSeconds) * time.Second,
		retailTTL:  time.Duration(cfg.RetailTTLSeconds) * time.Second,
		feedTTL:    time.Duration(cfg.FeedTTLSeconds) * time.Second,
		now:        now,
	}
}

// Generation exposes the current cache generation for view-cache keying.
func (e *Engine) Generation() uint64 { return e.store.Generation() }

// Status reports cache freshness for the dashboard's cache panel.
func (e *Engine) Status() domain.CacheStatus { return e.store.Status() }

// ClearCache bumps the generation, orphaning every cached input at once.
func (e *Engine) ClearCache() domain.CacheStatus {
	gen := e.store.Bump()
	log.Info().Uint64("generation", gen).Msg("cache cleared")
	return e.store.Status()
}

// loadRange is the fetch horizon: everything from January 1 of the prior
// year so the like-for-like windows always have their reference data.
func (e *Engine) loadRange() (time.Time, time.Time) {
	today := e.now()
	from := time.Date(today.Year()-1, time.January, 1, 0, 0, 0, 0, today.Location())
	return from, today
}

// d2cData is the normalized direct-to-consumer snapshot cached per
// generation.
type d2cData struct {
	Orders       []domain.Order
	Unclassified []domain.Order
	Warnings     []domain.Warning
	Partial      bool
}

func (e *Engine) loadD2C(ctx context.Context) (d2cData, error) {
	if data, ok := cache.GetTyped[d2cData](e.store, cache.BucketD2COrders, "all"); ok {
		return data, nil
	}
	v, err, _ := e.loads.Do(fmt.Sprintf("d2c:g%d", e.store.Generation()), func() (interface{}, error) {
		if data, ok := cache.GetTyped[d2cData](e.store, cache.BucketD2COrders, "all"); ok {
			return data, nil
		}
		data, err := e.fetchD2C(ctx)
		if err != nil {
			return d2cData{}, err
		}
		e.store.Set(cache.BucketD2COrders, "all", data, e.orderTTL)
		return data, nil
	})
	if err != nil {
		return d2cData{}, err
	}
	return v.(d2cData), nil
}

func (e *Engine) fetchD2C(ctx context.Context) (d2cData, error) {
	from, to := e.loadRange()

	var (
		rawOrders []shopify.RawOrder
		processed []linnworks.ProcessedOrder
		sfErr     error
		whErr     error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rawOrders, sfErr = e.storefront.Orders(gctx, from, to)
		return nil
	})
	g.Go(func() error {
		processed, whErr = e.warehouse.ProcessedOrders(gctx, from, to)
		return nil
	})
	_ = g.Wait()

	var data d2cData
	if sfErr != nil {
		if !errors.Is(sfErr, domain.ErrTransientFetch) {
			return d2cData{}, sfErr
		}
		data.Partial = true
		data.Warnings = append(data.Warnings, domain.Warning{
			Kind: domain.WarnPartialData, Detail: "storefront orders unavailable: " + sfErr.Error(),
		})
		log.Warn().Err(sfErr).Msg("d2c load: storefront fetch failed, serving partial view")
	}
	if whErr != nil {
		if !errors.Is(whErr, domain.ErrTransientFetch) {
			return d2cData{}, whErr
		}
		data.Partial = true
		data.Warnings = append(data.Warnings, domain.Warning{
			Kind: domain.WarnPartialData, Detail: "warehouse dispatch data unavailable: " + whErr.Error(),
		})
		log.Warn().Err(whErr).Msg("d2c load: warehouse fetch failed, dispatch dates fall back to fulfillments")
	}

	idx := normalize.BuildDispatchIndex(processed)
	for _, raw := range rawOrders {
		var dispatch *normalize.DispatchRecord
		if rec, ok := idx.Lookup(raw.ID, raw.Name); ok {
			dispatch = &rec
		}
		order, err := normalize.FromStorefront(raw, dispatch)
		if err != nil {
			data.Warnings = append(data.Warnings, domain.Warning{
				Kind: domain.WarnMalformedOrder, OrderID: raw.ID, Detail: err.Error(),
			})
			continue
		}
		switch order.Channel {
		case domain.ChannelD2C:
			data.Orders = append(data.Orders, order)
		case domain.ChannelUnclassified:
			data.Unclassified = append(data.Unclassified, order)
		}
	}
	if n := len(data.Unclassified); n > 0 {
		data.Warnings = append(data.Warnings, domain.Warning{
			Kind:   domain.WarnUnclassified,
			Detail: fmt.Sprintf("%d orders dispatched outside Monday/Thursday and not retail", n),
		})
	}

	sort.Slice(data.Orders, func(i, j int) bool {
		return data.Orders[i].DispatchedAt.After(data.Orders[j].DispatchedAt)
	})
	log.Info().
		Int("d2c", len(data.Orders)).
		Int("unclassified", len(data.Unclassified)).
		Bool("partial", data.Partial).
		Msg("d2c orders loaded")
	return data, nil
}

// D2CView computes the direct-to-consumer dashboard payload. Weekly and
// window rollups always cover the full loaded history; the filter narrows
// only the order listing.
func (e *Engine) D2CView(ctx context.Context, filter domain.ViewFilter) (domain.D2CView, error) {
	data, err := e.loadD2C(ctx)
	if err != nil {
		return domain.D2CView{}, err
	}

	view := domain.D2CView{
		Unclassified: data.Unclassified,
		Warnings:     data.Warnings,
		Partial:      data.Partial,
		Generation:   e.store.Generation(),
	}

	snap, snapErr := e.costSnapshot(ctx, data.Orders)
	if snapErr != nil {
		view.Partial = true
		view.Warnings = append(view.Warnings, domain.Warning{
			Kind: domain.WarnPartialData, Detail: "variant costs unavailable: " + snapErr.Error(),
		})
	}

	var profits []domain.OrderProfit
	for _, order := range data.Orders {
		if order.DistinctSKUs < 1 {
			view.Warnings = append(view.Warnings, domain.Warning{
				Kind: domain.WarnZeroSKUCount, OrderID: order.ID,
				Detail: "order has no identifiable SKUs, excluded from profitability",
			})
			continue
		}
		res, err := e.calc.Compute(order, snap)
		if err != nil {
			view.Warnings = append(view.Warnings, domain.Warning{
				Kind: domain.WarnMalformedOrder, OrderID: order.ID, Detail: err.Error(),
			})
			continue
		}
		if res.MissingCosts {
			view.Warnings = append(view.Warnings, domain.Warning{
				Kind: domain.WarnMissingCost, OrderID: order.ID,
				Detail: fmt.Sprintf("no unit cost for %v, COGS understated", res.MissingSKUs),
			})
		}
		if res.NetRevenue.IsNegative() {
			view.Warnings = append(view.Warnings, domain.Warning{
				Kind: domain.WarnExcessDiscount, OrderID: order.ID,
				Detail: fmt.Sprintf("discount %s exceeds gross %s", order.Discount, res.GrossItemValue),
			})
		}
		profits = append(profits, domain.OrderProfit{Order: order, Profit: res})
	}

	view.Weekly = period.WeeklyRollups(profits)
	view.Windows = period.WindowRollups(e.now(), profits)
	view.Orders = filterOrderProfits(profits, filter)
	return view, nil
}

func (e *Engine) costSnapshot(ctx context.Context, orders []domain.Order) (domain.CostSnapshot, error) {
	var ids []int64
	for _, o := range orders {
		for _, li := range o.LineItems {
			ids = append(ids, li.VariantID)
		}
	}
	snap, err := e.costs.Snapshot(ctx, ids)
	if err != nil {
		if errors.Is(err, domain.ErrTransientFetch) {
			// Every cost reads as missing; profits are flagged, not faked.
			return domain.CostSnapshot{}, err
		}
		return nil, err
	}
	return snap, nil
}

func filterOrderProfits(profits []domain.OrderProfit, f domain.ViewFilter) []domain.OrderProfit {
	days := map[time.Weekday]bool{}
	for _, d := range f.Days {
		days[d] = true
	}
	out := make([]domain.OrderProfit, 0, len(profits))
	for _, op := range profits {
		t := op.Order.DispatchedAt
		if !f.From.IsZero() && t.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !t.Before(f.To.AddDate(0, 0, 1)) {
			continue
		}
		if !f.All && len(days) > 0 && !days[op.Order.DispatchWeekday()] {
			continue
		}
		out = append(out, op)
	}
	return out
}

// retailRecord carries a normalized retail order plus the warehouse's billed
// total, which is the revenue figure the wholesale cost model runs on.
type retailRecord struct {
	Order   domain.Order
	Revenue decimal.Decimal
}

type retailData struct {
	Records  []retailRecord
	Warnings []domain.Warning
	Partial  bool
}

func (e *Engine) loadRetail(ctx context.Context) (retailData, error) {
	if data, ok := cache.GetTyped[retailData](e.store, cache.BucketRetailOrders, "all"); ok {
		return data, nil
	}
	v, err, _ := e.loads.Do(fmt.Sprintf("retail:g%d", e.store.Generation()), func() (interface{}, error) {
		if data, ok := cache.GetTyped[retailData](e.store, cache.BucketRetailOrders, "all"); ok {
			return data, nil
		}
		data, err := e.fetchRetail(ctx)
		if err != nil {
			return retailData{}, err
		}
		e.store.Set(cache.BucketRetailOrders, "all", data, e.retailTTL)
		return data, nil
	})
	if err != nil {
		return retailData{}, err
	}
	return v.(retailData), nil
}

func (e *Engine) fetchRetail(ctx context.Context) (retailData, error) {
	from, to := e.loadRange()

	processed, err := e.warehouse.ProcessedOrders(ctx, from, to)
	if err != nil {
		return retailData{}, err
	}

	shippingByID := make(map[string]string)
	var ids []string
	for _, po := range processed {
		if !normalize.IsRetail(po.PostalServiceName) {
			continue
		}
		ids = append(ids, po.PkOrderID)
		shippingByID[po.PkOrderID] = po.PostalServiceName
	}
	if len(ids) == 0 {
		return retailData{}, nil
	}

	details, err := e.warehouse.OrderDetails(ctx, ids)
	if err != nil {
		return retailData{}, err
	}

	var data retailData
	for _, detail := range details {
		order, err := normalize.FromWarehouseDetail(detail, shippingByID[detail.OrderID])
		if err != nil {
			data.Warnings = append(data.Warnings, domain.Warning{
				Kind: domain.WarnMalformedOrder, Detail: err.Error(),
			})
			continue
		}
		data.Records = append(data.Records, retailRecord{
			Order:   order,
			Revenue: decimal.NewFromFloat(detail.TotalsInfo.TotalCharge),
		})
	}
	sort.Slice(data.Records, func(i, j int) bool {
		return data.Records[i].Order.DispatchedAt.After(data.Records[j].Order.DispatchedAt)
	})
	log.Info().Int("retail", len(data.Records)).Msg("retail orders loaded")
	return data, nil
}

// RetailView computes the wholesale dashboard payload. Excluded accounts
// keep their revenue in the listing, store table and rollups; only the
// profitability sums omit them.
func (e *Engine) RetailView(ctx context.Context, filter domain.ViewFilter) (domain.RetailView, error) {
	data, err := e.loadRetail(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrTransientFetch) {
			log.Warn().Err(err).Msg("retail load failed, serving partial view")
			return domain.RetailView{
				Partial:    true,
				Generation: e.store.Generation(),
				Warnings: []domain.Warning{{
					Kind: domain.WarnPartialData, Detail: "warehouse data unavailable: " + err.Error(),
				}},
			}, nil
		}
		return domain.RetailView{}, err
	}

	view := domain.RetailView{
		Warnings:   data.Warnings,
		Partial:    data.Partial,
		Generation: e.store.Generation(),
	}

	excludedSeen := map[string]bool{}
	all := make([]domain.RetailOrderProfit, 0, len(data.Records))
	for _, rec := range data.Records {
		cases := rec.Order.TotalUnits
		rop := domain.RetailOrderProfit{
			Order:    rec.Order,
			Cases:    cases,
			Excluded: profit.ExcludedFromRetailProfit(rec.Order.CustomerName),
		}
		if rop.Excluded {
			// Excluded accounts keep their billed revenue in every sum;
			// only the cost model is withheld.
			rop.Profit = domain.RetailProfitability{Revenue: rec.Revenue}
			if !excludedSeen[rec.Order.CustomerName] {
				excludedSeen[rec.Order.CustomerName] = true
				view.Warnings = append(view.Warnings, domain.Warning{
					Kind:   domain.WarnExcludedAccount,
					Detail: rec.Order.CustomerName + " is excluded from profitability totals",
				})
			}
		} else {
			rop.Profit = profit.ComputeRetail(rec.Revenue, cases, rec.Order.TotalUnits)
		}
		all = append(all, rop)
	}

	stores, dupWarnings := period.StoreSummaries(all)
	view.Stores = stores
	view.Warnings = append(view.Warnings, dupWarnings...)
	view.Windows = period.RetailWindowRollups(e.now(), all)
	view.Orders = filterRetailOrders(all, filter)
	return view, nil
}

func filterRetailOrders(orders []domain.RetailOrderProfit, f domain.ViewFilter) []domain.RetailOrderProfit {
	out := make([]domain.RetailOrderProfit, 0, len(orders))
	for _, ro := range orders {
		t := ro.Order.DispatchedAt
		if !f.From.IsZero() && t.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !t.Before(f.To.AddDate(0, 0, 1)) {
			continue
		}
		out = append(out, ro)
	}
	return out
}

// GoPuffView computes the sales-feed dashboard payload. weekOffset shifts
// the weekly breakdown back that many ISO weeks from the feed's latest date.
func (e *Engine) GoPuffView(ctx context.Context, weekOffset int) (domain.GoPuffView, error) {
	rows, ok := cache.GetTyped[[]domain.SalesFeedRow](e.store, cache.BucketSalesFeed, "all")
	if !ok {
		v, err, _ := e.loads.Do(fmt.Sprintf("feed:g%d", e.store.Generation()), func() (interface{}, error) {
			if cached, ok := cache.GetTyped[[]domain.SalesFeedRow](e.store, cache.BucketSalesFeed, "all"); ok {
				return cached, nil
			}
			fetched, err := e.feed.Fetch(ctx)
			if err != nil {
				return nil, err
			}
			e.store.Set(cache.BucketSalesFeed, "all", fetched, e.feedTTL)
			log.Info().Int("rows", len(fetched)).Msg("sales feed loaded")
			return fetched, nil
		})
		if err != nil {
			if errors.Is(err, domain.ErrTransientFetch) {
				log.Warn().Err(err).Msg("sales feed unavailable, serving partial view")
				return domain.GoPuffView{
					Partial:    true,
					Warnings:   []domain.Warning{{Kind: domain.WarnPartialData, Detail: "sales feed unavailable: " + err.Error()}},
					Generation: e.store.Generation(),
				}, nil
			}
			return domain.GoPuffView{}, err
		}
		rows = v.([]domain.SalesFeedRow)
	}

	view := gopuff.BuildView(rows, weekOffset)
	view.Generation = e.store.Generation()
	return view, nil
}
