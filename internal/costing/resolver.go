package costing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/homecooks/profitboard/internal/cache"
	"github.com/homecooks/profitboard/internal/domain"
)

// CostFetcher resolves unit costs for a set of variant ids against the
// storefront API. One call may resolve many variants; batch sizing is the
// fetcher's concern.
type CostFetcher interface {
	VariantCosts(ctx context.Context, variantIDs []int64) (map[int64]domain.VariantCost, error)
}

// Resolver is the cost lookup layer between the profit calculator and the
// storefront API. Resolved costs (including negative lookups) live in the
// variant_costs cache bucket for the configured TTL, and concurrent
// resolution of the same unresolved variant is coalesced so at most one
// fetch per variant is in flight.
type Resolver struct {
	fetcher CostFetcher
	store   *cache.Store
	ttl     time.Duration
	group   singleflight.Group
}

func NewResolver(fetcher CostFetcher, store *cache.Store, ttl time.Duration) *Resolver {
	return &Resolver{fetcher: fetcher, store: store, ttl: ttl}
}

// Snapshot resolves the given variant ids into an immutable cost snapshot.
// All profitability math for one refresh cycle reads from the returned
// snapshot, so a mid-cycle cache refresh cannot mix cost versions.
func (r *Resolver) Snapshot(ctx context.Context, variantIDs []int64) (domain.CostSnapshot, error) {
	gen := r.store.Generation()
	snap := make(domain.CostSnapshot, len(variantIDs))

	seen := make(map[int64]bool, len(variantIDs))
	var misses []int64
	for _, id := range variantIDs {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		if vc, ok := r.cached(id); ok {
			snap[id] = vc
		} else {
			misses = append(misses, id)
		}
	}
	if len(misses) == 0 {
		return snap, nil
	}
	sort.Slice(misses, func(i, j int) bool { return misses[i] < misses[j] })

	for _, id := range misses {
		id := id
		key := fmt.Sprintf("g%d:v%d", gen, id)
		v, err, _ := r.group.Do(key, func() (interface{}, error) {
			if vc, ok := r.cached(id); ok {
				return vc, nil
			}
			return r.fetchBatch(ctx, id, misses)
		})
		if err != nil {
			return nil, err
		}
		snap[id] = v.(domain.VariantCost)
	}
	return snap, nil
}

// fetchBatch fetches every still-uncached id from the current miss set in a
// single upstream call and stores the results, then returns the entry for
// want. Ids already filled in by a concurrent flight are skipped.
func (r *Resolver) fetchBatch(ctx context.Context, want int64, misses []int64) (domain.VariantCost, error) {
	pending := make([]int64, 0, len(misses))
	for _, id := range misses {
		if _, ok := r.cached(id); !ok {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		if vc, ok := r.cached(want); ok {
			return vc, nil
		}
		pending = []int64{want}
	}

	fetched, err := r.fetcher.VariantCosts(ctx, pending)
	if err != nil {
		return domain.VariantCost{}, domain.TransientFetch("storefront costs", err)
	}
	for _, id := range pending {
		vc, ok := fetched[id]
		if !ok {
			// Cache the miss too so it is not re-queried every order
			// within the generation.
			vc = domain.VariantCost{VariantID: id}
		}
		r.store.Set(cache.BucketVariantCosts, costKey(id), vc, r.ttl)
	}

	vc, ok := fetched[want]
	if !ok {
		vc = domain.VariantCost{VariantID: want}
	}
	return vc, nil
}

func (r *Resolver) cached(id int64) (domain.VariantCost, bool) {
	return cache.GetTyped[domain.VariantCost](r.store, cache.BucketVariantCosts, costKey(id))
}

func costKey(id int64) string {
	return fmt.Sprintf("v%d", id)
}
