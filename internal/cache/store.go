// Package cache holds the process-local, generation-tagged memoization layer
// that sits between the engine and the external APIs. A single monotonic
// generation counter identifies a consistent snapshot of every cached input;
// clearing the cache or crossing the daily refresh boundary bumps the
// generation, which atomically invalidates all buckets at once so a reader
// can never observe fresh orders against stale costs.
package cache

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/homecooks/profitboard/internal/domain"
)

// Bucket names one cached input class.
type Bucket string

const (
	BucketD2COrders    Bucket = "d2c_orders"
	BucketRetailOrders Bucket = "retail_orders"
	BucketVariantCosts Bucket = "variant_costs"
	BucketSalesFeed    Bucket = "sales_feed"
)

type entry struct {
	value    interface{}
	gen      uint64
	storedAt time.Time
	ttl      time.Duration
}

// Store is the in-memory cache. The daily refresh is not a timer: it is the
// lazy predicate "has today's refresh boundary passed since the last bump,"
// evaluated on every access.
type Store struct {
	mu          sync.Mutex
	gen         uint64
	lastBump    time.Time
	refreshHour int
	now         func() time.Time
	entries     map[Bucket]map[string]entry
	touched     map[Bucket]time.Time
}

// NewStore builds a store whose daily rollover fires at refreshHour local
// time. The clock is injectable for tests; pass nil for time.Now.
func NewStore(refreshHour int, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		gen:         1,
		lastBump:    now(),
		refreshHour: refreshHour,
		now:         now,
		entries:     make(map[Bucket]map[string]entry),
		touched:     make(map[Bucket]time.Time),
	}
}

// maybeRollover bumps the generation when the current time has passed
// today's refresh boundary and the last bump happened before it. Callers
// must hold mu.
func (s *Store) maybeRollover() {
	nowT := s.now()
	boundary := time.Date(nowT.Year(), nowT.Month(), nowT.Day(), s.refreshHour, 0, 0, 0, nowT.Location())
	if !nowT.Before(boundary) && s.lastBump.Before(boundary) {
		s.bumpLocked()
		log.Info().Uint64("generation", s.gen).Msg("cache: daily refresh boundary crossed")
	}
}

func (s *Store) bumpLocked() {
	s.gen++
	s.lastBump = s.now()
}

// Generation returns the current cache generation, applying the lazy daily
// rollover first.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maybeRollover()
	return s.gen
}

// Bump forces a new generation, invalidating every prior entry in every
// bucket at once.
func (s *Store) Bump() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bumpLocked()
	return s.gen
}

// Get returns the cached value for (bucket, key) if it was stored under the
// current generation and its TTL has not lapsed.
func (s *Store) Get(b Bucket, key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maybeRollover()

	e, ok := s.entries[b][key]
	if !ok || e.gen != s.gen {
		return nil, false
	}
	if e.ttl > 0 && s.now().Sub(e.storedAt) > e.ttl {
		delete(s.entries[b], key)
		return nil, false
	}
	return e.value, true
}

// Set stores a value under the current generation.
func (s *Store) Set(b Bucket, key string, value interface{}, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maybeRollover()

	if s.entries[b] == nil {
		s.entries[b] = make(map[string]entry)
	}
	s.entries[b][key] = entry{value: value, gen: s.gen, storedAt: s.now(), ttl: ttl}
	s.touched[b] = s.now()
}

// GetTyped is Get with the type assertion folded in.
func GetTyped[T any](s *Store, b Bucket, key string) (T, bool) {
	var zero T
	v, ok := s.Get(b, key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Status reports per-bucket last-refresh timestamps for UI display.
func (s *Store) Status() domain.CacheStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maybeRollover()

	buckets := make(map[string]time.Time, len(s.touched))
	for b, t := range s.touched {
		buckets[string(b)] = t
	}
	return domain.CacheStatus{
		Generation:  s.gen,
		LastCleared: s.lastBump,
		Buckets:     buckets,
	}
}
