package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told to.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }
func (f *fakeClock) Set(t time.Time)         { f.now = t }
func newClock(t time.Time) *fakeClock        { return &fakeClock{now: t} }

func TestStoreSetGet(t *testing.T) {
	clock := newClock(time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC))
	s := NewStore(8, clock.Now)

	s.Set(BucketD2COrders, "all", "payload", time.Minute)

	got, ok := s.Get(BucketD2COrders, "all")
	require.True(t, ok)
	assert.Equal(t, "payload", got)

	_, ok = s.Get(BucketRetailOrders, "all")
	assert.False(t, ok, "buckets are independent")
}

func TestStoreTTLExpiry(t *testing.T) {
	clock := newClock(time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC))
	s := NewStore(8, clock.Now)

	s.Set(BucketVariantCosts, "v1", 42, 5*time.Minute)

	clock.Advance(4 * time.Minute)
	_, ok := s.Get(BucketVariantCosts, "v1")
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	_, ok = s.Get(BucketVariantCosts, "v1")
	assert.False(t, ok, "entry must lapse after its TTL")
}

func TestStoreBumpInvalidatesEverything(t *testing.T) {
	clock := newClock(time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC))
	s := NewStore(8, clock.Now)

	s.Set(BucketD2COrders, "all", "orders", time.Hour)
	s.Set(BucketVariantCosts, "v1", 42, time.Hour)
	s.Set(BucketSalesFeed, "all", "feed", time.Hour)

	gen := s.Generation()
	newGen := s.Bump()
	assert.Equal(t, gen+1, newGen)

	for _, b := range []Bucket{BucketD2COrders, BucketVariantCosts, BucketSalesFeed} {
		_, ok := s.Get(b, mapKey(b))
		assert.False(t, ok, "bucket %s should be invalidated", b)
	}
}

func mapKey(b Bucket) string {
	if b == BucketVariantCosts {
		return "v1"
	}
	return "all"
}

func TestStoreDailyRollover(t *testing.T) {
	// Stored at 07:30, before the 8am boundary.
	clock := newClock(time.Date(2026, 3, 12, 7, 30, 0, 0, time.UTC))
	s := NewStore(8, clock.Now)
	s.Set(BucketD2COrders, "all", "orders", 24*time.Hour)
	gen := s.Generation()

	clock.Set(time.Date(2026, 3, 12, 7, 59, 0, 0, time.UTC))
	_, ok := s.Get(BucketD2COrders, "all")
	assert.True(t, ok)
	assert.Equal(t, gen, s.Generation())

	// Crossing 08:00 bumps lazily on the next access.
	clock.Set(time.Date(2026, 3, 12, 8, 1, 0, 0, time.UTC))
	assert.Equal(t, gen+1, s.Generation())
	_, ok = s.Get(BucketD2COrders, "all")
	assert.False(t, ok)

	// Only one bump per boundary.
	clock.Set(time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC))
	assert.Equal(t, gen+1, s.Generation())
}

func TestStoreRolloverAcrossDays(t *testing.T) {
	clock := newClock(time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC))
	s := NewStore(8, clock.Now)
	gen := s.Generation()

	// Next morning, before the boundary: nothing happens.
	clock.Set(time.Date(2026, 3, 13, 7, 0, 0, 0, time.UTC))
	assert.Equal(t, gen, s.Generation())

	// Past the boundary: one bump.
	clock.Set(time.Date(2026, 3, 13, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, gen+1, s.Generation())
}

func TestGetTyped(t *testing.T) {
	clock := newClock(time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC))
	s := NewStore(8, clock.Now)

	s.Set(BucketSalesFeed, "all", []int{1, 2, 3}, time.Minute)

	got, ok := GetTyped[[]int](s, BucketSalesFeed, "all")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, got)

	_, ok = GetTyped[string](s, BucketSalesFeed, "all")
	assert.False(t, ok, "type mismatch reads as a miss")
}

func TestStoreStatus(t *testing.T) {
	clock := newClock(time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC))
	s := NewStore(8, clock.Now)

	s.Set(BucketD2COrders, "all", "orders", time.Minute)

	status := s.Status()
	assert.Equal(t, uint64(1), status.Generation)
	assert.Contains(t, status.Buckets, string(BucketD2COrders))
	assert.NotContains(t, status.Buckets, string(BucketRetailOrders))
}
