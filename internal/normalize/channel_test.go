package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/homecooks/profitboard/internal/domain"
)

var (
	monday    = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	wednesday = time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	thursday  = time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	saturday  = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
)

func TestIsRetail(t *testing.T) {
	assert.True(t, IsRetail("No Shipping Required"))
	assert.True(t, IsRetail("no shipping required"))
	assert.True(t, IsRetail("  NO SHIPPING REQUIRED  "))

	assert.False(t, IsRetail("No Shipping"))
	assert.False(t, IsRetail("No Shipping Required - Express"), "match is exact, not substring")
	assert.False(t, IsRetail("Royal Mail Tracked 24"))
	assert.False(t, IsRetail(""))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		when     time.Time
		shipping string
		want     domain.Channel
	}{
		{"monday courier", monday, "Royal Mail Tracked 24", domain.ChannelD2C},
		{"thursday courier", thursday, "DPD Next Day", domain.ChannelD2C},
		{"wednesday courier", wednesday, "Royal Mail Tracked 24", domain.ChannelUnclassified},
		{"saturday courier", saturday, "DPD Next Day", domain.ChannelUnclassified},
		{"monday retail", monday, "No Shipping Required", domain.ChannelRetail},
		{"wednesday retail", wednesday, "no shipping required", domain.ChannelRetail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.when, tc.shipping))
		})
	}
}

func TestStoreName(t *testing.T) {
	assert.Equal(t, "Corner Shop (Sam Reed)", StoreName("Corner Shop", "Sam Reed"))
	assert.Equal(t, "Corner Shop", StoreName("Corner Shop", "corner shop"))
	assert.Equal(t, "Corner Shop", StoreName("Corner Shop", ""))
	assert.Equal(t, "Sam Reed", StoreName("", "Sam Reed"))
	assert.Equal(t, "Unknown Store", StoreName("", ""))
}

func TestCanonicalStoreName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"The Corner Shop Ltd", "the corner"},
		{"the corner shop", "the corner"},
		{"The Corner Shop, Limited", "the corner"},
		{"Village Stores", "village stores"},
		{"  Village   Stores  ", "village stores"},
		{"", "unknown"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanonicalStoreName(tc.in), "input %q", tc.in)
	}
}
