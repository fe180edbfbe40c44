package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecooks/profitboard/internal/config"
	"github.com/homecooks/profitboard/internal/domain"
)

func newTestClient(serverURL string) (*Client, *[]time.Duration) {
	c := NewClient(config.ShopifyConfig{StoreDomain: "test.myshopify.com", AccessToken: "tok", APIVersion: "2024-07"})
	c.SetBaseURL(serverURL)
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }
	return c, &slept
}

func TestOrdersFollowsLinkHeader(t *testing.T) {
	var pageTwoURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/orders.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get("X-Shopify-Access-Token"))
		if r.URL.Query().Get("page_info") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, pageTwoURL))
			fmt.Fprint(w, `{"orders":[{"id":1,"name":"#1"},{"id":2,"name":"#2"}]}`)
			return
		}
		fmt.Fprint(w, `{"orders":[{"id":3,"name":"#3"}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	pageTwoURL = srv.URL + "/orders.json?page_info=abc"

	c, _ := newTestClient(srv.URL)
	orders, err := c.Orders(context.Background(), time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, int64(3), orders[2].ID)
}

func TestOrdersRetriesOnRateLimit(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "1.0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"orders":[{"id":1,"name":"#1"}]}`)
	}))
	defer srv.Close()

	c, slept := newTestClient(srv.URL)
	orders, err := c.Orders(context.Background(), time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 2, attempts)
	require.Len(t, *slept, 1)
	assert.Equal(t, 1500*time.Millisecond, (*slept)[0], "Retry-After is honored with headroom")
}

func TestOrdersExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, slept := newTestClient(srv.URL)
	_, err := c.Orders(context.Background(), time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransientFetch)
	assert.Len(t, *slept, maxRetries)
}

func TestOrdersByIDsBatches(t *testing.T) {
	var idParams []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idParams = append(idParams, r.URL.Query().Get("ids"))
		fmt.Fprint(w, `{"orders":[]}`)
	}))
	defer srv.Close()

	ids := make([]int64, 120)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	c, _ := newTestClient(srv.URL)
	_, err := c.OrdersByIDs(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, idParams, 3, "120 ids should take three batches of 50")
	assert.Contains(t, idParams[0], "1,")
	assert.Contains(t, idParams[2], "120")
}

func TestVariantCostsResolvesChain(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/variants/1.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"variant":{"id":1,"inventory_item_id":77}}`)
	})
	mux.HandleFunc("/inventory_items/77.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"inventory_item":{"id":77,"cost":"5.00"}}`)
	})
	mux.HandleFunc("/variants/2.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	costs, err := c.VariantCosts(context.Background(), []int64{1, 2})
	require.NoError(t, err)

	require.True(t, costs[1].Found)
	assert.Equal(t, "5", costs[1].UnitCost.String())

	assert.False(t, costs[2].Found, "missing variants come back flagged, not as errors")
}

func TestVariantCostsNoCostOnInventoryItem(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/variants/1.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"variant":{"id":1,"inventory_item_id":77}}`)
	})
	mux.HandleFunc("/inventory_items/77.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"inventory_item":{"id":77,"cost":""}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	costs, err := c.VariantCosts(context.Background(), []int64{1})
	require.NoError(t, err)
	assert.False(t, costs[1].Found)
}

func TestNextPageURL(t *testing.T) {
	link := `<https://x.myshopify.com/admin/api/2024-07/orders.json?page_info=prev>; rel="previous", ` +
		`<https://x.myshopify.com/admin/api/2024-07/orders.json?page_info=next>; rel="next"`
	assert.Equal(t, "https://x.myshopify.com/admin/api/2024-07/orders.json?page_info=next", nextPageURL(link))
	assert.Equal(t, "", nextPageURL(`<https://x.myshopify.com/orders.json>; rel="previous"`))
	assert.Equal(t, "", nextPageURL(""))
}
