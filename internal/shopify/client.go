package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/homecooks/profitboard/internal/config"
	"github.com/homecooks/profitboard/internal/domain"
)

const (
	pageLimit     = 250
	idBatchSize   = 50
	maxRetries    = 5
	orderFields   = "id,name,created_at,processed_at,total_price,total_discounts," +
		"subtotal_price,total_shipping_price_set,total_tax,currency," +
		"current_subtotal_price,current_total_discounts,line_items,fulfillments," +
		"discount_codes,discount_applications,customer,shipping_address,billing_address"
)

var nextLinkRe = regexp.MustCompile(`<([^>]+)>`)

// Client talks to the storefront Admin API. It owns pagination and
// rate-limit backoff; callers see either a full result or a transient fetch
// error after retries are exhausted.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	sleep      func(time.Duration)
}

func NewClient(cfg config.ShopifyConfig) *Client {
	domainName := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(cfg.StoreDomain, "https://"), "http://"), "/")
	return &Client{
		baseURL:    fmt.Sprintf("https://%s/admin/api/%s", domainName, cfg.APIVersion),
		token:      cfg.AccessToken,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		sleep:      time.Sleep,
	}
}

// SetBaseURL overrides the API base URL (used by tests).
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, http.Header, error) {
	var lastStatus int
	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("X-Shopify-Access-Token", c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, nil, domain.TransientFetch("shopify", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, nil, domain.TransientFetch("shopify", err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastStatus = resp.StatusCode
			c.sleep(retryAfter(resp.Header))
			continue
		case resp.StatusCode >= 500:
			lastStatus = resp.StatusCode
			c.sleep(time.Duration(attempt+1) * time.Second)
			continue
		case resp.StatusCode == http.StatusNotFound:
			return nil, resp.Header, errNotFound
		case resp.StatusCode != http.StatusOK:
			return nil, resp.Header, fmt.Errorf("shopify: unexpected status %d: %s", resp.StatusCode, body)
		}

		return body, resp.Header, nil
	}
	return nil, nil, domain.TransientFetch("shopify", fmt.Errorf("retries exhausted, last status %d", lastStatus))
}

var errNotFound = fmt.Errorf("shopify: not found")

func retryAfter(h http.Header) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration((secs+0.5)*1000) * time.Millisecond
		}
	}
	return 2 * time.Second
}

// nextPageURL extracts the rel="next" target from a Link header, empty when
// there is no further page.
func nextPageURL(linkHeader string) string {
	for _, part := range strings.Split(linkHeader, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		if m := nextLinkRe.FindStringSubmatch(part); m != nil {
			return m[1]
		}
	}
	return ""
}

// Orders fetches all orders created in [from, to], walking every page.
func (c *Client) Orders(ctx context.Context, from, to time.Time) ([]RawOrder, error) {
	params := url.Values{}
	params.Set("status", "any")
	params.Set("limit", strconv.Itoa(pageLimit))
	params.Set("fields", orderFields)
	params.Set("created_at_min", from.Format(time.RFC3339))
	params.Set("created_at_max", to.Format(time.RFC3339))

	return c.paginateOrders(ctx, c.baseURL+"/orders.json?"+params.Encode())
}

// OrdersByIDs fetches specific orders, batching ids to the API limit.
func (c *Client) OrdersByIDs(ctx context.Context, ids []int64) ([]RawOrder, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var out []RawOrder
	for start := 0; start < len(sorted); start += idBatchSize {
		end := start + idBatchSize
		if end > len(sorted) {
			end = len(sorted)
		}
		strs := make([]string, 0, end-start)
		for _, id := range sorted[start:end] {
			strs = append(strs, strconv.FormatInt(id, 10))
		}

		params := url.Values{}
		params.Set("ids", strings.Join(strs, ","))
		params.Set("status", "any")
		params.Set("limit", strconv.Itoa(pageLimit))
		params.Set("fields", orderFields)

		batch, err := c.paginateOrders(ctx, c.baseURL+"/orders.json?"+params.Encode())
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (c *Client) paginateOrders(ctx context.Context, first string) ([]RawOrder, error) {
	var out []RawOrder
	next := first
	for next != "" {
		body, headers, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}
		var page ordersResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("shopify: decode orders page: %w", err)
		}
		out = append(out, page.Orders...)
		next = nextPageURL(headers.Get("Link"))
	}
	return out, nil
}

// VariantCosts resolves unit costs for a set of variants. A variant that
// cannot be found, or whose inventory item carries no cost, comes back with
// Found=false; only transport-level failures return an error.
func (c *Client) VariantCosts(ctx context.Context, variantIDs []int64) (map[int64]domain.VariantCost, error) {
	out := make(map[int64]domain.VariantCost, len(variantIDs))
	for _, id := range variantIDs {
		cost, found, err := c.variantCost(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = domain.VariantCost{VariantID: id, UnitCost: cost, Found: found}
		if !found {
			log.Debug().Int64("variant_id", id).Msg("shopify: variant has no resolvable cost")
		}
	}
	return out, nil
}

func (c *Client) variantCost(ctx context.Context, variantID int64) (decimal.Decimal, bool, error) {
	body, _, err := c.get(ctx, fmt.Sprintf("%s/variants/%d.json", c.baseURL, variantID))
	if err == errNotFound {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}

	var vr variantResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return decimal.Zero, false, fmt.Errorf("shopify: decode variant: %w", err)
	}
	if vr.Variant == nil || vr.Variant.InventoryItemID == 0 {
		return decimal.Zero, false, nil
	}

	body, _, err = c.get(ctx, fmt.Sprintf("%s/inventory_items/%d.json", c.baseURL, vr.Variant.InventoryItemID))
	if err == errNotFound {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}

	var ir inventoryItemResponse
	if err := json.Unmarshal(body, &ir); err != nil {
		return decimal.Zero, false, fmt.Errorf("shopify: decode inventory item: %w", err)
	}
	if ir.InventoryItem == nil || ir.InventoryItem.Cost == "" {
		return decimal.Zero, false, nil
	}

	cost, err := decimal.NewFromString(ir.InventoryItem.Cost)
	if err != nil {
		return decimal.Zero, false, nil
	}
	return cost, true, nil
}
