package linnworks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/homecooks/profitboard/internal/config"
	"github.com/homecooks/profitboard/internal/domain"
)

const (
	searchPageSize  = 500
	detailBatchSize = 50
	pagePause       = 200 * time.Millisecond
)

// Client talks to the warehouse API. Authentication issues a session token
// and a per-account server base URL; both are cached for the client's
// lifetime and re-established on demand.
type Client struct {
	cfg        config.LinnworksConfig
	httpClient *http.Client
	sleep      func(time.Duration)

	mu     sync.Mutex
	token  string
	server string
}

func NewClient(cfg config.LinnworksConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		sleep:      time.Sleep,
	}
}

// SetSession primes the session token and server URL (used by tests).
func (c *Client) SetSession(token, server string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.server = server
}

func (c *Client) session(ctx context.Context) (string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, c.server, nil
	}

	form := url.Values{}
	form.Set("applicationId", c.cfg.AppID)
	form.Set("applicationSecret", c.cfg.AppSecret)
	form.Set("token", c.cfg.InstallToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.AuthURL+"/api/Auth/AuthorizeByApplication", strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", domain.TransientFetch("linnworks", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", domain.TransientFetch("linnworks", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", domain.TransientFetch("linnworks",
			fmt.Errorf("auth status %d: %s", resp.StatusCode, body))
	}

	var auth authResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return "", "", fmt.Errorf("linnworks: decode auth response: %w", err)
	}
	if auth.Token == "" {
		return "", "", domain.TransientFetch("linnworks", fmt.Errorf("auth returned empty token"))
	}

	c.token = auth.Token
	c.server = auth.Server
	if c.server == "" {
		c.server = "https://eu-ext.linnworks.net"
	}
	return c.token, c.server, nil
}

// ProcessedOrders pages through every order the warehouse processed in
// [from, to].
func (c *Client) ProcessedOrders(ctx context.Context, from, to time.Time) ([]ProcessedOrder, error) {
	token, server, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	var all []ProcessedOrder
	for pageNum := 1; ; pageNum++ {
		form := url.Values{}
		form.Set("from", from.Format("01-02-2006")+" 00:00:00")
		form.Set("to", to.Format("01-02-2006")+" 23:59:59")
		form.Set("dateType", "PROCESSED")
		form.Set("searchField", "")
		form.Set("exactMatch", "false")
		form.Set("searchTerm", "")
		form.Set("pageNum", strconv.Itoa(pageNum))
		form.Set("numEntriesPerPage", strconv.Itoa(searchPageSize))

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			server+"/api/ProcessedOrders/SearchProcessedOrdersPaged", strings.NewReader(form.Encode()))
		if err != nil {
			return nil, fmt.Errorf("build search request: %w", err)
		}
		req.Header.Set("Authorization", token)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, domain.TransientFetch("linnworks", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, domain.TransientFetch("linnworks", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, domain.TransientFetch("linnworks",
				fmt.Errorf("search status %d: %s", resp.StatusCode, body))
		}

		var page processedOrdersPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("linnworks: decode search page: %w", err)
		}
		if len(page.Data) == 0 {
			break
		}
		all = append(all, page.Data...)
		if len(all) >= page.TotalEntries {
			break
		}
		c.sleep(pagePause)
	}

	log.Debug().Int("count", len(all)).
		Time("from", from).Time("to", to).
		Msg("linnworks: fetched processed orders")
	return all, nil
}

// OrderDetails fetches full order payloads by internal order id, batching to
// the API limit.
func (c *Client) OrderDetails(ctx context.Context, pkOrderIDs []string) ([]OrderDetail, error) {
	token, server, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	var out []OrderDetail
	for start := 0; start < len(pkOrderIDs); start += detailBatchSize {
		end := start + detailBatchSize
		if end > len(pkOrderIDs) {
			end = len(pkOrderIDs)
		}

		payload, err := json.Marshal(map[string][]string{"pkOrderIds": pkOrderIDs[start:end]})
		if err != nil {
			return nil, fmt.Errorf("encode detail request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			server+"/api/Orders/GetOrdersById", strings.NewReader(string(payload)))
		if err != nil {
			return nil, fmt.Errorf("build detail request: %w", err)
		}
		req.Header.Set("Authorization", token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, domain.TransientFetch("linnworks", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, domain.TransientFetch("linnworks", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, domain.TransientFetch("linnworks",
				fmt.Errorf("detail status %d: %s", resp.StatusCode, body))
		}

		var batch []OrderDetail
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("linnworks: decode order details: %w", err)
		}
		out = append(out, batch...)
	}
	return out, nil
}
