/**
 * @description
 * This package provides a client for the open exchange-rate API used for
 * wallet summary conversion. Rate tables are cached in memory for an hour
 * per base currency; summary math tolerates stale rates, so the cache favors
 * availability over freshness.
 *
 * @dependencies
 * - context, encoding/json, fmt, net/http, sync, time: Standard Go libraries.
 */
package currencyclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const cacheTTL = time.Hour

// Client fetches and caches exchange rates.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu    sync.Mutex
	cache map[string]cachedRates
}

type cachedRates struct {
	rates     map[string]float64
	fetchedAt time.Time
}

type ratesResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// NewClient creates a new exchange-rate client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: make(map[string]cachedRates),
	}
}

// Rate returns the multiplier converting one unit of `from` into `to`.
func (c *Client) Rate(ctx context.Context, from, to string) (float64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return 1, nil
	}

	rates, err := c.ratesFor(ctx, from)
	if err != nil {
		return 0, err
	}
	rate, ok := rates[to]
	if !ok {
		return 0, fmt.Errorf("no rate from %s to %s", from, to)
	}
	return rate, nil
}

func (c *Client) ratesFor(ctx context.Context, base string) (map[string]float64, error) {
	c.mu.Lock()
	if cached, ok := c.cache[base]; ok && time.Since(cached.fetchedAt) < cacheTTL {
		c.mu.Unlock()
		return cached.rates, nil
	}
	c.mu.Unlock()

	url := fmt.Sprintf("%s/latest/%s", c.BaseURL, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange rate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange rate api returned status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Result != "success" || len(body.Rates) == 0 {
		return nil, fmt.Errorf("exchange rate api returned result %q", body.Result)
	}

	c.mu.Lock()
	c.cache[base] = cachedRates{rates: body.Rates, fetchedAt: time.Now()}
	c.mu.Unlock()
	return body.Rates, nil
}
