// Package yahoo fetches current quotes for TSE stocks from the Yahoo
// Finance chart API. Tickers are the 4-digit code with a .T suffix.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/3vaseline3-ai/yuutai-site/internal/prices"
	"github.com/3vaseline3-ai/yuutai-site/pkg/httputil"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
	"github.com/3vaseline3-ai/yuutai-site/pkg/redis"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client handles communication with the Yahoo Finance chart API
// ⭐ SSOT: 株価の取得はこのクライアントからのみ
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	cache      *redis.Cache
	cacheTTL   time.Duration
}

// NewClient creates a Yahoo Finance client. cache may be nil or
// disabled; lookups then always hit the API.
func NewClient(httpClient *httputil.Client, log *logger.Logger, cache *redis.Cache) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    defaultBaseURL,
		cache:      cache,
		cacheTTL:   10 * time.Minute,
	}
}

// WithBaseURL overrides the API endpoint, for tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// chartResponse is the subset of the chart API payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchPrice returns the current market price of one code.
func (c *Client) FetchPrice(ctx context.Context, code string) (float64, error) {
	if c.cache != nil {
		var cached float64
		if ok, _ := c.cache.Get(ctx, "price:"+code, &cached); ok {
			return cached, nil
		}
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s.T", c.baseURL, code)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("chart API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %w", err)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return 0, fmt.Errorf("failed to decode chart response: %w", err)
	}

	if chart.Chart.Error != nil {
		return 0, fmt.Errorf("chart API error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return 0, fmt.Errorf("empty chart result for %s", code)
	}

	price := chart.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("no market price for %s", code)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, "price:"+code, price, c.cacheTTL); err != nil {
			c.logger.WithError(err).Debug("Price cache write failed")
		}
	}

	return price, nil
}

// FetchAll fetches every code's price, sorted code order. Codes that
// fail are logged and skipped; a partial lookup is still useful.
func (c *Client) FetchAll(ctx context.Context, codes []string) (prices.Lookup, []string) {
	sorted := make([]string, len(codes))
	copy(sorted, codes)
	sort.Strings(sorted)

	lookup := make(prices.Lookup, len(sorted))
	var failed []string

	for _, code := range sorted {
		price, err := c.FetchPrice(ctx, code)
		if err != nil {
			c.logger.WithField("code", code).WithError(err).Warn("Price fetch failed")
			failed = append(failed, code)
			continue
		}
		lookup[code] = price
	}

	c.logger.WithFields(map[string]interface{}{
		"fetched": len(lookup),
		"failed":  len(failed),
	}).Info("Price fetch completed")

	return lookup, failed
}
