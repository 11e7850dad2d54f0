// Package gokigen talks to the gokigen-life.tokyo inventory API and
// benefit pages: per-month general-margin sell inventory (在庫) and the
// theoretical maximum borrow cost per stock.
package gokigen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/3vaseline3-ai/yuutai-site/pkg/httputil"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

// maxGyakuRe extracts 逆日歩最大額 markers from a benefit page.
var maxGyakuRe = regexp.MustCompile(`逆日歩最大額[：:](\d+)円`)

// Client handles communication with gokigen-life.tokyo
// ⭐ SSOT: 在庫API・最大逆日歩の取得はこのクライアントからのみ
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a gokigen-life client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// RawItem is one record of the inventory API response, kept untyped
// because the API mixes strings, numbers and nulls per field.
type RawItem map[string]interface{}

// Str returns a field as a trimmed string, "" when absent or null.
func (r RawItem) Str(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Int parses a field as *int. Absent, null and malformed values are
// nil. Values of 100000000 and above are timestamps leaked into
// numeric columns by the source and are treated as absent.
func (r RawItem) Int(key string) *int {
	v, ok := r[key]
	if !ok || v == nil {
		return nil
	}

	var n int
	switch val := v.(type) {
	case float64:
		n = int(val)
	case string:
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}

	if n >= 100000000 {
		return nil
	}
	return &n
}

// Float parses a field as *float64, nil when absent or malformed.
func (r RawItem) Float(key string) *float64 {
	v, ok := r[key]
	if !ok || v == nil {
		return nil
	}

	switch val := v.(type) {
	case float64:
		return &val
	case string:
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}

// FetchZaiko posts the month to the inventory API and returns the raw
// records. The API prepends a dummy record with code 0000; it is
// dropped here.
func (c *Client) FetchZaiko(ctx context.Context, month int) ([]RawItem, error) {
	apiURL := fmt.Sprintf("%s/api/00ForWeb/ForZaiko2.php", c.baseURL)

	form := url.Values{}
	form.Set("month", strconv.Itoa(month))

	resp, err := c.httpClient.PostForm(ctx, apiURL, form)
	if err != nil {
		return nil, fmt.Errorf("inventory API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var items []RawItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode inventory response: %w", err)
	}

	filtered := make([]RawItem, 0, len(items))
	for _, item := range items {
		if code := item.Str("code"); code == "" || code == "0000" {
			continue
		}
		filtered = append(filtered, item)
	}

	c.logger.WithFields(map[string]interface{}{
		"month": month,
		"items": len(filtered),
	}).Info("Inventory fetched")

	return filtered, nil
}

// FetchMaxGyaku scrapes a stock's benefit page for the theoretical
// maximum borrow cost (円). The second return is false when the page
// carries no marker.
func (c *Client) FetchMaxGyaku(ctx context.Context, code string) (int, bool, error) {
	pageURL := fmt.Sprintf("%s/%syutai/", c.baseURL, code)

	html, err := c.httpClient.GetString(ctx, pageURL)
	if err != nil {
		return 0, false, fmt.Errorf("benefit page fetch failed: %w", err)
	}

	matches := maxGyakuRe.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		return 0, false, nil
	}

	// 複数記載がある場合は最大値
	max := 0
	for _, m := range matches {
		if v, err := strconv.Atoi(m[1]); err == nil && v > max {
			max = v
		}
	}
	return max, true, nil
}
