// Package investjp downloads and parses the per-month entitlement
// pages of invest-jp.net: benefit tiers, borrow-cost history, dividend
// history and regulation status per stock.
package investjp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/3vaseline3-ai/yuutai-site/pkg/httputil"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

// detailLinkRe extracts stock codes from the month index page.
var detailLinkRe = regexp.MustCompile(`/yuutai/detail/(\d+)`)

// Client handles communication with invest-jp.net
// ⭐ SSOT: invest-jpへのアクセスはこのクライアントからのみ
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	cacheDir   string
}

// NewClient creates an invest-jp client. Pages land under
// cacheDir/MM/{code}.html so parsing can run offline.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL, cacheDir string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
		cacheDir:   cacheDir,
	}
}

// ExtractStockCodes pulls the stock codes out of a month index page,
// first occurrence order, duplicates removed.
func ExtractStockCodes(html string) []string {
	matches := detailLinkRe.FindAllStringSubmatch(html, -1)

	seen := make(map[string]bool, len(matches))
	var codes []string
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		codes = append(codes, m[1])
	}
	return codes
}

// DownloadResult summarizes one month's download run.
type DownloadResult struct {
	Month      int
	Codes      []string
	Downloaded int
	Skipped    int
	Failed     int
}

// DownloadMonth fetches the month index, extracts the stock codes and
// downloads each detail page into the month's cache directory. Cached
// pages are skipped unless force is set. The client's access interval
// spaces the requests.
func (c *Client) DownloadMonth(ctx context.Context, month int, force bool) (*DownloadResult, error) {
	monthDir := filepath.Join(c.cacheDir, fmt.Sprintf("%02d", month))
	if err := os.MkdirAll(monthDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	indexURL := fmt.Sprintf("%s/yuutai/index/%d", c.baseURL, month)
	html, err := c.httpClient.GetString(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch month index: %w", err)
	}

	codes := ExtractStockCodes(html)
	c.logger.WithFields(map[string]interface{}{
		"month": month,
		"codes": len(codes),
	}).Info("Month index fetched")

	result := &DownloadResult{Month: month, Codes: codes}

	for _, code := range codes {
		outFile := filepath.Join(monthDir, code+".html")

		if !force {
			if _, err := os.Stat(outFile); err == nil {
				result.Skipped++
				continue
			}
		}

		detailURL := fmt.Sprintf("%s/yuutai/detail/%s", c.baseURL, code)
		detailHTML, err := c.httpClient.GetString(ctx, detailURL)
		if err != nil {
			c.logger.WithField("code", code).WithError(err).Warn("Detail page fetch failed")
			result.Failed++
			continue
		}

		if err := os.WriteFile(outFile, []byte(detailHTML), 0o644); err != nil {
			return result, fmt.Errorf("failed to write %s: %w", outFile, err)
		}
		result.Downloaded++
	}

	return result, nil
}

// DownloadAll downloads every settlement month (1-12).
func (c *Client) DownloadAll(ctx context.Context, force bool) ([]*DownloadResult, error) {
	results := make([]*DownloadResult, 0, 12)
	for month := 1; month <= 12; month++ {
		res, err := c.DownloadMonth(ctx, month, force)
		if err != nil {
			return results, fmt.Errorf("month %d: %w", month, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// MonthCacheDir returns the cache directory of a month's detail pages.
func (c *Client) MonthCacheDir(month int) string {
	return filepath.Join(c.cacheDir, fmt.Sprintf("%02d", month))
}
