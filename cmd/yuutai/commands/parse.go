package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/3vaseline3-ai/yuutai-site/internal/external/investjp"
	"github.com/3vaseline3-ai/yuutai-site/internal/history"
	"github.com/3vaseline3-ai/yuutai-site/pkg/config"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "キャッシュ済み詳細ページの解析",
	Long: `data/html_cache/MM/ のキャッシュ済み詳細ページを解析し、
逆日歩履歴・配当履歴をCSVへ、銘柄情報を parsed_stocks.json へ保存します。

Example:
  go run ./cmd/yuutai parse --month 2
  go run ./cmd/yuutai parse --all`,
	RunE: runParse,
}

var (
	parseMonth int
	parseAll   bool
)

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().IntVar(&parseMonth, "month", 0, "対象の権利確定月 (1-12)")
	parseCmd.Flags().BoolVar(&parseAll, "all", false, "全月 (1-12) を解析")
}

func runParse(cmd *cobra.Command, args []string) error {
	if !parseAll && (parseMonth < 1 || parseMonth > 12) {
		return fmt.Errorf("specify --month 1-12 or --all")
	}

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Create history store
	histStore := history.NewStore(cfg.GyakuHibokuDir(), cfg.DividendDir())

	months := []int{parseMonth}
	if parseAll {
		months = months[:0]
		for m := 1; m <= 12; m++ {
			months = append(months, m)
		}
	}

	PrintHeader("詳細ページ解析")

	var all []*investjp.ParsedStock
	for _, month := range months {
		dir := filepath.Join(cfg.HTMLCacheDir(), fmt.Sprintf("%02d", month))
		stocks, err := investjp.ParseMonthDir(dir)
		if err != nil {
			log.WithField("month", month).WithError(err).Warn("Month parse failed")
			continue
		}

		for _, stock := range stocks {
			if err := histStore.SaveBorrowCosts(stock.Code, stock.BorrowCosts); err != nil {
				return fmt.Errorf("save borrow costs %s: %w", stock.Code, err)
			}
			if err := histStore.SaveDividends(stock.Code, stock.Dividends); err != nil {
				return fmt.Errorf("save dividends %s: %w", stock.Code, err)
			}
		}

		fmt.Printf("  📅 %2d月: %d銘柄\n", month, len(stocks))
		all = append(all, stocks...)
	}

	if len(all) == 0 {
		PrintWarning("解析対象のページがありません。先に download を実行してください")
		return nil
	}

	if err := saveParsedStocks(cfg.ParsedStocksJSON(), all); err != nil {
		return fmt.Errorf("save parsed stocks: %w", err)
	}

	PrintSuccess(fmt.Sprintf("解析完了: %d銘柄 -> %s", len(all), cfg.ParsedStocksJSON()))
	return nil
}

// saveParsedStocks merges the newly parsed stocks into the existing
// file so a single-month run never discards other months' data.
func saveParsedStocks(path string, stocks []*investjp.ParsedStock) error {
	byCode := make(map[string]*investjp.ParsedStock)

	if data, err := os.ReadFile(path); err == nil {
		var existing []*investjp.ParsedStock
		if err := json.Unmarshal(data, &existing); err == nil {
			for _, s := range existing {
				byCode[s.Code] = s
			}
		}
	}

	for _, s := range stocks {
		byCode[s.Code] = s
	}

	merged := make([]*investjp.ParsedStock, 0, len(byCode))
	for _, s := range byCode {
		merged = append(merged, s)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Code < merged[j].Code })

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// loadParsedStocks reads the parsed invest-jp output, empty when the
// file does not exist yet.
func loadParsedStocks(path string) ([]*investjp.ParsedStock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var stocks []*investjp.ParsedStock
	if err := json.Unmarshal(data, &stocks); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return stocks, nil
}
