package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/3vaseline3-ai/yuutai-site/internal/perform"
	"github.com/3vaseline3-ai/yuutai-site/internal/pipeline"
	"github.com/3vaseline3-ai/yuutai-site/internal/ranking"
	"github.com/3vaseline3-ai/yuutai-site/pkg/config"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

// performCmd represents the perform command
var performCmd = &cobra.Command{
	Use:   "perform",
	Short: "優待クロス パフォーマンス計算",
	Long: `レジストリの全銘柄についてパフォーマンスを計算し、
降順で表示します。

パフォーマンス = (優待価値÷株数 - 逆日歩 + 配当×0.15315) ÷ 株価 × 100

Example:
  go run ./cmd/yuutai perform --month 2
  go run ./cmd/yuutai perform --month 2 --limit 20
  go run ./cmd/yuutai perform --json`,
	RunE: runPerform,
}

var (
	performMonth int
	performLimit int
	performJSON  bool
)

func init() {
	rootCmd.AddCommand(performCmd)

	performCmd.Flags().IntVar(&performMonth, "month", 0, "権利確定月 (0=全月)")
	performCmd.Flags().IntVar(&performLimit, "limit", 0, "表示件数 (0=全件)")
	performCmd.Flags().BoolVar(&performJSON, "json", false, "JSONで出力")
}

func runPerform(cmd *cobra.Command, args []string) error {
	if performMonth < 0 || performMonth > 12 {
		return fmt.Errorf("--month must be 0-12")
	}

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Build pipeline and compute
	p := pipeline.New(cfg, log)
	results, err := p.Results(performMonth)
	if err != nil {
		return fmt.Errorf("compute results: %w", err)
	}

	results = ranking.Top(results, performLimit)

	if performJSON {
		displays := make([]perform.Display, len(results))
		for i, r := range results {
			displays[i] = r.Display()
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(displays)
	}

	if performMonth == 0 {
		PrintHeader("パフォーマンス計算（全月）")
	} else {
		PrintHeader(fmt.Sprintf("パフォーマンス計算（%d月）", performMonth))
	}

	if len(results) == 0 {
		PrintWarning("計算対象がありません。在庫スナップショットとレジストリを確認してください")
		return nil
	}

	fmt.Printf("%-6s %-14s %3s %8s %8s %9s %7s %7s %9s %4s\n",
		"コード", "銘柄名", "月", "株価", "株数", "優待価値", "逆日歩", "配当", "パフォ", "規制")
	PrintSeparator()

	for _, r := range results {
		d := r.Display()
		fmt.Printf("%-6s %-14s %3d %8.0f %8s %9.0f %7.2f %7.2f %8.4f%% %4s\n",
			d.Code, truncateName(d.Name, 14), d.SettlementMonth, d.Price,
			d.SharesDisplay, d.Value, d.BorrowCost, d.Dividend,
			d.Performance, d.Restriction)
	}

	PrintSeparator()
	fmt.Printf("  %d件\n", len(results))
	return nil
}

// truncateName limits a display name by rune count so wide characters
// never break the table layout.
func truncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max-1]) + "…"
}
