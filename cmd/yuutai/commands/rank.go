package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/3vaseline3-ai/yuutai-site/internal/calendar"
	"github.com/3vaseline3-ai/yuutai-site/internal/inventory"
	"github.com/3vaseline3-ai/yuutai-site/internal/ranking"
	"github.com/3vaseline3-ai/yuutai-site/internal/registry"
	"github.com/3vaseline3-ai/yuutai-site/pkg/config"
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "月利回りランキング",
	Long: `在庫のある銘柄を月利回りで順位付けします。

月利回り = (1株優待価値 - 金利) ÷ 株価 × 100 ÷ 月末をまたぐ回数

--month を省略すると全月のサマリーを表示します。

Example:
  go run ./cmd/yuutai rank --month 2
  go run ./cmd/yuutai rank --month 2 --limit 10
  go run ./cmd/yuutai rank`,
	RunE: runRank,
}

var (
	rankMonth int
	rankLimit int
)

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().IntVar(&rankMonth, "month", 0, "権利確定月 (0=全月サマリー)")
	rankCmd.Flags().IntVar(&rankLimit, "limit", 20, "表示件数 (0=全件)")
}

func runRank(cmd *cobra.Command, args []string) error {
	if rankMonth < 0 || rankMonth > 12 {
		return fmt.Errorf("--month must be 0-12")
	}

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Load registry and snapshots
	reg, err := registry.Load(cfg.KachiCSV())
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	store := inventory.NewStore(cfg.ZaikoDir())
	ranker := ranking.NewRanker(cfg.InterestRate)
	currentMonth := int(calendar.Now().Month())

	if rankMonth == 0 {
		return rankSummary(store, reg, ranker, currentMonth)
	}

	snap, err := store.LoadLatest(rankMonth)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		PrintWarning(fmt.Sprintf("%d月の在庫スナップショットがありません。fetch zaiko を実行してください", rankMonth))
		return nil
	}

	entries := ranker.MonthlyRanking(snap, reg, rankMonth, currentMonth, rankLimit)

	PrintHeader(fmt.Sprintf("📊 %d月 月利回りランキング (在庫日: %s)", rankMonth, snap.Stamp))

	if len(entries) == 0 {
		PrintWarning("在庫のある登録銘柄がありません")
		return nil
	}

	fmt.Printf("%4s %6s %-14s %8s %6s %9s\n",
		"順位", "コード", "銘柄名", "月利回り", "株価", "月またぎ")
	PrintSeparator()

	for i, e := range entries {
		fmt.Printf("%4d %6s %-14s %7.4f%% %6d %8d回\n",
			i+1, e.Code, truncateName(e.Name, 14), e.MonthlyYield, e.Price, e.Months)
	}

	PrintSeparator()
	fmt.Printf("💡 https://3vaseline3-ai.github.io/yuutai-site/%02d.html\n", rankMonth)
	return nil
}

// rankSummary prints a per-month overview: entry counts and top yield
// with a small bar chart.
func rankSummary(store *inventory.Store, reg registry.Registry, ranker *ranking.Ranker, currentMonth int) error {
	PrintHeader("📊 月利回りランキング サマリー（全月）")

	fmt.Printf("%3s %6s %10s %-16s\n", "月", "銘柄数", "最高利回り", "")
	PrintSeparator()

	for month := 1; month <= 12; month++ {
		snap, err := store.LoadLatest(month)
		if err != nil || snap == nil {
			fmt.Printf("%2d月 %6s %10s\n", month, "-", "-")
			continue
		}

		entries := ranker.MonthlyRanking(snap, reg, month, currentMonth, 0)
		if len(entries) == 0 {
			fmt.Printf("%2d月 %6d %10s\n", month, 0, "-")
			continue
		}

		top := entries[0].MonthlyYield
		bars := int(top * 10)
		if bars < 0 {
			bars = 0
		}
		if bars > 16 {
			bars = 16
		}

		fmt.Printf("%2d月 %6d %9.4f%% %s\n",
			month, len(entries), top, strings.Repeat("█", bars))
	}

	PrintSeparator()
	fmt.Println("💡 詳細は rank --month N で確認できます")
	return nil
}
