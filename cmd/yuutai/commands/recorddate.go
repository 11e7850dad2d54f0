package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/3vaseline3-ai/yuutai-site/internal/calendar"
	"github.com/3vaseline3-ai/yuutai-site/internal/interest"
	"github.com/3vaseline3-ai/yuutai-site/pkg/config"
)

// recorddateCmd represents the recorddate command
var recorddateCmd = &cobra.Command{
	Use:   "recorddate",
	Short: "権利付最終日と金利計算",
	Long: `各月の権利付最終日（権利確定日の2営業日前）と、
今日からの金利負担を表示します。

Example:
  go run ./cmd/yuutai recorddate
  go run ./cmd/yuutai recorddate --month 2`,
	RunE: runRecordDate,
}

var recorddateMonth int

func init() {
	rootCmd.AddCommand(recorddateCmd)

	recorddateCmd.Flags().IntVar(&recorddateMonth, "month", 0, "対象月 (0=全月)")
}

func runRecordDate(cmd *cobra.Command, args []string) error {
	if recorddateMonth < 0 || recorddateMonth > 12 {
		return fmt.Errorf("--month must be 0-12")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	today := calendar.Now()

	PrintHeader(fmt.Sprintf("📅 権利付最終日と金利 (年利 %.1f%%, 基準日 %s)",
		cfg.InterestRate, today.Format("2006-01-02")))

	fmt.Printf("%3s %12s %12s %6s %8s\n", "月", "起算日", "権利付最終日", "日数", "金利")
	PrintSeparator()

	months := []int{recorddateMonth}
	if recorddateMonth == 0 {
		months = months[:0]
		for m := 1; m <= 12; m++ {
			months = append(months, m)
		}
	}

	for _, m := range months {
		w := interest.MonthlyWindow(time.Month(m), today, cfg.InterestRate)
		fmt.Printf("%2d月 %12s %12s %5d日 %7.3f%%\n",
			m,
			w.StartDate.Format("2006-01-02"),
			w.RecordDate.Format("2006-01-02"),
			w.Days,
			w.InterestPct)
	}

	PrintSeparator()
	return nil
}
