package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/3vaseline3-ai/yuutai-site/internal/external/investjp"
	"github.com/3vaseline3-ai/yuutai-site/pkg/config"
	"github.com/3vaseline3-ai/yuutai-site/pkg/httputil"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "優待詳細ページのダウンロード",
	Long: `invest-jpの月別インデックスから銘柄コードを抽出し、
各銘柄の詳細ページを data/html_cache/MM/ にキャッシュします。

既にキャッシュ済みのページはスキップされます（--forceで再取得）。

Example:
  go run ./cmd/yuutai download --month 2
  go run ./cmd/yuutai download --all --force`,
	RunE: runDownload,
}

var (
	downloadMonth int
	downloadAll   bool
	downloadForce bool
)

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().IntVar(&downloadMonth, "month", 0, "対象の権利確定月 (1-12)")
	downloadCmd.Flags().BoolVar(&downloadAll, "all", false, "全月 (1-12) をダウンロード")
	downloadCmd.Flags().BoolVar(&downloadForce, "force", false, "キャッシュ済みページも再取得")
}

func runDownload(cmd *cobra.Command, args []string) error {
	if !downloadAll && (downloadMonth < 1 || downloadMonth > 12) {
		return fmt.Errorf("specify --month 1-12 or --all")
	}

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Create HTTP client with crawl politeness interval
	httpClient := httputil.New(log).WithAccessInterval(cfg.InvestJP.AccessInterval)

	// 4. Create invest-jp client
	client := investjp.NewClient(httpClient, log, cfg.InvestJP.BaseURL, cfg.HTMLCacheDir())

	ctx := context.Background()

	PrintHeader("優待詳細ページ ダウンロード")

	var results []*investjp.DownloadResult
	if downloadAll {
		results, err = client.DownloadAll(ctx, downloadForce)
	} else {
		var res *investjp.DownloadResult
		res, err = client.DownloadMonth(ctx, downloadMonth, downloadForce)
		if res != nil {
			results = append(results, res)
		}
	}

	for _, res := range results {
		fmt.Printf("  📅 %2d月: %d銘柄 (取得 %d / スキップ %d / 失敗 %d)\n",
			res.Month, len(res.Codes), res.Downloaded, res.Skipped, res.Failed)
	}

	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	PrintSuccess("ダウンロード完了")
	return nil
}
