package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/3vaseline3-ai/yuutai-site/internal/calendar"
	"github.com/3vaseline3-ai/yuutai-site/internal/pipeline"
	"github.com/3vaseline3-ai/yuutai-site/internal/site"
	"github.com/3vaseline3-ai/yuutai-site/pkg/config"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "静的サイト生成",
	Long: `最新データから静的サイトを生成します。

生成されるページ:
  index.html       - 全月の総合パフォーマンス表
  01.html - 12.html - 月別パフォーマンス表（在庫内訳付き）
  stocks/{code}.html - 銘柄別の逆日歩履歴

Example:
  go run ./cmd/yuutai generate`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Build pipeline and generator
	p := pipeline.New(cfg, log)
	gen, err := site.NewGenerator(log, cfg.SiteDir, cfg.InterestRate)
	if err != nil {
		return fmt.Errorf("create generator: %w", err)
	}

	PrintHeader("静的サイト生成")

	// 4. Generate every page
	today := calendar.Now()
	if err := gen.GenerateAll(p, today); err != nil {
		return fmt.Errorf("generate site: %w", err)
	}

	PrintSuccess(fmt.Sprintf("サイト生成完了 -> %s/", cfg.SiteDir))
	return nil
}
