package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/3vaseline3-ai/yuutai-site/internal/archive"
	"github.com/3vaseline3-ai/yuutai-site/internal/calendar"
	"github.com/3vaseline3-ai/yuutai-site/internal/pipeline"
	"github.com/3vaseline3-ai/yuutai-site/pkg/config"
	"github.com/3vaseline3-ai/yuutai-site/pkg/database"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "パフォーマンスアーカイブ",
	Long: `計算結果をPostgreSQLにアーカイブし、過去の機会を振り返ります。

DATABASE_URL の設定が必要です。

Subcommands:
  init    - スキーマ作成
  save    - 現在の計算結果を保存
  list    - 保存済みランの一覧
  history - 銘柄のパフォーマンス推移

Example:
  go run ./cmd/yuutai archive init
  go run ./cmd/yuutai archive save
  go run ./cmd/yuutai archive history 3048`,
}

var (
	archiveInitCmd = &cobra.Command{
		Use:   "init",
		Short: "スキーマ作成",
		RunE:  runArchiveInit,
	}

	archiveSaveCmd = &cobra.Command{
		Use:   "save",
		Short: "現在の計算結果を保存",
		RunE:  runArchiveSave,
	}

	archiveListCmd = &cobra.Command{
		Use:   "list",
		Short: "保存済みランの一覧",
		RunE:  runArchiveList,
	}

	archiveHistoryCmd = &cobra.Command{
		Use:   "history [code]",
		Short: "銘柄のパフォーマンス推移",
		Args:  cobra.ExactArgs(1),
		RunE:  runArchiveHistory,
	}
)

var (
	archiveListLimit    int
	archiveHistoryLimit int
)

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveInitCmd)
	archiveCmd.AddCommand(archiveSaveCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveHistoryCmd)

	archiveListCmd.Flags().IntVar(&archiveListLimit, "limit", 20, "表示件数")
	archiveHistoryCmd.Flags().IntVar(&archiveHistoryLimit, "limit", 90, "表示件数")
}

// initArchive opens the archive repository. DATABASE_URL must be set.
func initArchive() (*archive.Repository, *database.DB, *config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.Database.URL == "" {
		return nil, nil, nil, nil, fmt.Errorf("DATABASE_URL is not set, archiving is disabled")
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	return archive.NewRepository(db.Pool), db, cfg, log, nil
}

func runArchiveInit(cmd *cobra.Command, args []string) error {
	repo, db, _, _, err := initArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repo.EnsureSchema(context.Background()); err != nil {
		return err
	}

	PrintSuccess("アーカイブスキーマ作成完了")
	return nil
}

func runArchiveSave(cmd *cobra.Command, args []string) error {
	repo, db, cfg, log, err := initArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	p := pipeline.New(cfg, log)
	results, err := p.Results(0)
	if err != nil {
		return fmt.Errorf("compute results: %w", err)
	}
	if len(results) == 0 {
		PrintWarning("保存する計算結果がありません")
		return nil
	}

	runAt := calendar.Now()
	if err := repo.SaveRun(ctx, runAt, results); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	PrintSuccess(fmt.Sprintf("アーカイブ保存完了: %d件 (%s)", len(results), runAt.Format("2006-01-02 15:04")))
	return nil
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	repo, db, _, _, err := initArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repo.ListRuns(context.Background(), archiveListLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	PrintHeader("アーカイブ済みラン")

	if len(runs) == 0 {
		PrintWarning("アーカイブはまだ空です")
		return nil
	}

	fmt.Printf("%8s %20s %8s\n", "ID", "実行日時", "件数")
	PrintSeparator()
	for _, run := range runs {
		fmt.Printf("%8d %20s %8d\n",
			run.ID, run.RunAt.Format("2006-01-02 15:04:05"), run.ResultRows)
	}

	return nil
}

func runArchiveHistory(cmd *cobra.Command, args []string) error {
	code := args[0]

	repo, db, _, _, err := initArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	points, err := repo.CodeHistory(context.Background(), code, archiveHistoryLimit)
	if err != nil {
		return fmt.Errorf("code history: %w", err)
	}

	PrintHeader(fmt.Sprintf("📊 %s パフォーマンス推移", code))

	if len(points) == 0 {
		PrintWarning("この銘柄のアーカイブはありません")
		return nil
	}

	fmt.Printf("%20s %10s %8s %8s\n", "実行日時", "パフォ", "逆日歩", "株価")
	PrintSeparator()
	for _, p := range points {
		fmt.Printf("%20s %9.4f%% %8.2f %8.0f\n",
			p.RunAt.Format("2006-01-02 15:04"), p.Performance, p.BorrowCost, p.Price)
	}

	return nil
}
