package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/3vaseline3-ai/yuutai-site/internal/archive"
	"github.com/3vaseline3-ai/yuutai-site/internal/external/gokigen"
	"github.com/3vaseline3-ai/yuutai-site/internal/external/yahoo"
	"github.com/3vaseline3-ai/yuutai-site/internal/inventory"
	"github.com/3vaseline3-ai/yuutai-site/internal/pipeline"
	"github.com/3vaseline3-ai/yuutai-site/internal/scheduler"
	"github.com/3vaseline3-ai/yuutai-site/internal/scheduler/jobs"
	"github.com/3vaseline3-ai/yuutai-site/internal/site"
	"github.com/3vaseline3-ai/yuutai-site/pkg/config"
	"github.com/3vaseline3-ai/yuutai-site/pkg/database"
	"github.com/3vaseline3-ai/yuutai-site/pkg/httputil"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
	"github.com/3vaseline3-ai/yuutai-site/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "スケジューラー管理",
	Long: `定期ジョブを管理します。

登録されるジョブ:
- inventory_capture: 毎日 19時 (在庫スナップショット)
- price_refresh: 平日 16時 (株価更新)
- site_rebuild: 毎日 20時 (サイト再生成とアーカイブ)

Subcommands:
  start   - スケジューラー起動
  list    - 登録ジョブ一覧
  run     - 特定ジョブの即時実行
  status  - ジョブ実行履歴

Example:
  go run ./cmd/yuutai scheduler start
  go run ./cmd/yuutai scheduler run site_rebuild`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "スケジューラー起動",
		RunE:  runSchedulerStart,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "登録ジョブ一覧",
		RunE:  runSchedulerList,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "特定ジョブの即時実行",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "ジョブ実行履歴",
		RunE:  runSchedulerStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	sched.Start()

	fmt.Println("\n✅ Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sortedJobs(sched) {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	for _, jobName := range sortedJobs(sched) {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Printf("Running job: %s\n", jobName)

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Println("Job started (running in background)")
	return nil
}

func runSchedulerStatus(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Job Statistics:")
	fmt.Println()

	for _, jobName := range sortedJobs(sched) {
		hist, err := sched.GetJobHistory(jobName)
		if err != nil {
			continue
		}

		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Total Runs: %d\n", len(hist.Results))
		fmt.Printf("   Success Rate: %.1f%%\n", hist.GetSuccessRate()*100)

		for _, res := range hist.GetLatestResults(5) {
			status := "✅"
			if !res.Success {
				status = "❌"
			}
			fmt.Printf("   %s %s (%.2fs)\n",
				status, res.StartTime.Format("2006-01-02 15:04:05"), res.Duration.Seconds())
		}

		fmt.Println()
	}

	return nil
}

func sortedJobs(sched *scheduler.Scheduler) []string {
	names := sched.GetAllJobs()
	sort.Strings(names)
	return names
}

// initScheduler wires every job with its dependencies. The returned
// cleanup closes the optional database and Redis connections.
func initScheduler() (*scheduler.Scheduler, func(), error) {
	cleanup := func() {}

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, cleanup, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Create external clients
	gokigenClient := gokigen.NewClient(
		httputil.New(log).WithAccessInterval(cfg.Gokigen.AccessInterval),
		log, cfg.Gokigen.BaseURL)

	var cache *redis.Cache
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.New(cfg)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect to redis: %w", err)
		}
		cache = redis.NewCache(redisClient, "yuutai")
	}

	yahooClient := yahoo.NewClient(
		httputil.New(log).WithAccessInterval(cfg.Yahoo.AccessInterval),
		log, cache)

	// 4. Create stores and pipeline
	invStore := inventory.NewStore(cfg.ZaikoDir())
	p := pipeline.New(cfg, log)

	gen, err := site.NewGenerator(log, cfg.SiteDir, cfg.InterestRate)
	if err != nil {
		return nil, cleanup, fmt.Errorf("create generator: %w", err)
	}

	// 5. Optional archive (DATABASE_URL unset disables it)
	var arch *archive.Repository
	var db *database.DB
	if cfg.Database.URL != "" {
		db, err = database.New(cfg)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect to database: %w", err)
		}
		arch = archive.NewRepository(db.Pool)
		if err := arch.EnsureSchema(context.Background()); err != nil {
			db.Close()
			return nil, cleanup, fmt.Errorf("ensure archive schema: %w", err)
		}
	}

	cleanup = func() {
		if db != nil {
			db.Close()
		}
		if redisClient != nil {
			redisClient.Close()
		}
	}

	// 6. Create scheduler and register jobs
	sched := scheduler.New(log)

	if err := sched.AddJob(jobs.NewInventoryJob(gokigenClient, invStore, log)); err != nil {
		return nil, cleanup, err
	}
	if err := sched.AddJob(jobs.NewPriceJob(yahooClient, cfg, log)); err != nil {
		return nil, cleanup, err
	}
	if err := sched.AddJob(jobs.NewSiteRebuildJob(p, gen, arch, log)); err != nil {
		return nil, cleanup, err
	}

	return sched, cleanup, nil
}
