package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/3vaseline3-ai/yuutai-site/internal/calendar"
	"github.com/3vaseline3-ai/yuutai-site/internal/external/gokigen"
	"github.com/3vaseline3-ai/yuutai-site/internal/external/yahoo"
	"github.com/3vaseline3-ai/yuutai-site/internal/inventory"
	"github.com/3vaseline3-ai/yuutai-site/internal/prices"
	"github.com/3vaseline3-ai/yuutai-site/internal/registry"
	"github.com/3vaseline3-ai/yuutai-site/pkg/config"
	"github.com/3vaseline3-ai/yuutai-site/pkg/httputil"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
	"github.com/3vaseline3-ai/yuutai-site/pkg/redis"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "外部データの取得",
	Long: `外部ソースからデータを取得して保存します。

Subcommands:
  zaiko    - 一般信用売り在庫スナップショット
  prices   - 登録銘柄の現在株価
  maxgyaku - 逆日歩最大額（在庫スナップショットを更新）

Example:
  go run ./cmd/yuutai fetch zaiko --all
  go run ./cmd/yuutai fetch prices
  go run ./cmd/yuutai fetch maxgyaku --month 2`,
}

var (
	fetchZaikoCmd = &cobra.Command{
		Use:   "zaiko",
		Short: "在庫スナップショット取得",
		RunE:  runFetchZaiko,
	}

	fetchPricesCmd = &cobra.Command{
		Use:   "prices",
		Short: "現在株価の取得",
		RunE:  runFetchPrices,
	}

	fetchMaxGyakuCmd = &cobra.Command{
		Use:   "maxgyaku",
		Short: "逆日歩最大額の取得",
		RunE:  runFetchMaxGyaku,
	}

	fetchAllCmd = &cobra.Command{
		Use:   "all",
		Short: "在庫（全月）と株価をまとめて取得",
		RunE:  runFetchAll,
	}
)

var (
	fetchZaikoMonth    int
	fetchZaikoAll      bool
	fetchMaxGyakuMonth int
	fetchMaxGyakuCode  string
)

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.AddCommand(fetchZaikoCmd)
	fetchCmd.AddCommand(fetchPricesCmd)
	fetchCmd.AddCommand(fetchMaxGyakuCmd)
	fetchCmd.AddCommand(fetchAllCmd)

	fetchZaikoCmd.Flags().IntVar(&fetchZaikoMonth, "month", 0, "対象の権利確定月 (1-12)")
	fetchZaikoCmd.Flags().BoolVar(&fetchZaikoAll, "all", false, "全月 (1-12) を取得")

	fetchMaxGyakuCmd.Flags().IntVar(&fetchMaxGyakuMonth, "month", 0, "対象の権利確定月 (デフォルト: 当月)")
	fetchMaxGyakuCmd.Flags().StringVar(&fetchMaxGyakuCode, "code", "", "単一銘柄のみ取得")
}

func runFetchZaiko(cmd *cobra.Command, args []string) error {
	if !fetchZaikoAll && (fetchZaikoMonth < 1 || fetchZaikoMonth > 12) {
		return fmt.Errorf("specify --month 1-12 or --all")
	}

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Create HTTP client
	httpClient := httputil.New(log).WithAccessInterval(cfg.Gokigen.AccessInterval)

	// 4. Create inventory API client and store
	client := gokigen.NewClient(httpClient, log, cfg.Gokigen.BaseURL)
	store := inventory.NewStore(cfg.ZaikoDir())

	ctx := context.Background()
	now := calendar.Now()
	stamp := now.Format("20060102")

	months := []int{fetchZaikoMonth}
	if fetchZaikoAll {
		months = months[:0]
		for m := 1; m <= 12; m++ {
			months = append(months, m)
		}
	}

	PrintHeader("在庫スナップショット取得")

	for _, month := range months {
		items, err := client.FetchZaiko(ctx, month)
		if err != nil {
			if !fetchZaikoAll {
				return fmt.Errorf("fetch month %d: %w", month, err)
			}
			PrintError(fmt.Sprintf("%2d月: %v", month, err))
			continue
		}

		snap := gokigen.Normalize(items, month, stamp, now)
		path, err := store.Save(snap)
		if err != nil {
			return fmt.Errorf("save month %d: %w", month, err)
		}

		fmt.Printf("  📅 %2d月: %d銘柄 -> %s\n", month, snap.Len(), path)
	}

	PrintSuccess("在庫取得完了")
	return nil
}

func runFetchPrices(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Create optional Redis price cache
	var cache *redis.Cache
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		cache = redis.NewCache(redisClient, "yuutai")
	}

	// 4. Create Yahoo client
	httpClient := httputil.New(log).WithAccessInterval(cfg.Yahoo.AccessInterval)
	client := yahoo.NewClient(httpClient, log, cache)

	// 5. Load registry codes
	reg, err := registry.Load(cfg.KachiCSV())
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	if len(reg) == 0 {
		PrintWarning("登録銘柄がありません (kachi.csv)")
		return nil
	}

	seen := make(map[string]bool, len(reg))
	codes := make([]string, 0, len(reg))
	for _, rec := range reg {
		if !seen[rec.Code] {
			seen[rec.Code] = true
			codes = append(codes, rec.Code)
		}
	}

	PrintHeader("株価取得")
	fmt.Printf("  対象: %d銘柄\n", len(codes))

	lookup, failed := client.FetchAll(context.Background(), codes)
	if len(lookup) == 0 {
		return fmt.Errorf("every price fetch failed (%d codes)", len(failed))
	}

	if err := prices.Save(cfg.LatestPricesJSON(), lookup, calendar.Now()); err != nil {
		return fmt.Errorf("save price snapshot: %w", err)
	}

	for _, code := range failed {
		PrintError(fmt.Sprintf("%s: 取得失敗", code))
	}

	PrintSuccess(fmt.Sprintf("株価取得完了: %d/%d銘柄 -> %s", len(lookup), len(codes), cfg.LatestPricesJSON()))
	return nil
}

func runFetchAll(cmd *cobra.Command, args []string) error {
	fetchZaikoAll = true
	if err := runFetchZaiko(cmd, args); err != nil {
		return err
	}
	return runFetchPrices(cmd, args)
}

func runFetchMaxGyaku(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Create inventory API client and store
	httpClient := httputil.New(log).WithAccessInterval(cfg.Gokigen.AccessInterval)
	client := gokigen.NewClient(httpClient, log, cfg.Gokigen.BaseURL)
	store := inventory.NewStore(cfg.ZaikoDir())

	now := calendar.Now()
	month := fetchMaxGyakuMonth
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("--month must be 1-12")
	}

	// 4. Load the month's latest snapshot
	snap, err := store.LoadLatest(month)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return fmt.Errorf("no inventory snapshot for month %d, run fetch zaiko first", month)
	}

	codes := make([]string, 0, len(snap.Stocks))
	for code := range snap.Stocks {
		if fetchMaxGyakuCode != "" && code != fetchMaxGyakuCode {
			continue
		}
		codes = append(codes, code)
	}
	sort.Strings(codes)

	if len(codes) == 0 {
		return fmt.Errorf("code %s not in month %d snapshot", fetchMaxGyakuCode, month)
	}

	PrintHeader("逆日歩最大額取得")
	fmt.Printf("  📅 %d月: %d銘柄\n", month, len(codes))

	ctx := context.Background()
	updated := 0
	for _, code := range codes {
		max, found, err := client.FetchMaxGyaku(ctx, code)
		if err != nil {
			log.WithField("code", code).WithError(err).Warn("Max gyaku fetch failed")
			continue
		}
		if !found {
			continue
		}

		snap.Stocks[code].MaxGyaku = &max
		updated++
	}

	// 更新分を当日スタンプのスナップショットとして保存
	snap.Stamp = now.Format("20060102")
	path, err := store.Save(snap)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	PrintSuccess(fmt.Sprintf("逆日歩最大額: %d/%d銘柄更新 -> %s", updated, len(codes), path))
	return nil
}
