package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/3vaseline3-ai/yuutai-site/internal/inventory"
	"github.com/3vaseline3-ai/yuutai-site/internal/registry"
	"github.com/3vaseline3-ai/yuutai-site/pkg/config"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert [record_file]",
	Short: "手書き優待記録の変換",
	Long: `手書きの yuutai_record.csv (コード,権利付日,株数,優待価値) を
正規レジストリ形式 kachi.csv に変換します。

銘柄名は parsed_stocks.json と在庫スナップショットから補完されます。

Example:
  go run ./cmd/yuutai convert data/yuutai_record.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	src := args[0]

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Build the code->name lookup from parsed pages and snapshots
	names := make(map[string]string)

	parsed, err := loadParsedStocks(cfg.ParsedStocksJSON())
	if err != nil {
		return fmt.Errorf("load parsed stocks: %w", err)
	}
	for _, stock := range parsed {
		if stock.Name != "" {
			names[stock.Code] = stock.Name
		}
	}

	store := inventory.NewStore(cfg.ZaikoDir())
	for month := 1; month <= 12; month++ {
		snap, err := store.LoadLatest(month)
		if err != nil || snap == nil {
			continue
		}
		for code, stock := range snap.Stocks {
			if _, ok := names[code]; !ok && stock.Name != "" {
				names[code] = stock.Name
			}
		}
	}

	// 3. Convert
	result, err := registry.ConvertRecordFile(src, cfg.KachiCSV(), names)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	PrintHeader("レジストリ変換")
	PrintKeyValue("入力", src, 8)
	PrintKeyValue("出力", cfg.KachiCSV(), 8)
	PrintKeyValue("変換行数", fmt.Sprintf("%d", result.Converted), 8)

	if len(result.MissingNames) > 0 {
		PrintWarning(fmt.Sprintf("銘柄名が見つかりません: %s", strings.Join(result.MissingNames, ", ")))
	}

	PrintSuccess("変換完了")
	return nil
}
