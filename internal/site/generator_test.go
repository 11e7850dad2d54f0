package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3vaseline3-ai/yuutai-site/internal/history"
	"github.com/3vaseline3-ai/yuutai-site/internal/inventory"
	"github.com/3vaseline3-ai/yuutai-site/internal/perform"
	"github.com/3vaseline3-ai/yuutai-site/internal/registry"
	"github.com/3vaseline3-ai/yuutai-site/pkg/config"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

type memSource struct {
	results   map[int][]perform.Result
	snapshots map[int]*inventory.Snapshot
	histories map[string][]history.BorrowCostRecord
}

func (m *memSource) Results(month int) ([]perform.Result, error) {
	return m.results[month], nil
}

func (m *memSource) Snapshot(month int) (*inventory.Snapshot, error) {
	return m.snapshots[month], nil
}

func (m *memSource) BorrowHistory(code string) ([]history.BorrowCostRecord, error) {
	return m.histories[code], nil
}

func intPtr(v int) *int { return &v }

func testSource() *memSource {
	results := []perform.Result{
		{
			Code: "3048", Name: "ビックカメラ", SettlementMonth: 2,
			Price: 2000, Shares: registry.ShareCount{Count: 100},
			Value: 3000, BorrowCost: 2.5, Dividend: 50, Performance: 1.7579,
		},
		{
			Code: "3048", Name: "ビックカメラ", SettlementMonth: 2,
			Price: 2000, Shares: registry.ShareCount{Count: 400, IsDifferential: true},
			Value: 1000, Performance: 0.5,
		},
	}

	return &memSource{
		results: map[int][]perform.Result{0: results, 2: results},
		snapshots: map[int]*inventory.Snapshot{
			2: {Month: 2, Stamp: "20260210", Stocks: map[string]*inventory.Stock{
				"3048": {
					Name:        "ビックカメラ",
					Zaiko:       map[inventory.Broker]*int{inventory.Nikko: intPtr(300)},
					MaxGyaku:    intPtr(4800),
					Restriction: inventory.RestrictionCaution,
				},
			}},
		},
		histories: map[string][]history.BorrowCostRecord{
			"3048": {{Date: "2025/02/26", Cost: 2.4, ClosePrice: 1432}},
		},
	}
}

func testGenerator(t *testing.T) (*Generator, string) {
	t.Helper()

	outDir := t.TempDir()
	log := logger.New(&config.Config{LogLevel: "error", LogFormat: "json"})

	g, err := NewGenerator(log, outDir, 1.7)
	require.NoError(t, err)
	return g, outDir
}

func TestGenerateAll(t *testing.T) {
	g, outDir := testGenerator(t)
	today := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, g.GenerateAll(testSource(), today))

	// index + stylesheet + 12 month pages + stock page
	assert.FileExists(t, filepath.Join(outDir, "index.html"))
	assert.FileExists(t, filepath.Join(outDir, "style.css"))
	for month := 1; month <= 12; month++ {
		assert.FileExists(t, filepath.Join(outDir, "months", fmt.Sprintf("%02d.html", month)))
	}
	assert.FileExists(t, filepath.Join(outDir, "stocks", "3048.html"))
}

func TestMonthPageContent(t *testing.T) {
	g, outDir := testGenerator(t)
	today := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, g.GenerateAll(testSource(), today))

	data, err := os.ReadFile(filepath.Join(outDir, "months", "02.html"))
	require.NoError(t, err)
	page := string(data)

	assert.Contains(t, page, "ビックカメラ")
	assert.Contains(t, page, "1.7579%")
	assert.Contains(t, page, "注意")
	assert.Contains(t, page, "300", "broker inventory is merged in")
	// 最大逆日歩率 = (4800/100)/2000*100 = 2.4%
	assert.Contains(t, page, "2.4%")
}

func TestStockPageSkipsDifferentialEntries(t *testing.T) {
	g, outDir := testGenerator(t)
	today := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, g.GenerateAll(testSource(), today))

	entries, err := os.ReadDir(filepath.Join(outDir, "stocks"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "one page per code, differential entries skipped")

	data, err := os.ReadFile(filepath.Join(outDir, "stocks", "3048.html"))
	require.NoError(t, err)
	page := string(data)

	assert.Contains(t, page, "逆日歩履歴")
	assert.Contains(t, page, "2025/02/26")
	assert.False(t, strings.Contains(page, "+400"), "differential tier does not become the stock page")
}
