package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3vaseline3-ai/yuutai-site/internal/inventory"
	"github.com/3vaseline3-ai/yuutai-site/internal/perform"
	"github.com/3vaseline3-ai/yuutai-site/internal/registry"
)

func intPtr(v int) *int { return &v }

func TestMonthsToCross(t *testing.T) {
	tests := []struct {
		target, current, want int
	}{
		{3, 11, 5},  // 11→12→1→2→3
		{6, 6, 1},   // same month, one crossing
		{12, 1, 12}, // full year ahead
		{1, 2, 12},  // just missed: wait until next January
		{12, 12, 1},
		{2, 8, 7},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MonthsToCross(tt.target, tt.current),
			"target=%d current=%d", tt.target, tt.current)
	}
}

func TestMonthsToCrossAlwaysInRange(t *testing.T) {
	for target := 1; target <= 12; target++ {
		for current := 1; current <= 12; current++ {
			got := MonthsToCross(target, current)
			assert.GreaterOrEqual(t, got, 1)
			assert.LessOrEqual(t, got, 12)
		}
	}
}

func TestMonthlyYield(t *testing.T) {
	// 優待3000円/100株、株価2000円、年利1.7%、2ヶ月
	// 1株優待価値30円、金利 2000*0.017*2/12 ≈ 5.6667円
	got := MonthlyYield(2000, 100, 3000, 1.7, 2)
	assert.InDelta(t, (30.0-2000*0.017*2/12)/2000*100/2, got, 1e-9)

	assert.Equal(t, 0.0, MonthlyYield(0, 100, 3000, 1.7, 2))
	assert.Equal(t, 0.0, MonthlyYield(2000, 0, 3000, 1.7, 2))
	assert.Equal(t, 0.0, MonthlyYield(2000, 100, 0, 1.7, 2))
}

func testSnapshot() *inventory.Snapshot {
	return &inventory.Snapshot{
		Month: 2,
		Stamp: "20260210",
		Stocks: map[string]*inventory.Stock{
			"3048": {
				Name:  "ビックカメラ",
				Price: intPtr(1500),
				Zaiko: map[inventory.Broker]*int{inventory.Nikko: intPtr(300)},
			},
			"9861": {
				Name:  "吉野家HD",
				Price: intPtr(3000),
				Zaiko: map[inventory.Broker]*int{inventory.SBI: intPtr(100)},
			},
			"7550": { // 在庫ゼロ
				Name:  "ゼンショーHD",
				Price: intPtr(5000),
				Zaiko: map[inventory.Broker]*int{inventory.Nikko: intPtr(0)},
			},
			"8200": { // 優待登録なし
				Name:  "リンガーハット",
				Price: intPtr(2400),
				Zaiko: map[inventory.Broker]*int{inventory.Rakuten: intPtr(500)},
			},
		},
	}
}

func testRegistry() registry.Registry {
	return registry.Registry{
		{Code: "3048", Name: "ビックカメラ", SettlementMonth: 2, Shares: registry.ShareCount{Count: 100}, Value: 1000},
		{Code: "9861", Name: "吉野家HD", SettlementMonth: 2, Shares: registry.ShareCount{Count: 100}, Value: 5000},
		{Code: "7550", Name: "ゼンショーHD", SettlementMonth: 2, Shares: registry.ShareCount{Count: 100}, Value: 1000},
	}
}

func TestMonthlyRankingGates(t *testing.T) {
	r := NewRanker(1.7)

	entries := r.MonthlyRanking(testSnapshot(), testRegistry(), 2, 1, 0)

	// 7550 has zero inventory and 8200 has no registry entry.
	require.Len(t, entries, 2)
	codes := []string{entries[0].Code, entries[1].Code}
	assert.Contains(t, codes, "3048")
	assert.Contains(t, codes, "9861")
}

func TestMonthlyRankingIsDescending(t *testing.T) {
	r := NewRanker(1.7)

	entries := r.MonthlyRanking(testSnapshot(), testRegistry(), 2, 1, 0)
	require.Len(t, entries, 2)

	// 9861: 50円/3000円, 3048: 10円/1500円. 9861 yields more.
	assert.Equal(t, "9861", entries[0].Code)
	assert.Greater(t, entries[0].MonthlyYield, entries[1].MonthlyYield)
	assert.Equal(t, 2, entries[0].Months)
}

func TestMonthlyRankingLimit(t *testing.T) {
	r := NewRanker(1.7)

	entries := r.MonthlyRanking(testSnapshot(), testRegistry(), 2, 1, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, "9861", entries[0].Code)
}

func TestMonthlyRankingNilSnapshot(t *testing.T) {
	r := NewRanker(1.7)
	assert.Nil(t, r.MonthlyRanking(nil, testRegistry(), 2, 1, 0))
}

func TestMonthlyRankingDeterministic(t *testing.T) {
	r := NewRanker(1.7)
	snap := testSnapshot()
	reg := testRegistry()

	first := r.MonthlyRanking(snap, reg, 2, 1, 0)
	second := r.MonthlyRanking(snap, reg, 2, 1, 0)
	assert.Equal(t, first, second)
}

func TestTop(t *testing.T) {
	results := []perform.Result{{Code: "a"}, {Code: "b"}, {Code: "c"}}

	assert.Len(t, Top(results, 2), 2)
	assert.Len(t, Top(results, 0), 3)
	assert.Len(t, Top(results, 10), 3)
}
