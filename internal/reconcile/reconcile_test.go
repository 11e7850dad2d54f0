package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3vaseline3-ai/yuutai-site/internal/history"
	"github.com/3vaseline3-ai/yuutai-site/internal/inventory"
	"github.com/3vaseline3-ai/yuutai-site/internal/prices"
)

type memHistories map[string]*history.Stock

func (m memHistories) Load(code string) (*history.Stock, error) {
	if h, ok := m[code]; ok {
		return h, nil
	}
	return &history.Stock{Code: code}, nil
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func snapshotWith(stocks map[string]*inventory.Stock) *inventory.Snapshot {
	return &inventory.Snapshot{Month: 2, Stamp: "20260201", Stocks: stocks}
}

func TestResolveAbsentCodeIsSilentlySkipped(t *testing.T) {
	r := New(snapshotWith(map[string]*inventory.Stock{}), memHistories{}, prices.Lookup{})

	_, ok := r.Resolve("3048")
	assert.False(t, ok)
}

func TestResolveNilSnapshot(t *testing.T) {
	r := New(nil, memHistories{}, prices.Lookup{})

	_, ok := r.Resolve("3048")
	assert.False(t, ok)
}

func TestPriceFallbackChain(t *testing.T) {
	hist := memHistories{
		"3048": {Code: "3048", BorrowCosts: []history.BorrowCostRecord{{Date: "2024/02/27", ClosePrice: 1432}}},
	}

	tests := []struct {
		name   string
		prices prices.Lookup
		stock  *inventory.Stock
		want   float64
	}{
		{
			name:   "live price preferred",
			prices: prices.Lookup{"3048": 1555},
			stock:  &inventory.Stock{Price: intPtr(1520)},
			want:   1555,
		},
		{
			name:   "snapshot price when no live price",
			prices: prices.Lookup{},
			stock:  &inventory.Stock{Price: intPtr(1520)},
			want:   1520,
		},
		{
			name:   "history close when snapshot omits price",
			prices: prices.Lookup{},
			stock:  &inventory.Stock{},
			want:   1432,
		},
		{
			name:   "present zero price is not a fallback trigger",
			prices: prices.Lookup{},
			stock:  &inventory.Stock{Price: intPtr(0)},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(snapshotWith(map[string]*inventory.Stock{"3048": tt.stock}), hist, tt.prices)
			view, ok := r.Resolve("3048")
			require.True(t, ok)
			assert.Equal(t, tt.want, view.Price)
		})
	}
}

func TestPriceZeroWhenEverySourceMissing(t *testing.T) {
	r := New(snapshotWith(map[string]*inventory.Stock{"9999": {}}), memHistories{}, prices.Lookup{})

	view, ok := r.Resolve("9999")
	require.True(t, ok)
	assert.Equal(t, 0.0, view.Price)
}

func TestDividendFallbackChain(t *testing.T) {
	hist := memHistories{
		"3048": {Code: "3048", Dividends: []history.DividendRecord{
			{Period: "2025年2月期（予）", Amount: 15, IsForecast: true},
			{Period: "2024年2月期", Amount: 12, IsForecast: false},
		}},
		"7412": {Code: "7412", Dividends: []history.DividendRecord{
			{Period: "2025年3月期（予）", Amount: 8, IsForecast: true},
		}},
	}

	// Snapshot dividend preferred
	r := New(snapshotWith(map[string]*inventory.Stock{"3048": {Dividend: intPtr(13)}}), hist, prices.Lookup{})
	view, _ := r.Resolve("3048")
	assert.Equal(t, 13.0, view.Dividend)

	// History actual when snapshot omits it
	r = New(snapshotWith(map[string]*inventory.Stock{"3048": {}}), hist, prices.Lookup{})
	view, _ = r.Resolve("3048")
	assert.Equal(t, 12.0, view.Dividend)

	// Forecast-only history falls back to the most recent forecast
	r = New(snapshotWith(map[string]*inventory.Stock{"7412": {}}), hist, prices.Lookup{})
	view, _ = r.Resolve("7412")
	assert.Equal(t, 8.0, view.Dividend)

	// Nothing anywhere: zero
	r = New(snapshotWith(map[string]*inventory.Stock{"9999": {}}), memHistories{}, prices.Lookup{})
	view, _ = r.Resolve("9999")
	assert.Equal(t, 0.0, view.Dividend)
}

func TestBorrowCostAndRestriction(t *testing.T) {
	stocks := map[string]*inventory.Stock{
		"3048": {
			Avg5Gyaku:   floatPtr(2.5),
			Restriction: inventory.RestrictionCaution,
			IsTaishaku:  true,
			Zaiko:       map[inventory.Broker]*int{inventory.Nikko: intPtr(300)},
			MaxGyaku:    intPtr(480),
		},
		"9861": {},
	}
	r := New(snapshotWith(stocks), memHistories{}, prices.Lookup{})

	view, ok := r.Resolve("3048")
	require.True(t, ok)
	assert.Equal(t, 2.5, view.BorrowCost)
	assert.Equal(t, inventory.RestrictionCaution, view.Restriction)
	assert.True(t, view.IsTaishaku)
	assert.True(t, view.HasInventory)
	assert.Equal(t, 480, view.MaxGyaku)

	view, ok = r.Resolve("9861")
	require.True(t, ok)
	assert.Equal(t, 0.0, view.BorrowCost)
	assert.Equal(t, inventory.RestrictionNone, view.Restriction)
	assert.False(t, view.HasInventory)
}
