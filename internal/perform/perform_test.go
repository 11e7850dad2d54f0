package perform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3vaseline3-ai/yuutai-site/internal/reconcile"
	"github.com/3vaseline3-ai/yuutai-site/internal/registry"
)

type memResolver map[string]reconcile.View

func (m memResolver) Resolve(code string) (reconcile.View, bool) {
	v, ok := m[code]
	return v, ok
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		shares     int
		borrowCost float64
		dividend   float64
		price      float64
		want       float64
		delta      float64
	}{
		{
			// 優待3000円/100株、逆日歩2.5円、配当50円、株価2000円
			name:  "typical cross",
			value: 3000, shares: 100, borrowCost: 2.5, dividend: 50, price: 2000,
			want: 1.7579, delta: 0.0001,
		},
		{
			name:  "zero shares is zero performance",
			value: 3000, shares: 0, borrowCost: 2.5, dividend: 50, price: 2000,
			want: 0.0,
		},
		{
			name:  "negative shares is zero performance",
			value: 3000, shares: -100, borrowCost: 2.5, dividend: 50, price: 2000,
			want: 0.0,
		},
		{
			name:  "zero price is zero performance",
			value: 3000, shares: 100, borrowCost: 2.5, dividend: 50, price: 0,
			want: 0.0,
		},
		{
			name:  "negative price is zero performance",
			value: 3000, shares: 100, borrowCost: 2.5, dividend: 50, price: -10,
			want: 0.0,
		},
		{
			// 逆日歩が優待価値を食い潰すとマイナスになる
			name:  "borrow cost can push performance negative",
			value: 1000, shares: 100, borrowCost: 50, dividend: 0, price: 2000,
			want: -2.0, delta: 0.0001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.value, tt.shares, tt.borrowCost, tt.dividend, tt.price)
			if tt.delta > 0 {
				assert.InDelta(t, tt.want, got, tt.delta)
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResultDerivedValues(t *testing.T) {
	r := Result{
		Code:   "3048",
		Price:  2000,
		Shares: registry.ShareCount{Count: 100},
		Value:  3000, BorrowCost: 2.5, Dividend: 50,
	}

	assert.InDelta(t, 30.0, r.ValuePerShare(), 1e-9)
	assert.InDelta(t, 7.6575, r.DividendBenefit(), 1e-9)
	assert.InDelta(t, 35.1575, r.NetBenefitPerShare(), 1e-9)
	assert.InDelta(t, 1.5, r.SimpleYield(), 1e-9)
	assert.InDelta(t, 200000, r.RequiredAmount(), 1e-9)
}

func TestDisplayRounding(t *testing.T) {
	r := Result{
		Code:        "3048",
		Price:       2000,
		Shares:      registry.ShareCount{Count: 100, IsDifferential: true},
		Value:       3000,
		BorrowCost:  2.5,
		Dividend:    50,
		Performance: 1.75787499,
	}

	d := r.Display()
	assert.Equal(t, 7.66, d.DividendBenefit)
	assert.Equal(t, 35.16, d.NetBenefit)
	assert.Equal(t, 1.7579, d.Performance)
	assert.Equal(t, 1.5, d.SimpleYield)
	assert.Equal(t, "+100", d.SharesDisplay)
	assert.True(t, d.IsDifferential)

	// Unrounded values remain on the Result itself
	assert.InDelta(t, 35.1575, r.NetBenefitPerShare(), 1e-9)
}

func testRegistry() registry.Registry {
	return registry.Registry{
		{Code: "3048", Name: "ビックカメラ", SettlementMonth: 2, Shares: registry.ShareCount{Count: 100}, Value: 1000},
		{Code: "3048", Name: "ビックカメラ", SettlementMonth: 2, Shares: registry.ShareCount{Count: 400, IsDifferential: true}, Value: 1000},
		{Code: "9861", Name: "吉野家HD", SettlementMonth: 2, Shares: registry.ShareCount{Count: 100}, Value: 5000},
		{Code: "7550", Name: "ゼンショーHD", SettlementMonth: 3, Shares: registry.ShareCount{Count: 100}, Value: 1000},
		{Code: "9999", Name: "在庫なし", SettlementMonth: 2, Shares: registry.ShareCount{Count: 100}, Value: 3000},
	}
}

func testResolver() memResolver {
	return memResolver{
		"3048": {Code: "3048", Price: 1500, BorrowCost: 1.0, Dividend: 10},
		"9861": {Code: "9861", Price: 3000, BorrowCost: 0.5, Dividend: 20},
		"7550": {Code: "7550", Price: 5000, BorrowCost: 0, Dividend: 30},
	}
}

func TestCalculateAllFiltersAndSorts(t *testing.T) {
	engine := NewEngine(nil)

	results := engine.CalculateAll(testRegistry(), testResolver(), 2)

	// 9999 has no inventory: silently excluded. Month 3 filtered out.
	require.Len(t, results, 3)
	for _, r := range results {
		assert.NotEqual(t, "9999", r.Code)
		assert.Equal(t, 2, r.SettlementMonth)
	}

	// Descending by performance
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Performance, results[i].Performance)
	}
}

func TestCalculateAllAllMonths(t *testing.T) {
	engine := NewEngine(nil)

	results := engine.CalculateAll(testRegistry(), testResolver(), 0)
	require.Len(t, results, 4)

	months := map[int]bool{}
	for _, r := range results {
		months[r.SettlementMonth] = true
	}
	assert.True(t, months[2])
	assert.True(t, months[3])
}

func TestCalculateAllSameStockMultipleTiers(t *testing.T) {
	engine := NewEngine(nil)

	results := engine.CalculateAll(testRegistry(), testResolver(), 2)

	var tiers []registry.ShareCount
	for _, r := range results {
		if r.Code == "3048" {
			tiers = append(tiers, r.Shares)
		}
	}
	require.Len(t, tiers, 2, "each registry row produces an independent result")
}

func TestCalculateAllIsDeterministic(t *testing.T) {
	engine := NewEngine(nil)
	reg := testRegistry()
	resolver := testResolver()

	first := engine.CalculateAll(reg, resolver, 0)
	second := engine.CalculateAll(reg, resolver, 0)

	require.Equal(t, first, second, "identical inputs must produce identical ordered output")
}

func TestCalculateAllMissingMonthProducesNothing(t *testing.T) {
	engine := NewEngine(nil)

	// 9999 is registered for month 2 but has no inventory: no result
	// for month 2. Register it with inventory under month 6 instead.
	reg := registry.Registry{
		{Code: "9999", SettlementMonth: 2, Shares: registry.ShareCount{Count: 100}, Value: 3000},
		{Code: "9999", SettlementMonth: 6, Shares: registry.ShareCount{Count: 100}, Value: 3000},
	}
	month6 := memResolver{"9999": {Code: "9999", Price: 1000}}
	month2 := memResolver{}

	assert.Empty(t, engine.CalculateAll(reg, month2, 2))

	results := engine.CalculateAll(reg, month6, 6)
	require.Len(t, results, 1)
	assert.Equal(t, 6, results[0].SettlementMonth)
}
