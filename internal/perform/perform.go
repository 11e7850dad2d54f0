// Package perform computes the net yield of a benefit-cross position
// per (stock code, required-share tier).
//
// パフォーマンス計算式:
//
//	(優待価値÷株数 - 逆日歩 + 配当×0.15315) ÷ 株価 × 100
package perform

import (
	"math"
	"sort"

	"github.com/3vaseline3-ai/yuutai-site/internal/reconcile"
	"github.com/3vaseline3-ai/yuutai-site/internal/registry"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

// DividendAdjustmentRate is the refund rate on the dividend-adjustment
// payment: 源泉徴収20.315% - 所得税5%.
const DividendAdjustmentRate = 0.15315

// Result is the computed performance of one registry row. Value
// fields are unrounded; display rounding happens in Display().
type Result struct {
	Code            string
	Name            string
	SettlementMonth int
	Price           float64
	Shares          registry.ShareCount
	Value           float64 // 優待価値（円）
	Content         string
	BorrowCost      float64 // 1株あたり逆日歩
	Dividend        float64 // 1株あたり配当
	Performance     float64 // %
	IsTaishaku      bool
	Restriction     string
}

// RequiredAmount is the capital required to hold the position.
func (r *Result) RequiredAmount() float64 {
	return r.Price * float64(r.Shares.Count)
}

// ValuePerShare is the entitlement value per share.
func (r *Result) ValuePerShare() float64 {
	if r.Shares.Count <= 0 {
		return 0
	}
	return r.Value / float64(r.Shares.Count)
}

// DividendBenefit is the per-share refund on the dividend adjustment.
func (r *Result) DividendBenefit() float64 {
	return r.Dividend * DividendAdjustmentRate
}

// NetBenefitPerShare is the per-share net gain of the cross.
func (r *Result) NetBenefitPerShare() float64 {
	return r.ValuePerShare() - r.BorrowCost + r.DividendBenefit()
}

// SimpleYield is the entitlement value alone over price, ignoring
// borrow cost and dividends.
func (r *Result) SimpleYield() float64 {
	if r.Price <= 0 || r.Shares.Count <= 0 {
		return 0
	}
	return (r.ValuePerShare() / r.Price) * 100
}

// Display is the rendering DTO: derived fields rounded for display
// stability (2dp for yen amounts, 4dp for yields).
type Display struct {
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	SettlementMonth  int     `json:"settlement_month"`
	Price            float64 `json:"price"`
	RequiredShares   int     `json:"required_shares"`
	SharesDisplay    string  `json:"required_shares_display"`
	RequiredAmount   float64 `json:"required_amount"`
	Value            float64 `json:"yuutai_value"`
	Content          string  `json:"yuutai_content"`
	BorrowCost       float64 `json:"gyaku_hiboku"`
	Dividend         float64 `json:"dividend"`
	DividendBenefit  float64 `json:"dividend_benefit"`
	NetBenefit       float64 `json:"net_benefit_per_share"`
	SimpleYield      float64 `json:"simple_yield"`
	Performance      float64 `json:"performance"`
	IsTaishaku       bool    `json:"is_taishaku"`
	IsDifferential   bool    `json:"is_differential"`
	Restriction      string  `json:"restriction"`
}

// Display converts the result to its rounded rendering form.
func (r *Result) Display() Display {
	return Display{
		Code:            r.Code,
		Name:            r.Name,
		SettlementMonth: r.SettlementMonth,
		Price:           r.Price,
		RequiredShares:  r.Shares.Count,
		SharesDisplay:   r.Shares.Display(),
		RequiredAmount:  r.RequiredAmount(),
		Value:           r.Value,
		Content:         r.Content,
		BorrowCost:      r.BorrowCost,
		Dividend:        r.Dividend,
		DividendBenefit: round2(r.DividendBenefit()),
		NetBenefit:      round2(r.NetBenefitPerShare()),
		SimpleYield:     round4(r.SimpleYield()),
		Performance:     round4(r.Performance),
		IsTaishaku:      r.IsTaishaku,
		IsDifferential:  r.Shares.IsDifferential,
		Restriction:     r.Restriction,
	}
}

// Calculate applies the net-yield formula. Every division short-
// circuits to 0 on a zero or negative denominator: an unpriceable or
// zero-share entry is "no opportunity", not an error.
func Calculate(value float64, shares int, borrowCost, dividend, price float64) float64 {
	if price <= 0 || shares <= 0 {
		return 0.0
	}

	valuePerShare := value / float64(shares)
	dividendBenefit := dividend * DividendAdjustmentRate
	netBenefit := valuePerShare - borrowCost + dividendBenefit

	return (netBenefit / price) * 100
}

// Engine computes performance for every registry row against a
// reconciled per-stock view.
// ⭐ SSOT: パフォーマンス計算はこのエンジンでのみ行う
type Engine struct {
	logger *logger.Logger
}

// NewEngine creates a performance engine.
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{logger: log}
}

// Resolver maps a code to its reconciled view. *reconcile.Reconciler
// satisfies it.
type Resolver interface {
	Resolve(code string) (reconcile.View, bool)
}

// CalculateAll computes one Result per registry row, filtered to the
// given settlement month (0 = all months), sorted by performance
// descending. Rows absent from the month's inventory snapshot are
// silently skipped. The output is deterministic: identical inputs
// produce an identical, order-stable slice.
func (e *Engine) CalculateAll(reg registry.Registry, resolve Resolver, month int) []Result {
	results := make([]Result, 0, len(reg))

	for _, rec := range reg {
		if month != 0 && rec.SettlementMonth != month {
			continue
		}

		view, ok := resolve.Resolve(rec.Code)
		if !ok {
			// 在庫スナップショットにない銘柄はスキップ
			continue
		}

		perf := Calculate(rec.Value, rec.Shares.Count, view.BorrowCost, view.Dividend, view.Price)

		name := rec.Name
		if name == "" {
			name = view.Name
		}

		results = append(results, Result{
			Code:            rec.Code,
			Name:            name,
			SettlementMonth: rec.SettlementMonth,
			Price:           view.Price,
			Shares:          rec.Shares,
			Value:           rec.Value,
			Content:         rec.Content,
			BorrowCost:      view.BorrowCost,
			Dividend:        view.Dividend,
			Performance:     perf,
			IsTaishaku:      view.IsTaishaku,
			Restriction:     view.Restriction,
		})
	}

	// Stable sort keeps registry order on ties, so repeated runs over
	// identical inputs emit identical orderings.
	SortByPerformance(results)

	if e.logger != nil {
		e.logger.WithFields(map[string]interface{}{
			"month":   month,
			"results": len(results),
		}).Debug("Performance calculation completed")
	}

	return results
}

// SortByPerformance orders results descending, stable on ties.
func SortByPerformance(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Performance > results[j].Performance
	})
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
