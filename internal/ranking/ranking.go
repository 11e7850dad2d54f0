// Package ranking orders performance results. Two yield modes exist:
// the simple performance sort the engine already emits, and the
// month-bucketed 月利回り used by the ranking CLI, which degrades the
// yield by the number of month-end crossings until settlement.
package ranking

import (
	"sort"

	"github.com/3vaseline3-ai/yuutai-site/internal/interest"
	"github.com/3vaseline3-ai/yuutai-site/internal/inventory"
	"github.com/3vaseline3-ai/yuutai-site/internal/perform"
	"github.com/3vaseline3-ai/yuutai-site/internal/registry"
)

// MonthsToCross counts the month-end crossings, current partial month
// included, from currentMonth until targetMonth settles. Always in
// [1, 12] for valid months; targets behind the current month wrap into
// next year.
func MonthsToCross(targetMonth, currentMonth int) int {
	if targetMonth >= currentMonth {
		return targetMonth - currentMonth + 1
	}
	return (12 - currentMonth) + targetMonth + 1
}

// Entry is one row of the monthly-yield ranking.
type Entry struct {
	Code         string
	Name         string
	MonthlyYield float64 // %
	Months       int     // month-end crossings until settlement
	Price        int
	Stock        *inventory.Stock
}

// MonthlyYield computes the per-crossing yield of one stock:
//
//	(1株優待価値 - 金利) ÷ 株価 × 100 ÷ 月末をまたぐ回数
//
// Zero or negative price, lot or value yields 0.
func MonthlyYield(price float64, requiredShares int, value float64, annualRatePct float64, months int) float64 {
	if price <= 0 || requiredShares <= 0 || value <= 0 {
		return 0
	}

	valuePerShare := value / float64(requiredShares)
	interestCost := interest.CostPerShareMonths(price, annualRatePct, months)

	return (valuePerShare - interestCost) / price * 100 / float64(months)
}

// Ranker produces monthly-yield rankings.
type Ranker struct {
	annualRatePct float64
}

// NewRanker creates a ranker with the financing rate (年利%).
func NewRanker(annualRatePct float64) *Ranker {
	return &Ranker{annualRatePct: annualRatePct}
}

// MonthlyRanking ranks the target month's snapshot by monthly yield,
// descending. A stock qualifies only when it has available borrow
// inventory (some broker > 0) and an exact-code registry entry; the
// registry supplies the share tier and entitlement value. limit <= 0
// means no limit. currentMonth is injected so runs are reproducible.
func (r *Ranker) MonthlyRanking(snap *inventory.Snapshot, reg registry.Registry, targetMonth, currentMonth, limit int) []Entry {
	if snap == nil {
		return nil
	}

	byCode := reg.ByCode()
	months := MonthsToCross(targetMonth, currentMonth)

	// Iterate codes in sorted order so ties rank deterministically.
	codes := make([]string, 0, len(snap.Stocks))
	for code := range snap.Stocks {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var entries []Entry
	for _, code := range codes {
		stock := snap.Stocks[code]
		if !stock.HasInventory() {
			continue
		}

		rec, ok := byCode[code]
		if !ok {
			continue // 優待登録のない銘柄は対象外
		}

		price := 0
		if stock.Price != nil {
			price = *stock.Price
		}

		yield := MonthlyYield(float64(price), rec.Shares.Count, rec.Value, r.annualRatePct, months)

		name := rec.Name
		if name == "" {
			name = stock.Name
		}

		entries = append(entries, Entry{
			Code:         code,
			Name:         name,
			MonthlyYield: yield,
			Months:       months,
			Price:        price,
			Stock:        stock,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].MonthlyYield > entries[j].MonthlyYield
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries
}

// Top truncates a performance-sorted result slice.
func Top(results []perform.Result, limit int) []perform.Result {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
