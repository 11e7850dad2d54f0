// Package reconcile merges the independently-updated data sources
// (inventory snapshot, per-code histories, live prices) into a single
// per-stock view, applying documented fallback chains for every field.
package reconcile

import (
	"github.com/3vaseline3-ai/yuutai-site/internal/history"
	"github.com/3vaseline3-ai/yuutai-site/internal/inventory"
	"github.com/3vaseline3-ai/yuutai-site/internal/prices"
)

// HistorySource loads per-code histories. *history.Store satisfies it;
// tests supply an in-memory map.
type HistorySource interface {
	Load(code string) (*history.Stock, error)
}

// View is the reconciled per-stock input to the performance engine.
// A zero Price means "unpriceable"; the engine turns that into a
// defined zero performance rather than an error.
type View struct {
	Code         string
	Name         string
	Price        float64
	BorrowCost   float64 // 5年平均逆日歩（1株あたり）
	Dividend     float64 // 1株あたり配当
	Restriction  string
	IsTaishaku   bool
	HasInventory bool
	MaxGyaku     int // theoretical ceiling, 0 when unreported
}

// Reconciler resolves stock views against one month's snapshot.
type Reconciler struct {
	snapshot  *inventory.Snapshot
	histories HistorySource
	prices    prices.Lookup
}

// New creates a reconciler over the three sources. snapshot may be nil
// (no inventory captured for the month): every lookup then misses.
func New(snapshot *inventory.Snapshot, histories HistorySource, priceLookup prices.Lookup) *Reconciler {
	return &Reconciler{
		snapshot:  snapshot,
		histories: histories,
		prices:    priceLookup,
	}
}

// Resolve produces the reconciled view for a code. The second return
// is false when the code is absent from the month's inventory
// snapshot; such codes are silently excluded from results.
//
// Fallback chains (a later step applies only when the prior value is
// absent, never when it is merely zero):
//
//	price:       live lookup → snapshot price → latest history close → 0
//	borrow cost: snapshot 5yr average → 0
//	dividend:    snapshot dividend → latest actual → latest forecast → 0
//	restriction: snapshot restriction → ""
func (r *Reconciler) Resolve(code string) (View, bool) {
	stock, ok := r.snapshot.Get(code)
	if !ok {
		return View{}, false
	}

	hist := r.loadHistory(code)

	view := View{
		Code:         code,
		Name:         stock.Name,
		Price:        r.resolvePrice(code, stock, hist),
		BorrowCost:   resolveBorrowCost(stock),
		Dividend:     resolveDividend(stock, hist),
		Restriction:  stock.Restriction,
		IsTaishaku:   stock.IsTaishaku,
		HasInventory: stock.HasInventory(),
	}
	if stock.MaxGyaku != nil {
		view.MaxGyaku = *stock.MaxGyaku
	}

	return view, true
}

func (r *Reconciler) loadHistory(code string) *history.Stock {
	if r.histories == nil {
		return &history.Stock{Code: code}
	}

	hist, err := r.histories.Load(code)
	if err != nil || hist == nil {
		// Missing history is steady state, not an error
		return &history.Stock{Code: code}
	}
	return hist
}

func (r *Reconciler) resolvePrice(code string, stock *inventory.Stock, hist *history.Stock) float64 {
	if price, ok := r.prices.Get(code); ok {
		return price
	}
	if stock.Price != nil {
		return float64(*stock.Price)
	}
	if closePrice, ok := hist.LatestClosePrice(); ok {
		return closePrice
	}
	return 0
}

func resolveBorrowCost(stock *inventory.Stock) float64 {
	if stock.Avg5Gyaku != nil {
		return *stock.Avg5Gyaku
	}
	return 0
}

func resolveDividend(stock *inventory.Stock, hist *history.Stock) float64 {
	if stock.Dividend != nil {
		return float64(*stock.Dividend)
	}
	if amount, ok := hist.LatestDividend(); ok {
		return amount
	}
	return 0
}
