// Package pipeline assembles the on-disk data stores into the
// performance engine: registry, inventory snapshots, histories and the
// live price lookup come together here and nowhere else.
package pipeline

import (
	"fmt"

	"github.com/3vaseline3-ai/yuutai-site/internal/history"
	"github.com/3vaseline3-ai/yuutai-site/internal/inventory"
	"github.com/3vaseline3-ai/yuutai-site/internal/perform"
	"github.com/3vaseline3-ai/yuutai-site/internal/prices"
	"github.com/3vaseline3-ai/yuutai-site/internal/reconcile"
	"github.com/3vaseline3-ai/yuutai-site/internal/registry"
	"github.com/3vaseline3-ai/yuutai-site/pkg/config"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

// Pipeline loads the stores lazily and feeds them to the engine.
// ⭐ SSOT: ストアとエンジンの組み立てはこのパッケージでのみ行う
type Pipeline struct {
	cfg    *config.Config
	logger *logger.Logger

	engine    *perform.Engine
	inventory *inventory.Store
	histories *history.Store
}

// New creates a pipeline over the configured data directory.
func New(cfg *config.Config, log *logger.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		logger:    log,
		engine:    perform.NewEngine(log),
		inventory: inventory.NewStore(cfg.ZaikoDir()),
		histories: history.NewStore(cfg.GyakuHibokuDir(), cfg.DividendDir()),
	}
}

// Registry loads the entitlement registry.
func (p *Pipeline) Registry() (registry.Registry, error) {
	reg, err := registry.Load(p.cfg.KachiCSV())
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	return reg, nil
}

// Snapshot returns the latest inventory snapshot of a month, nil when
// none has been captured.
func (p *Pipeline) Snapshot(month int) (*inventory.Snapshot, error) {
	return p.inventory.LoadLatest(month)
}

// Prices loads the live price lookup, empty when never fetched.
func (p *Pipeline) Prices() (prices.Lookup, error) {
	return prices.Load(p.cfg.LatestPricesJSON())
}

// BorrowHistory returns a code's borrow-cost history.
func (p *Pipeline) BorrowHistory(code string) ([]history.BorrowCostRecord, error) {
	stock, err := p.histories.Load(code)
	if err != nil {
		return nil, err
	}
	return stock.BorrowCosts, nil
}

// Resolver builds the reconciled per-stock view source for a month.
func (p *Pipeline) Resolver(month int) (*reconcile.Reconciler, error) {
	snap, err := p.Snapshot(month)
	if err != nil {
		return nil, err
	}

	lookup, err := p.Prices()
	if err != nil {
		return nil, err
	}

	return reconcile.New(snap, p.histories, lookup), nil
}

// Results computes the performance table for a settlement month.
// Month 0 computes every month against its own snapshot and returns
// one descending-sorted slice.
func (p *Pipeline) Results(month int) ([]perform.Result, error) {
	reg, err := p.Registry()
	if err != nil {
		return nil, err
	}

	if month != 0 {
		resolver, err := p.Resolver(month)
		if err != nil {
			return nil, err
		}
		return p.engine.CalculateAll(reg, resolver, month), nil
	}

	var all []perform.Result
	for m := 1; m <= 12; m++ {
		resolver, err := p.Resolver(m)
		if err != nil {
			return nil, err
		}
		all = append(all, p.engine.CalculateAll(reg, resolver, m)...)
	}

	perform.SortByPerformance(all)
	return all, nil
}
