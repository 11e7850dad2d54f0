package jobs

import (
	"context"
	"fmt"

	"github.com/3vaseline3-ai/yuutai-site/internal/calendar"
	"github.com/3vaseline3-ai/yuutai-site/internal/external/yahoo"
	"github.com/3vaseline3-ai/yuutai-site/internal/prices"
	"github.com/3vaseline3-ai/yuutai-site/internal/registry"
	"github.com/3vaseline3-ai/yuutai-site/pkg/config"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

// PriceJob refreshes the live price snapshot for every registered
// code after the Tokyo close.
// ⭐ SSOT: 株価の定期更新はこのJobでのみ
type PriceJob struct {
	client *yahoo.Client
	cfg    *config.Config
	logger *logger.Logger
}

// NewPriceJob creates a new price refresh job.
func NewPriceJob(client *yahoo.Client, cfg *config.Config, log *logger.Logger) *PriceJob {
	return &PriceJob{
		client: client,
		cfg:    cfg,
		logger: log,
	}
}

// Name returns the job name
func (j *PriceJob) Name() string {
	return "price_refresh"
}

// Schedule returns the cron schedule (weekdays at 4 PM JST, after the
// Tokyo close)
func (j *PriceJob) Schedule() string {
	return "0 0 16 * * 1-5"
}

// Run fetches every registered code's price and replaces the price
// snapshot file. Codes that fail are skipped; a partial snapshot is
// still better than a stale one.
func (j *PriceJob) Run(ctx context.Context) error {
	reg, err := registry.Load(j.cfg.KachiCSV())
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	if len(reg) == 0 {
		j.logger.Warn("Registry is empty, nothing to fetch")
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

	lookup, failed := j.client.FetchAll(ctx, codes)
	if len(lookup) == 0 {
		return fmt.Errorf("every price fetch failed (%d codes)", len(failed))
	}

	if err := prices.Save(j.cfg.LatestPricesJSON(), lookup, calendar.Now()); err != nil {
		return fmt.Errorf("save price snapshot: %w", err)
	}

	return nil
}
