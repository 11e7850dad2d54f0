// Package jobs implements the scheduled refresh jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/3vaseline3-ai/yuutai-site/internal/calendar"
	"github.com/3vaseline3-ai/yuutai-site/internal/external/gokigen"
	"github.com/3vaseline3-ai/yuutai-site/internal/inventory"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

// InventoryJob captures the inventory snapshot of every settlement
// month once per evening, after brokers update their counts.
// ⭐ SSOT: 在庫スナップショットの定期取得はこのJobでのみ
type InventoryJob struct {
	client *gokigen.Client
	store  *inventory.Store
	logger *logger.Logger
}

// NewInventoryJob creates a new inventory capture job.
func NewInventoryJob(client *gokigen.Client, store *inventory.Store, log *logger.Logger) *InventoryJob {
	return &InventoryJob{
		client: client,
		store:  store,
		logger: log,
	}
}

// Name returns the job name
func (j *InventoryJob) Name() string {
	return "inventory_capture"
}

// Schedule returns the cron schedule (every evening at 7 PM JST)
func (j *InventoryJob) Schedule() string {
	return "0 0 19 * * *"
}

// Run fetches and stores all 12 monthly snapshots. A month that fails
// is logged and skipped so one bad response never loses the rest.
func (j *InventoryJob) Run(ctx context.Context) error {
	now := calendar.Now()
	stamp := now.Format("20060102")

	var failed int
	for month := 1; month <= 12; month++ {
		items, err := j.client.FetchZaiko(ctx, month)
		if err != nil {
			j.logger.WithField("month", month).WithError(err).Warn("Inventory fetch failed")
			failed++
			continue
		}

		snap := gokigen.Normalize(items, month, stamp, now)
		if _, err := j.store.Save(snap); err != nil {
			return fmt.Errorf("save month %d snapshot: %w", month, err)
		}
	}

	if failed == 12 {
		return fmt.Errorf("every month's inventory fetch failed")
	}

	j.logger.WithFields(map[string]interface{}{
		"stamp":  stamp,
		"failed": failed,
	}).Info("Inventory capture completed")

	return nil
}
