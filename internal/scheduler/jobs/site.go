package jobs

import (
	"context"
	"fmt"

	"github.com/3vaseline3-ai/yuutai-site/internal/archive"
	"github.com/3vaseline3-ai/yuutai-site/internal/calendar"
	"github.com/3vaseline3-ai/yuutai-site/internal/pipeline"
	"github.com/3vaseline3-ai/yuutai-site/internal/site"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

// SiteRebuildJob regenerates the static site from the latest data and,
// when archiving is enabled, records the run in PostgreSQL.
// ⭐ SSOT: サイト再生成のスケジュールはこのJobでのみ
type SiteRebuildJob struct {
	pipeline  *pipeline.Pipeline
	generator *site.Generator
	archive   *archive.Repository // nil when archiving is disabled
	logger    *logger.Logger
}

// NewSiteRebuildJob creates a new site rebuild job.
func NewSiteRebuildJob(p *pipeline.Pipeline, g *site.Generator, arch *archive.Repository, log *logger.Logger) *SiteRebuildJob {
	return &SiteRebuildJob{
		pipeline:  p,
		generator: g,
		archive:   arch,
		logger:    log,
	}
}

// Name returns the job name
func (j *SiteRebuildJob) Name() string {
	return "site_rebuild"
}

// Schedule returns the cron schedule (every evening at 8 PM JST, after
// inventory capture)
func (j *SiteRebuildJob) Schedule() string {
	return "0 0 20 * * *"
}

// Run regenerates every page and archives the full-month results.
func (j *SiteRebuildJob) Run(ctx context.Context) error {
	now := calendar.Now()

	if err := j.generator.GenerateAll(j.pipeline, now); err != nil {
		return fmt.Errorf("generate site: %w", err)
	}

	if j.archive != nil {
		results, err := j.pipeline.Results(0)
		if err != nil {
			return fmt.Errorf("compute results for archive: %w", err)
		}
		if err := j.archive.SaveRun(ctx, now, results); err != nil {
			// アーカイブ失敗でサイト生成を巻き戻さない
			j.logger.WithError(err).Warn("Archive write failed")
		}
	}

	return nil
}
