package workers

import (
	"context"
	"time"

	"devwise/internal/adapters/config"
	"devwise/internal/domain/proposal"
	"devwise/internal/domain/research"
	"devwise/internal/metrics"
)

// JobReaperWorker fails research jobs and proposal extractions stuck in
// processing. External calls have explicit timeouts, so anything still
// processing past its deadline died without reaching its failure path.
type JobReaperWorker struct {
	*BaseWorker

	jobs      research.Repository
	proposals proposal.Repository

	researchStaleAfter   time.Duration
	extractionStaleAfter time.Duration
}

// NewJobReaperWorker creates the stale job reaper
func NewJobReaperWorker(
	jobs research.Repository,
	proposals proposal.Repository,
	cfg config.WorkerConfig,
) *JobReaperWorker {
	return &JobReaperWorker{
		BaseWorker:           NewBaseWorker("job_reaper", cfg.JobReaperInterval, true),
		jobs:                 jobs,
		proposals:            proposals,
		researchStaleAfter:   cfg.ResearchStaleAfter,
		extractionStaleAfter: cfg.ExtractionStaleAfter,
	}
}

// Run fails everything stuck in processing past its deadline
func (w *JobReaperWorker) Run(ctx context.Context) error {
	start := time.Now()
	now := time.Now()

	reapedJobs, err := w.jobs.FailStale(ctx, now.Add(-w.researchStaleAfter))
	if err != nil {
		w.RecordError(err, time.Since(start))
		return err
	}
	if reapedJobs > 0 {
		metrics.ReapedJobs.WithLabelValues("research").Add(float64(reapedJobs))
		w.Log().Infow("Failed stale research jobs", "count", reapedJobs)
	}

	reapedProposals, err := w.proposals.FailStale(ctx, now.Add(-w.extractionStaleAfter))
	if err != nil {
		w.RecordError(err, time.Since(start))
		return err
	}
	if reapedProposals > 0 {
		metrics.ReapedJobs.WithLabelValues("extraction").Add(float64(reapedProposals))
		w.Log().Infow("Failed stale extractions", "count", reapedProposals)
	}

	w.RecordRun(time.Since(start))
	return nil
}
