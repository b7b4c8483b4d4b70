// Package pipeline is the indicator aggregator: it loads the historical and
// prediction tables once and derives comparison, growth, correlation, quartile
// and distribution views from them as fresh values per call.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"sdg7-dashboard/internal/logging"
	"sdg7-dashboard/internal/metrics"
	"sdg7-dashboard/internal/model"
	"sdg7-dashboard/internal/store"
	"sdg7-dashboard/pkg/utils"
)

// DefaultJobTimeout bounds an export job whose spec sets no timeout
const DefaultJobTimeout = 5 * time.Minute

// ------------------- Export job runner -------------------

// RunExport builds the requested view and writes it, recording the job
// lifecycle in the store: running, then completed or failed.
func RunExport(ctx context.Context, ds *model.Dataset, lookup RegionLookup, em *ExportManager, jobID string, spec model.ExportJobSpec) (result model.ExportResult, err error) {
	start := time.Now()
	log := logging.With().Str("job_id", jobID).Str("view", spec.Request.View).Str("format", spec.Format).Logger()
	log.Info().Msg("starting export job")

	if err := store.UpdateJobStatus(jobID, model.StatusRunning); err != nil {
		log.Warn().Err(err).Msg("failed to mark job running")
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("export job panicked: %v", p)
		}
		status := model.StatusCompleted
		if err != nil {
			status = model.StatusFailed
			if e := store.UpdateJobStatus(jobID, model.StatusFailed); e != nil {
				log.Warn().Err(e).Msg("failed to mark job failed")
			}
			if e := store.SaveJobError(jobID, err); e != nil {
				log.Warn().Err(e).Msg("failed to record job error")
			}
			log.Error().Err(err).Dur("took", time.Since(start)).Msg("export job failed")
		}
		metrics.RecordExport(spec.Format, status, result.RecordCount, time.Since(start))
	}()

	timeout := utils.ParseDuration(spec.Timeout, DefaultJobTimeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	table, err := BuildView(ds, lookup, spec.Request)
	if err != nil {
		return result, fmt.Errorf("build view: %w", err)
	}

	result, err = em.Export(ctx, jobID, table, spec.Format, spec.File)
	if err != nil {
		return result, fmt.Errorf("export: %w", err)
	}

	if err := store.CompleteJob(jobID, result.Path, result.RecordCount); err != nil {
		return result, fmt.Errorf("complete job: %w", err)
	}

	log.Info().
		Int("rows", result.RecordCount).
		Str("path", result.Path).
		Dur("took", time.Since(start)).
		Msg("export job completed")
	return result, nil
}
