package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/healthsphere/internal/service"
)

// AnalysisBackfillJob re-runs check-in analysis for rows where the original
// generation call failed at submit time.
type AnalysisBackfillJob struct {
	checkins  *service.CheckinService
	batchSize uint
}

func NewAnalysisBackfillJob(checkins *service.CheckinService, batchSize uint) *AnalysisBackfillJob {
	return &AnalysisBackfillJob{checkins: checkins, batchSize: batchSize}
}

func (j *AnalysisBackfillJob) Name() string {
	return "analysis_backfill"
}

func (j *AnalysisBackfillJob) Run(ctx context.Context) error {
	if j.checkins == nil {
		return nil
	}
	batchSize := j.batchSize
	if batchSize == 0 {
		batchSize = 20
	}
	repaired, err := j.checkins.Backfill(ctx, batchSize)
	if err != nil {
		return err
	}
	if repaired > 0 {
		logutil.GetLogger(ctx).Info("backfilled check-in analyses", zap.Int("repaired", repaired))
	}
	return nil
}
