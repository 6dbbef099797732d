package annotator

import (
	"context"

	"go.uber.org/zap"

	"github.com/mkoziy/genome/annotator/internal/models"
	"github.com/mkoziy/genome/annotator/internal/repositories"
)

// The ledger is an audit trail. Write failures are logged and never abort
// an annotation run.

func (a *Annotator) startRun(ctx context.Context) *models.AnnotationRun {
	if a.ledger == nil {
		return nil
	}
	run, err := repositories.StartRun(ctx, a.ledger, a.baseFile, a.databaseFile)
	if err != nil {
		a.logger.Warn("Failed to record run start", zap.Error(err))
		return nil
	}
	a.logger.Debug("Recording run", zap.String("run_id", run.RunID))
	return run
}

func newEntryRecord(entry *models.DatabaseEntry, state models.EntryState) *models.EntryRecord {
	return &models.EntryRecord{
		Row:          entry.Row,
		Filename:     entry.Filename,
		RegionType:   entry.RegionType,
		Source:       entry.Source,
		AnnotationBy: entry.AnnotationBy,
		State:        state,
	}
}

func (a *Annotator) recordEntry(ctx context.Context, run *models.AnnotationRun, rec *models.EntryRecord) {
	if run == nil {
		return
	}
	if err := repositories.RecordEntry(ctx, a.ledger, run, rec); err != nil {
		a.logger.Warn("Failed to record entry",
			zap.String("run_id", run.RunID),
			zap.String("state", string(rec.State)),
			zap.Error(err))
	}
}

func (a *Annotator) finishRun(ctx context.Context, run *models.AnnotationRun, status models.RunStatus, cause error) {
	if run == nil {
		return
	}
	// A cancelled run still gets its final status.
	ctx = context.WithoutCancel(ctx)
	if err := repositories.FinishRun(ctx, a.ledger, run, status, cause); err != nil {
		a.logger.Warn("Failed to record run end", zap.String("run_id", run.RunID), zap.Error(err))
	}
}
