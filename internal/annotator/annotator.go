// Package annotator runs the database entries of a catalog against a base
// table, in catalog order, and accumulates the hits into per region type
// columns.
package annotator

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/mkoziy/genome/annotator/internal/accumulator"
	"github.com/mkoziy/genome/annotator/internal/catalog"
	apperrors "github.com/mkoziy/genome/annotator/internal/errors"
	"github.com/mkoziy/genome/annotator/internal/match"
	"github.com/mkoziy/genome/annotator/internal/metrics"
	"github.com/mkoziy/genome/annotator/internal/models"
	"github.com/mkoziy/genome/annotator/internal/sources/bed"
	"github.com/mkoziy/genome/annotator/internal/store"
)

// Annotator holds the inputs of one annotation run.
type Annotator struct {
	logger     *zap.Logger
	metrics    *metrics.Metrics
	ledger     *bun.DB
	unset      string
	checkFiles bool
	builder    *bed.Builder

	base         *store.Table
	baseFile     string
	entries      []models.DatabaseEntry
	databaseFile string
}

// Option is a functional option for configuring the Annotator.
type Option func(*Annotator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Annotator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics records entry outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Annotator) {
		a.metrics = m
	}
}

// WithLedger records every run and entry in db. db must be migrated.
func WithLedger(db *bun.DB) Option {
	return func(a *Annotator) {
		a.ledger = db
	}
}

// WithUnset sets the sentinel used for unset cells when loading the base
// table. It defaults to store.DefaultUnset.
func WithUnset(unset string) Option {
	return func(a *Annotator) {
		a.unset = unset
	}
}

// WithCheckFiles makes Annotate verify that every reference file exists
// before any entry is processed.
func WithCheckFiles(check bool) Option {
	return func(a *Annotator) {
		a.checkFiles = check
	}
}

// New creates an Annotator with no inputs loaded.
func New(opts ...Option) *Annotator {
	a := &Annotator{
		logger: zap.NewNop(),
		unset:  store.DefaultUnset,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.builder = bed.NewBuilder(a.logger)
	return a
}

// LoadBase reads the base table from path.
func (a *Annotator) LoadBase(path string) error {
	t, err := store.LoadFile(path, a.unset)
	if err != nil {
		return fmt.Errorf("failed to load base table: %w", err)
	}
	a.base = t
	a.baseFile = path
	a.logger.Info("Loaded base table",
		zap.String("file", path),
		zap.Int("rows", t.Rows()),
		zap.Int("intervals", t.Len()),
		zap.Strings("region_types", t.RegionTypes()))
	return nil
}

// SetBase uses an already loaded base table.
func (a *Annotator) SetBase(t *store.Table) {
	a.base = t
}

// LoadDatabase reads the database table from path.
func (a *Annotator) LoadDatabase(path string) error {
	entries, err := catalog.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load database table: %w", err)
	}
	a.entries = entries
	a.databaseFile = path
	a.logger.Info("Loaded database table", zap.String("file", path), zap.Int("entries", len(entries)))
	return nil
}

// SetDatabase uses already parsed database entries.
func (a *Annotator) SetDatabase(entries []models.DatabaseEntry) {
	a.entries = entries
}

// Table returns the base table, annotated once Annotate has run.
func (a *Annotator) Table() *store.Table {
	return a.base
}

// Summary reports the outcome of Annotate.
type Summary struct {
	RunID     string
	Completed int
	Skipped   int
	Hits      int
	Elapsed   time.Duration
}

// Annotate processes every database entry in order. Entries whose results
// are already present in the base table are skipped. The first error
// aborts the run; columns merged before it stay in the table.
func (a *Annotator) Annotate(ctx context.Context) (Summary, error) {
	var summary Summary
	if a.base == nil {
		return summary, apperrors.State("base table is not loaded")
	}
	if a.entries == nil {
		return summary, apperrors.State("database table is not loaded")
	}

	start := time.Now()
	run := a.startRun(ctx)
	if run != nil {
		summary.RunID = run.RunID
	}

	err := a.annotate(ctx, run, &summary)
	summary.Elapsed = time.Since(start)

	status := models.RunCompleted
	if err != nil {
		status = models.RunFailed
	}
	a.finishRun(ctx, run, status, err)
	if err != nil {
		return summary, err
	}

	a.logger.Info("Annotation finished",
		zap.Int("completed", summary.Completed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("hits", summary.Hits),
		zap.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

func (a *Annotator) annotate(ctx context.Context, run *models.AnnotationRun, summary *Summary) error {
	if err := catalog.Validate(a.entries); err != nil {
		return err
	}
	if a.checkFiles {
		if err := catalog.CheckFiles(a.entries); err != nil {
			return err
		}
	}

	idx, err := a.base.Index()
	if err != nil {
		return fmt.Errorf("failed to index base table: %w", err)
	}
	acc := accumulator.New(a.base)

	for i := range a.entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry := &a.entries[i]
		log := a.logger.With(
			zap.Int("row", entry.Row),
			zap.String("region_type", entry.RegionType),
			zap.String("source", entry.Source))

		if acc.IsDone(entry.RegionType, entry.Source, entry.AnnotationBy) {
			log.Info("Skipping entry, results already present")
			summary.Skipped++
			if a.metrics != nil {
				a.metrics.RecordSkipped()
			}
			a.recordEntry(ctx, run, newEntryRecord(entry, models.EntrySkipped))
			continue
		}

		rec := newEntryRecord(entry, models.EntryRunning)
		a.recordEntry(ctx, run, rec)

		began := time.Now()
		hits, bases, err := a.processEntry(acc, idx, entry)
		elapsed := time.Since(began)
		rec.DurationMS = elapsed.Milliseconds()
		if err != nil {
			log.Error("Entry failed", zap.Error(err))
			if a.metrics != nil {
				a.metrics.RecordFailed()
			}
			rec.State = models.EntryFailed
			a.recordEntry(ctx, run, rec)
			return fmt.Errorf("entry %s: %w", entry, err)
		}

		log.Info("Annotated entry",
			zap.Int("hits", hits),
			zap.Int("bases", bases),
			zap.Duration("elapsed", elapsed))
		summary.Completed++
		summary.Hits += hits
		if a.metrics != nil {
			a.metrics.RecordCompleted(entry.RegionType, hits, bases, elapsed)
		}
		rec.State = models.EntryCompleted
		rec.Hits = hits
		rec.Bases = bases
		a.recordEntry(ctx, run, rec)
	}
	return nil
}

func (a *Annotator) processEntry(acc *accumulator.Accumulator, idx match.Index, entry *models.DatabaseEntry) (int, int, error) {
	refs, err := a.builder.Build(entry)
	if err != nil {
		return 0, 0, err
	}
	acc.Init(entry.RegionType)
	hits := match.Match(idx, entry.RegionType, refs)
	bases, err := acc.MergeAll(entry.RegionType, hits, entry.NHits)
	if err != nil {
		return 0, 0, err
	}
	return len(hits), bases, nil
}
