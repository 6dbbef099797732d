package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RunStatus is the outcome of an annotation run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// EntryState is the state reached by one database entry within a run.
type EntryState string

const (
	EntrySkipped   EntryState = "skipped"
	EntryRunning   EntryState = "running"
	EntryCompleted EntryState = "completed"
	EntryFailed    EntryState = "failed"
)

// AnnotationRun tracks one invocation of the annotator.
type AnnotationRun struct {
	bun.BaseModel `bun:"table:annotation_runs,alias:ar"`

	ID               int64      `bun:"id,pk,autoincrement" json:"id"`
	RunID            string     `bun:"run_id,unique,notnull" json:"run_id"`
	BaseFile         string     `bun:"base_file,notnull" json:"base_file"`
	DatabaseFile     string     `bun:"database_file,notnull" json:"database_file"`
	StartTime        time.Time  `bun:"start_time,notnull" json:"start_time"`
	EndTime          *time.Time `bun:"end_time" json:"end_time,omitempty"`
	Status           RunStatus  `bun:"status,notnull" json:"status"`
	EntriesCompleted int        `bun:"entries_completed,default:0" json:"entries_completed"`
	EntriesSkipped   int        `bun:"entries_skipped,default:0" json:"entries_skipped"`
	HitsTotal        int        `bun:"hits_total,default:0" json:"hits_total"`
	ErrorLog         *string    `bun:"error_log" json:"error_log,omitempty"`
	CreatedAt        time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`

	Entries []*EntryRecord `bun:"rel:has-many,join:run_id=run_id" json:"entries,omitempty"`
}

// EntryRecord tracks the processing of one database entry within a run.
type EntryRecord struct {
	bun.BaseModel `bun:"table:annotation_entries,alias:ae"`

	ID           int64        `bun:"id,pk,autoincrement" json:"id"`
	RunID        string       `bun:"run_id,notnull" json:"run_id"`
	Row          int          `bun:"row_num,notnull" json:"row"`
	Filename     string       `bun:"filename,notnull" json:"filename"`
	RegionType   string       `bun:"region_type,notnull" json:"region_type"`
	Source       string       `bun:"source" json:"source"`
	AnnotationBy AnnotationBy `bun:"annotation_by,notnull" json:"annotation_by"`
	State        EntryState   `bun:"state,notnull" json:"state"`
	Hits         int          `bun:"hits,default:0" json:"hits"`
	Bases        int          `bun:"bases,default:0" json:"bases"`
	DurationMS   int64        `bun:"duration_ms,default:0" json:"duration_ms"`
	CreatedAt    time.Time    `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`

	Run *AnnotationRun `bun:"rel:belongs-to,join:run_id=run_id" json:"-"`
}

// Finished reports whether the run has left the running state.
func (r *AnnotationRun) Finished() bool {
	return r.Status != RunRunning
}

// Duration returns the wall time of a finished run, or 0.
func (r *AnnotationRun) Duration() time.Duration {
	if r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}
