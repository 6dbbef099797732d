package models

import (
	"errors"
	"fmt"
)

// DatabaseEntry is one validated row of the database table.
type DatabaseEntry struct {
	Filename     string
	RegionType   string
	Source       string
	AnnotationBy AnnotationBy
	MaxDistance  int64
	DistanceTo   DistanceAnchor
	NHits        HitSelection
	// NameCol is the 0-based label column for NAME mode; nil uses column 4.
	NameCol *int
	// Row is the 1-based data row in the database table.
	Row int
}

// Validate checks the fields of a single entry.
func (e *DatabaseEntry) Validate() error {
	if e.Filename == "" {
		return errors.New("filename is required")
	}
	if e.RegionType == "" {
		return errors.New("region type is required")
	}
	if !e.AnnotationBy.Valid() {
		return fmt.Errorf("invalid annotation mode %q", e.AnnotationBy)
	}
	if e.AnnotationBy == AnnotateBySource && e.Source == "" {
		return errors.New("source is required when annotating by SOURCE")
	}
	if !e.DistanceTo.Valid() {
		return fmt.Errorf("invalid distance anchor %q", e.DistanceTo)
	}
	if !e.NHits.Valid() {
		return fmt.Errorf("invalid hit selection %q", e.NHits)
	}
	if e.MaxDistance < 0 {
		return errors.New("max distance must not be negative")
	}
	if e.NameCol != nil && *e.NameCol < 0 {
		return errors.New("name column must not be negative")
	}
	return nil
}

// String identifies the entry in logs.
func (e *DatabaseEntry) String() string {
	return fmt.Sprintf("row %d %s/%s (%s)", e.Row, e.RegionType, e.Source, e.Filename)
}
