package models

import (
	"fmt"

	"github.com/biogo/biogo/feat"
)

// IntervalID builds the stable chrom_start_end identifier of an interval.
func IntervalID(chrom string, start, end int64) string {
	return fmt.Sprintf("%s_%d_%d", chrom, start, end)
}

// Span is a 0-based half-open interval on one chromosome.
type Span struct {
	Chrom string
	Start int64
	End   int64
}

// Len returns the length of the span.
func (s Span) Len() int64 { return s.End - s.Start }

// ID returns the chrom_start_end identifier of the span.
func (s Span) ID() string { return IntervalID(s.Chrom, s.Start, s.End) }

// Overlaps reports whether s and o share at least one base.
// Touching intervals do not overlap.
func (s Span) Overlaps(o Span) bool {
	return s.Chrom == o.Chrom && s.Start < o.End && o.Start < s.End
}

// BaseInterval is one row of the table being annotated.
type BaseInterval struct {
	Span
	ID string
}

// NewBaseInterval validates coordinates and derives the identifier.
func NewBaseInterval(chrom string, start, end int64) (BaseInterval, error) {
	if chrom == "" {
		return BaseInterval{}, fmt.Errorf("chromosome is required")
	}
	if start < 0 {
		return BaseInterval{}, fmt.Errorf("start %d must not be negative", start)
	}
	if start >= end {
		return BaseInterval{}, fmt.Errorf("start %d must be less than end %d", start, end)
	}
	span := Span{Chrom: chrom, Start: start, End: end}
	return BaseInterval{Span: span, ID: span.ID()}, nil
}

// ReferenceInterval is a database interval prepared for matching.
// Span holds the anchored and padded search window; Original keeps the
// coordinates as read from the reference file for distance reporting.
type ReferenceInterval struct {
	Span
	Original Span
	Label    string
	Strand   feat.Orientation
}

// TraceLabel renders label(chrom_start_end) for logs.
func (r ReferenceInterval) TraceLabel() string {
	return fmt.Sprintf("%s(%s)", r.Label, r.Original.ID())
}

// StrandSymbol returns "+" or "-".
func StrandSymbol(o feat.Orientation) string {
	if o == feat.Reverse {
		return "-"
	}
	return "+"
}

// ParseStrand maps "+" and "-" to an orientation.
func ParseStrand(s string) (feat.Orientation, bool) {
	switch s {
	case "+":
		return feat.Forward, true
	case "-":
		return feat.Reverse, true
	}
	return feat.NotOriented, false
}
