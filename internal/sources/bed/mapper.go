package bed

import (
	"strings"

	"github.com/biogo/biogo/feat"

	"github.com/mkoziy/genome/annotator/internal/models"
)

const defaultNameColumn = 3

// Label picks the annotation label of rec for entry.
func Label(rec Record, entry *models.DatabaseEntry) string {
	if entry.AnnotationBy == models.AnnotateBySource {
		return entry.Source
	}
	col := defaultNameColumn
	if entry.NameCol != nil {
		col = *entry.NameCol
	}
	if col < len(rec.Fields) {
		if name := strings.TrimSpace(rec.Fields[col]); name != "" {
			return name
		}
	}
	return rec.Span.ID()
}

// Anchor collapses span to the point selected by anchor. START and END
// follow the strand: START on the reverse strand is the high coordinate.
func Anchor(span models.Span, anchor models.DistanceAnchor, strand feat.Orientation) models.Span {
	switch anchor {
	case models.AnchorStart:
		if strand == feat.Reverse {
			return tail(span)
		}
		return head(span)
	case models.AnchorEnd:
		if strand == feat.Reverse {
			return head(span)
		}
		return tail(span)
	case models.AnchorMid:
		mid := (span.Start + span.End) / 2
		return models.Span{Chrom: span.Chrom, Start: mid, End: mid + 1}
	default:
		return span
	}
}

func head(s models.Span) models.Span {
	return models.Span{Chrom: s.Chrom, Start: s.Start, End: s.Start + 1}
}

func tail(s models.Span) models.Span {
	return models.Span{Chrom: s.Chrom, Start: s.End - 1, End: s.End}
}

// Pad widens span by d on both sides, clamping the start at 0.
func Pad(span models.Span, d int64) models.Span {
	start := span.Start - d
	if start < 0 {
		start = 0
	}
	return models.Span{Chrom: span.Chrom, Start: start, End: span.End + d}
}

// MapToReference converts a parsed record into a query interval.
func MapToReference(rec Record, entry *models.DatabaseEntry, stranded bool) models.ReferenceInterval {
	strand := feat.Forward
	if stranded {
		strand = rec.Strand()
	}
	return models.ReferenceInterval{
		Span:     Pad(Anchor(rec.Span, entry.DistanceTo, strand), entry.MaxDistance),
		Original: rec.Span,
		Label:    Label(rec, entry),
		Strand:   strand,
	}
}
