// Package match intersects reference intervals with the base table and
// computes strand-aware signed distances.
package match

import (
	"github.com/biogo/biogo/feat"

	"github.com/mkoziy/genome/annotator/internal/models"
)

// Index is the overlap query surface of the base table.
type Index interface {
	Overlapping(chrom string, start, end int64) []models.BaseInterval
}

// Match returns one hit per (base, reference) pair whose padded reference
// window shares at least one base with the base interval. Hits are
// ordered by reference, then by base table order.
func Match(idx Index, regionType string, refs []models.ReferenceInterval) []models.Hit {
	var hits []models.Hit
	for _, ref := range refs {
		for _, base := range idx.Overlapping(ref.Chrom, ref.Start, ref.End) {
			hits = append(hits, models.Hit{
				BaseID:     base.ID,
				RegionType: regionType,
				Label:      ref.Label,
				Distance:   Distance(base.Span, ref.Original, ref.Strand),
				Order:      len(hits),
			})
		}
	}
	return hits
}

// Distance is the signed gap between base and the unpadded reference
// interval db. It is 0 when they overlap, negative when base lies
// upstream of db and positive when downstream, relative to db's strand.
func Distance(base, db models.Span, strand feat.Orientation) int64 {
	var d int64
	switch {
	case db.End <= base.Start:
		d = base.Start - db.End
	case base.End <= db.Start:
		// Upstream of a forward interval: negative, e.g. base [100,200)
		// and db [300,310) give -100.
		d = -(db.Start - base.End)
	default:
		return 0
	}
	if strand == feat.Reverse {
		d = -d
	}
	return d
}
