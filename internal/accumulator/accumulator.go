// Package accumulator merges match hits into the annotation columns of a
// base table and decides which database entries are already done.
package accumulator

import (
	"sort"
	"strings"

	"github.com/mkoziy/genome/annotator/internal/models"
	"github.com/mkoziy/genome/annotator/internal/store"
)

const tokenSep = ";"

// Accumulator owns the merge and completion logic over one table.
type Accumulator struct {
	table *store.Table
}

// New returns an Accumulator writing into table.
func New(table *store.Table) *Accumulator {
	return &Accumulator{table: table}
}

// Table returns the table being annotated.
func (a *Accumulator) Table() *store.Table {
	return a.table
}

// IsDone reports whether an entry's results are already in the table.
//
// A NAME column is done once any row is set. A SOURCE entry is done once
// source appears as a token of any cell in the column. A column whose
// rows are all unset is never done, so entries with zero global hits are
// recomputed on every run.
func (a *Accumulator) IsDone(regionType, source string, by models.AnnotationBy) bool {
	if !a.table.RegionTypePresent(regionType) {
		return false
	}
	for _, id := range a.table.IDs() {
		v, ok := a.table.Annotation(id, regionType)
		if !ok {
			continue
		}
		if by == models.AnnotateByName {
			return true
		}
		for _, tok := range strings.Split(v, tokenSep) {
			if TokenLabel(tok) == source {
				return true
			}
		}
	}
	return false
}

// Init declares regionType with every row unset. It is a no-op for an
// existing column, whose prior content is kept.
func (a *Accumulator) Init(regionType string) bool {
	return a.table.AddRegionType(regionType)
}

// Merge formats hits for one base interval and appends them to its cell.
// Hits are stably sorted by absolute distance; CLOSEST keeps only the
// first.
func (a *Accumulator) Merge(baseID, regionType string, hits []models.Hit, nHits models.HitSelection) error {
	if len(hits) == 0 {
		return nil
	}
	value := Format(hits, nHits)
	if prev, ok := a.table.Annotation(baseID, regionType); ok {
		value = prev + tokenSep + value
	}
	return a.table.SetAnnotation(baseID, regionType, value)
}

// MergeAll groups hits by base interval, in first-seen order, and merges
// each group. It returns the number of base intervals touched.
func (a *Accumulator) MergeAll(regionType string, hits []models.Hit, nHits models.HitSelection) (int, error) {
	var order []string
	groups := make(map[string][]models.Hit)
	for _, h := range hits {
		if _, ok := groups[h.BaseID]; !ok {
			order = append(order, h.BaseID)
		}
		groups[h.BaseID] = append(groups[h.BaseID], h)
	}
	for _, id := range order {
		if err := a.Merge(id, regionType, groups[id], nHits); err != nil {
			return 0, err
		}
	}
	return len(order), nil
}

// Select sorts a copy of hits by absolute distance, keeping input order
// for ties, and applies the selection policy.
func Select(hits []models.Hit, nHits models.HitSelection) []models.Hit {
	sorted := append([]models.Hit(nil), hits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AbsDistance() < sorted[j].AbsDistance()
	})
	if nHits == models.HitsClosest && len(sorted) > 1 {
		sorted = sorted[:1]
	}
	return sorted
}

// Format renders the selected hits as label(distance) tokens joined by ';'.
func Format(hits []models.Hit, nHits models.HitSelection) string {
	selected := Select(hits, nHits)
	tokens := make([]string, len(selected))
	for i, h := range selected {
		tokens[i] = h.Token()
	}
	return strings.Join(tokens, tokenSep)
}

// TokenLabel strips the trailing parenthesised part of a token:
// "geneA(12)" becomes "geneA".
func TokenLabel(tok string) string {
	tok = strings.TrimSpace(tok)
	if i := strings.LastIndex(tok, "("); i >= 0 && strings.HasSuffix(tok, ")") {
		return tok[:i]
	}
	return tok
}
