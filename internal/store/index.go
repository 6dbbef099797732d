package store

import (
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/mkoziy/genome/annotator/internal/models"
)

const (
	minBranch = 25
	maxBranch = 50
)

// node is a base interval stored in the R-tree.
type node struct {
	ord      int
	interval models.BaseInterval
	rect     rtreego.Rect
}

func (n *node) Bounds() rtreego.Rect {
	return n.rect
}

// Index answers overlap queries against the base intervals of a Table.
// It holds one 1-D R-tree per chromosome.
type Index struct {
	trees map[string]*rtreego.Rtree
	size  int
}

func spanRect(start, end int64) (rtreego.Rect, error) {
	return rtreego.NewRect(rtreego.Point{float64(start)}, []float64{float64(end - start)})
}

func newIndex(intervals []models.BaseInterval) (*Index, error) {
	idx := &Index{trees: make(map[string]*rtreego.Rtree)}
	for i, iv := range intervals {
		rect, err := spanRect(iv.Start, iv.End)
		if err != nil {
			return nil, fmt.Errorf("index %s: %w", iv.ID, err)
		}
		tree, ok := idx.trees[iv.Chrom]
		if !ok {
			tree = rtreego.NewTree(1, minBranch, maxBranch)
			idx.trees[iv.Chrom] = tree
		}
		tree.Insert(&node{ord: i, interval: iv, rect: rect})
		idx.size++
	}
	return idx, nil
}

// Len returns the number of indexed intervals.
func (idx *Index) Len() int {
	return idx.size
}

// Overlapping returns the base intervals sharing at least one base with
// [start, end) on chrom, in table order. Touching intervals are excluded.
func (idx *Index) Overlapping(chrom string, start, end int64) []models.BaseInterval {
	if end <= start {
		return nil
	}
	tree, ok := idx.trees[chrom]
	if !ok {
		return nil
	}
	rect, err := spanRect(start, end)
	if err != nil {
		return nil
	}

	query := models.Span{Chrom: chrom, Start: start, End: end}
	found := tree.SearchIntersect(rect)
	nodes := make([]*node, 0, len(found))
	for _, sp := range found {
		n := sp.(*node)
		if n.interval.Overlaps(query) {
			nodes = append(nodes, n)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ord < nodes[j].ord })

	out := make([]models.BaseInterval, len(nodes))
	for i, n := range nodes {
		out[i] = n.interval
	}
	return out
}
