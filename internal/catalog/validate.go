package catalog

import (
	"fmt"
	"os"

	apperrors "github.com/mkoziy/genome/annotator/internal/errors"
	"github.com/mkoziy/genome/annotator/internal/models"
)

// Validate checks every entry and the rules that span rows: all entries
// of a region type agree on ANNOTATION.BY and at most one of them
// annotates by NAME.
func Validate(entries []models.DatabaseEntry) error {
	type group struct {
		by       models.AnnotationBy
		firstRow int
		names    int
	}
	groups := make(map[string]*group)

	for i := range entries {
		e := &entries[i]
		if err := e.Validate(); err != nil {
			return apperrors.Configuration("row %d: %v", e.Row, err).WithDetail("row", e.Row)
		}

		g, ok := groups[e.RegionType]
		if !ok {
			g = &group{by: e.AnnotationBy, firstRow: e.Row}
			groups[e.RegionType] = g
		}
		if g.by != e.AnnotationBy {
			return apperrors.Configuration(
				"region type %q: row %d annotates by %s but row %d annotates by %s",
				e.RegionType, e.Row, e.AnnotationBy, g.firstRow, g.by,
			).WithDetail("region_type", e.RegionType)
		}
		if e.AnnotationBy == models.AnnotateByName {
			g.names++
			if g.names > 1 {
				return apperrors.Configuration(
					"region type %q: only one NAME entry is allowed per region type (row %d)",
					e.RegionType, e.Row,
				).WithDetail("region_type", e.RegionType)
			}
		}
	}
	return nil
}

// CheckFiles verifies that every referenced interval file can be opened.
func CheckFiles(entries []models.DatabaseEntry) error {
	for i := range entries {
		e := &entries[i]
		f, err := os.Open(e.Filename)
		if err != nil {
			return apperrors.Resource(err, "row %d: reference file %s", e.Row, e.Filename)
		}
		info, err := f.Stat()
		_ = f.Close()
		if err != nil {
			return apperrors.Resource(err, "row %d: stat %s", e.Row, e.Filename)
		}
		if info.IsDir() {
			return apperrors.Resource(fmt.Errorf("is a directory"), "row %d: reference file %s", e.Row, e.Filename)
		}
	}
	return nil
}
