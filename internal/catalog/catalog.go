// Package catalog loads and validates the database table that lists the
// reference interval files used for annotation.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/mkoziy/genome/annotator/internal/errors"
	"github.com/mkoziy/genome/annotator/internal/models"
	"github.com/mkoziy/genome/annotator/internal/tsv"
)

// Database table column names.
const (
	ColFilename     = "FILENAME"
	ColRegionType   = "REGION.TYPE"
	ColSource       = "SOURCE"
	ColAnnotationBy = "ANNOTATION.BY"
	ColMaxDistance  = "MAX.DISTANCE"
	ColDistanceTo   = "DISTANCE.TO"
	ColNHits        = "N.HITS"
	ColNameCol      = "NAME.COL"
)

// RequiredColumns lists the header fields every database table must carry.
var RequiredColumns = []string{
	ColFilename, ColRegionType, ColSource, ColAnnotationBy,
	ColMaxDistance, ColDistanceTo, ColNHits, ColNameCol,
}

// LoadFile reads and parses a database table from path.
func LoadFile(path string) ([]models.DatabaseEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Resource(err, "open database table %s", path)
	}
	defer func() {
		_ = f.Close()
	}()

	entries, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load database table %s: %w", path, err)
	}
	return entries, nil
}

// Load parses a database table. The first non-empty line is the header.
// Parsing only checks cell syntax; call Validate for cross-row rules.
func Load(r io.Reader) ([]models.DatabaseEntry, error) {
	recs, err := tsv.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, apperrors.Configuration("database table is empty")
	}

	cols := make(map[string]int)
	for i, name := range recs[0].Fields {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range RequiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, apperrors.Configuration("%s is a required column in the database table", name).
				WithDetail("column", name)
		}
	}

	entries := make([]models.DatabaseEntry, 0, len(recs)-1)
	for i, rec := range recs[1:] {
		e, err := parseRow(rec, cols, i+1)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseRow(rec tsv.Record, cols map[string]int, row int) (models.DatabaseEntry, error) {
	cell := func(name string) string {
		i := cols[name]
		if i >= len(rec.Fields) {
			return ""
		}
		return strings.TrimSpace(rec.Fields[i])
	}
	fail := func(col string, err error) error {
		return apperrors.Configuration("row %d (line %d), column %s: %v", row, rec.Line, col, err).
			WithDetail("row", row).
			WithDetail("column", col)
	}

	e := models.DatabaseEntry{
		Filename:   cell(ColFilename),
		RegionType: cell(ColRegionType),
		Source:     cell(ColSource),
		Row:        row,
	}

	var err error
	if e.AnnotationBy, err = models.ParseAnnotationBy(cell(ColAnnotationBy)); err != nil {
		return e, fail(ColAnnotationBy, err)
	}
	if e.DistanceTo, err = models.ParseDistanceAnchor(cell(ColDistanceTo)); err != nil {
		return e, fail(ColDistanceTo, err)
	}
	if e.NHits, err = models.ParseHitSelection(cell(ColNHits)); err != nil {
		return e, fail(ColNHits, err)
	}

	v := cell(ColMaxDistance)
	if v == "" {
		return e, fail(ColMaxDistance, errors.New("value is required"))
	}
	if e.MaxDistance, err = strconv.ParseInt(v, 10, 64); err != nil {
		return e, fail(ColMaxDistance, fmt.Errorf("%q is not an integer", v))
	}

	if v := cell(ColNameCol); !isMissing(v) {
		n, err := strconv.Atoi(v)
		if err != nil {
			return e, fail(ColNameCol, fmt.Errorf("%q is not an integer", v))
		}
		e.NameCol = &n
	}
	return e, nil
}

func isMissing(v string) bool {
	switch strings.ToUpper(v) {
	case "", "NA", "NAN", "NONE", ".":
		return true
	}
	return false
}
