// Package store holds the base interval table being annotated.
package store

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/mkoziy/genome/annotator/internal/errors"
	"github.com/mkoziy/genome/annotator/internal/models"
	"github.com/mkoziy/genome/annotator/internal/tsv"
)

// DefaultUnset marks a cell for which no annotation has been recorded.
const DefaultUnset = "NA"

const headerMarker = "#"

// row is one physical line of the base table. cells keeps every field
// after the coordinates as read, including fields past the header width.
type row struct {
	id    string
	chrom string
	start string
	end   string
	cells []string
}

// Table is the base interval table plus its annotation columns.
// Coordinates are immutable after Load; only annotation cells change.
// Rows with identical coordinates share one identifier and therefore
// one set of annotation cells. Cells read from the file are written back
// verbatim unless the annotator changed them.
type Table struct {
	coordHeader []string
	rows        []row
	intervals   []models.BaseInterval
	byID        map[string]int
	columns     []string
	loaded      int
	present     map[string]bool
	values      map[string]map[string]string
	changed     map[string]map[string]bool
	unset       string
	index       *Index
}

// LoadFile reads a base table from path.
func LoadFile(path, unset string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Resource(err, "open base table %s", path)
	}
	defer func() {
		_ = f.Close()
	}()

	t, err := Load(f, unset)
	if err != nil {
		return nil, fmt.Errorf("load base table %s: %w", path, err)
	}
	return t, nil
}

// Load parses a base table. The first line is the header and its first
// field must start with '#'. Cells equal to unset load as unset.
func Load(r io.Reader, unset string) (*Table, error) {
	if unset == "" {
		unset = DefaultUnset
	}
	t := &Table{
		byID:    make(map[string]int),
		present: make(map[string]bool),
		values:  make(map[string]map[string]string),
		changed: make(map[string]map[string]bool),
		unset:   unset,
	}

	headerSeen := false
	err := tsv.Scan(r, func(rec tsv.Record) error {
		if !headerSeen {
			headerSeen = true
			return t.readHeader(rec)
		}
		return t.readRow(rec)
	})
	if err != nil {
		return nil, err
	}
	if !headerSeen {
		return nil, apperrors.Schema("base table is empty; a header line starting with %q is required", headerMarker)
	}
	return t, nil
}

func (t *Table) readHeader(rec tsv.Record) error {
	if !strings.HasPrefix(rec.Fields[0], headerMarker) {
		return apperrors.Schema("line %d: header must start with %q, got %q", rec.Line, headerMarker, rec.Fields[0]).
			WithDetail("line", rec.Line)
	}
	if len(rec.Fields) < 3 {
		return apperrors.Schema("line %d: header needs chromosome, start and end columns", rec.Line)
	}
	t.coordHeader = append([]string(nil), rec.Fields[:3]...)
	for _, name := range rec.Fields[3:] {
		if t.present[name] {
			return apperrors.Schema("line %d: duplicate column %q", rec.Line, name)
		}
		t.addColumn(name)
	}
	t.loaded = len(t.columns)
	return nil
}

func (t *Table) readRow(rec tsv.Record) error {
	if len(rec.Fields) < 3 {
		return apperrors.Schema("line %d: expected at least 3 columns, got %d", rec.Line, len(rec.Fields)).
			WithDetail("line", rec.Line)
	}
	start, err := strconv.ParseInt(strings.TrimSpace(rec.Fields[1]), 10, 64)
	if err != nil {
		return apperrors.Schema("line %d: start %q is not an integer", rec.Line, rec.Fields[1]).WithDetail("line", rec.Line)
	}
	end, err := strconv.ParseInt(strings.TrimSpace(rec.Fields[2]), 10, 64)
	if err != nil {
		return apperrors.Schema("line %d: end %q is not an integer", rec.Line, rec.Fields[2]).WithDetail("line", rec.Line)
	}
	iv, err := models.NewBaseInterval(rec.Fields[0], start, end)
	if err != nil {
		return apperrors.Schema("line %d: %v", rec.Line, err).WithDetail("line", rec.Line)
	}

	t.rows = append(t.rows, row{
		id:    iv.ID,
		chrom: rec.Fields[0],
		start: rec.Fields[1],
		end:   rec.Fields[2],
		cells: append([]string(nil), rec.Fields[3:]...),
	})
	if _, ok := t.byID[iv.ID]; !ok {
		t.byID[iv.ID] = len(t.intervals)
		t.intervals = append(t.intervals, iv)
		t.values[iv.ID] = make(map[string]string)
	}

	cells := t.values[iv.ID]
	for i, name := range t.columns {
		if 3+i >= len(rec.Fields) {
			break
		}
		v := rec.Fields[3+i]
		if v == t.unset || v == "" {
			continue
		}
		if _, set := cells[name]; !set {
			cells[name] = v
		}
	}
	return nil
}

func (t *Table) addColumn(name string) {
	t.columns = append(t.columns, name)
	t.present[name] = true
}

// Len returns the number of distinct base intervals.
func (t *Table) Len() int {
	return len(t.intervals)
}

// Rows returns the number of physical rows.
func (t *Table) Rows() int {
	return len(t.rows)
}

// Unset returns the sentinel written for unset cells.
func (t *Table) Unset() string {
	return t.unset
}

// Intervals returns the distinct base intervals in table order.
func (t *Table) Intervals() []models.BaseInterval {
	return append([]models.BaseInterval(nil), t.intervals...)
}

// IDs returns the distinct identifiers in table order.
func (t *Table) IDs() []string {
	ids := make([]string, len(t.intervals))
	for i, iv := range t.intervals {
		ids[i] = iv.ID
	}
	return ids
}

// Has reports whether id names a base interval.
func (t *Table) Has(id string) bool {
	_, ok := t.byID[id]
	return ok
}

// RegionTypes returns the annotation column names in output order.
func (t *Table) RegionTypes() []string {
	return append([]string(nil), t.columns...)
}

// RegionTypePresent reports whether a column named rt exists.
func (t *Table) RegionTypePresent(rt string) bool {
	return t.present[rt]
}

// AddRegionType declares column rt with every row unset.
// It reports false if the column already existed.
func (t *Table) AddRegionType(rt string) bool {
	if t.present[rt] {
		return false
	}
	t.addColumn(rt)
	return true
}

// Annotation returns the value of (id, rt). The boolean is false when the
// cell is unset.
func (t *Table) Annotation(id, rt string) (string, bool) {
	cells, ok := t.values[id]
	if !ok {
		return "", false
	}
	v, ok := cells[rt]
	return v, ok
}

// SetAnnotation stores v in (id, rt). Unknown ids and undeclared columns
// are rejected.
func (t *Table) SetAnnotation(id, rt, v string) error {
	cells, ok := t.values[id]
	if !ok {
		return fmt.Errorf("unknown base interval %q", id)
	}
	if !t.present[rt] {
		return fmt.Errorf("region type %q is not declared", rt)
	}
	cells[rt] = v
	if t.changed[id] == nil {
		t.changed[id] = make(map[string]bool)
	}
	t.changed[id][rt] = true
	return nil
}

// Index returns the overlap index over the base intervals, building it on
// first use.
func (t *Table) Index() (*Index, error) {
	if t.index != nil {
		return t.index, nil
	}
	idx, err := newIndex(t.intervals)
	if err != nil {
		return nil, err
	}
	t.index = idx
	return idx, nil
}
