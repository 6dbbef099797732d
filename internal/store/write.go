package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mkoziy/genome/annotator/internal/tsv"
)

// Write emits the table: the original header followed by the columns
// added by the annotator, one line per physical row. Cells read from the
// file are written verbatim unless they were changed; unset cells of added
// columns are written as the sentinel. Fields past the header width are
// kept at the end of their line.
func (t *Table) Write(w io.Writer) error {
	tw := tsv.NewWriter(w)

	header := make([]string, 0, 3+len(t.columns))
	header = append(header, t.coordHeader...)
	header = append(header, t.columns...)
	if err := tw.Write(header); err != nil {
		return err
	}

	for _, r := range t.rows {
		if err := tw.Write(t.line(r)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func (t *Table) line(r row) []string {
	loaded := r.cells
	var extra []string
	if len(loaded) > t.loaded {
		loaded, extra = loaded[:t.loaded], loaded[t.loaded:]
	}

	fields := make([]string, 0, 3+len(t.columns)+len(extra))
	fields = append(fields, r.chrom, r.start, r.end)
	fields = append(fields, loaded...)

	// Short rows are padded only when a later cell has to be written.
	width := len(loaded)
	if len(t.columns) > t.loaded {
		width = t.loaded
	}
	for i, col := range t.columns[:t.loaded] {
		if t.changed[r.id][col] && i >= width {
			width = i + 1
		}
	}
	for len(fields) < 3+width {
		fields = append(fields, "")
	}

	cells := t.values[r.id]
	for i, col := range t.columns[:t.loaded] {
		if t.changed[r.id][col] {
			fields[3+i] = cells[col]
		}
	}
	for _, col := range t.columns[t.loaded:] {
		if v, ok := cells[col]; ok {
			fields = append(fields, v)
		} else {
			fields = append(fields, t.unset)
		}
	}
	return append(fields, extra...)
}

// WriteFile writes the table to path through a temporary file so an
// interrupted write never truncates a previous result.
func (t *Table) WriteFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if err := t.Write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
