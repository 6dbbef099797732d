// Package tsv reads and writes the tab-separated tables used by the annotator.
package tsv

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const maxLineSize = 16 * 1024 * 1024

// Record is one non-empty line split on tabs.
type Record struct {
	Line   int
	Fields []string
}

// Scan calls fn for every non-empty line of r, in order.
// Trailing carriage returns are stripped so CRLF files read cleanly.
func Scan(r io.Reader, fn func(rec Record) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := fn(Record{Line: line, Fields: strings.Split(text, "\t")}); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read line %d: %w", line+1, err)
	}
	return nil
}

// ReadAll returns every non-empty line of r.
func ReadAll(r io.Reader) ([]Record, error) {
	var out []Record
	err := Scan(r, func(rec Record) error {
		out = append(out, rec)
		return nil
	})
	return out, err
}

// Writer emits tab-separated rows.
type Writer struct {
	bw *bufio.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// Write emits one row.
func (w *Writer) Write(fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.bw.WriteByte('\t'); err != nil {
				return err
			}
		}
		if _, err := w.bw.WriteString(f); err != nil {
			return err
		}
	}
	return w.bw.WriteByte('\n')
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}
