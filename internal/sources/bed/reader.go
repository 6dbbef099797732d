// Package bed turns reference interval files into query intervals for one
// database entry.
package bed

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/biogo/feat"

	apperrors "github.com/mkoziy/genome/annotator/internal/errors"
	"github.com/mkoziy/genome/annotator/internal/models"
	"github.com/mkoziy/genome/annotator/internal/tsv"
)

const (
	// strandProbeLines is how many data lines are inspected to decide
	// whether a file carries strand information.
	strandProbeLines = 100
	strandColumn     = 5
)

// Record is one parsed data line of a reference file.
type Record struct {
	Line   int
	Span   models.Span
	Fields []string
}

// Open reads every data line of the reference file at path.
func Open(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Resource(err, "open reference file %s", path)
	}
	defer func() {
		_ = f.Close()
	}()

	recs, err := Read(f)
	if err != nil {
		return nil, apperrors.Resource(err, "read reference file %s", path)
	}
	return recs, nil
}

// Read parses reference intervals from r, skipping comment and UCSC
// track/browser lines.
func Read(r io.Reader) ([]Record, error) {
	var out []Record
	err := tsv.Scan(r, func(rec tsv.Record) error {
		if isComment(rec.Fields[0]) {
			return nil
		}
		if len(rec.Fields) < 3 {
			return fmt.Errorf("line %d: expected at least 3 columns, got %d", rec.Line, len(rec.Fields))
		}
		start, err := strconv.ParseInt(strings.TrimSpace(rec.Fields[1]), 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid start %q", rec.Line, rec.Fields[1])
		}
		end, err := strconv.ParseInt(strings.TrimSpace(rec.Fields[2]), 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid end %q", rec.Line, rec.Fields[2])
		}
		if start < 0 || start >= end {
			return fmt.Errorf("line %d: invalid interval [%d, %d)", rec.Line, start, end)
		}
		out = append(out, Record{
			Line:   rec.Line,
			Span:   models.Span{Chrom: rec.Fields[0], Start: start, End: end},
			Fields: rec.Fields,
		})
		return nil
	})
	return out, err
}

func isComment(first string) bool {
	return strings.HasPrefix(first, "#") ||
		strings.HasPrefix(first, "track") ||
		strings.HasPrefix(first, "browser")
}

// HasStrand reports whether recs carry usable strand information: at least
// one of the first 100 lines has a strand column and every strand value
// seen in those lines is '+' or '-'.
func HasStrand(recs []Record) bool {
	n := len(recs)
	if n > strandProbeLines {
		n = strandProbeLines
	}
	found := false
	for _, rec := range recs[:n] {
		if len(rec.Fields) <= strandColumn {
			continue
		}
		if _, ok := models.ParseStrand(strings.TrimSpace(rec.Fields[strandColumn])); !ok {
			return false
		}
		found = true
	}
	return found
}

// Strand returns the orientation of rec. Records without a valid strand
// value are forward.
func (rec Record) Strand() feat.Orientation {
	if len(rec.Fields) <= strandColumn {
		return feat.Forward
	}
	if o, ok := models.ParseStrand(strings.TrimSpace(rec.Fields[strandColumn])); ok {
		return o
	}
	return feat.Forward
}
