package bed

import (
	"go.uber.org/zap"

	"github.com/mkoziy/genome/annotator/internal/models"
)

// Builder prepares the reference intervals of database entries.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a Builder. A nil logger disables logging.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// Build reads entry's reference file and returns its query intervals.
// Either the whole file builds or an error is returned.
func (b *Builder) Build(entry *models.DatabaseEntry) ([]models.ReferenceInterval, error) {
	recs, err := Open(entry.Filename)
	if err != nil {
		return nil, err
	}
	refs := BuildFrom(recs, entry)

	b.logger.Debug("Built reference intervals",
		zap.String("file", entry.Filename),
		zap.String("region_type", entry.RegionType),
		zap.Int("intervals", len(refs)),
		zap.Bool("stranded", HasStrand(recs)))
	if len(refs) > 0 && b.logger.Core().Enabled(zap.DebugLevel) {
		b.logger.Debug("First reference interval", zap.String("label", refs[0].TraceLabel()))
	}
	return refs, nil
}

// BuildFrom maps already parsed records for entry.
func BuildFrom(recs []Record, entry *models.DatabaseEntry) []models.ReferenceInterval {
	stranded := HasStrand(recs)
	refs := make([]models.ReferenceInterval, 0, len(recs))
	for _, rec := range recs {
		refs = append(refs, MapToReference(rec, entry, stranded))
	}
	return refs
}
