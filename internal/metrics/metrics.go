// Package metrics records annotation run metrics for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mkoziy/genome/annotator/internal/models"
)

// Metrics holds the counters of an annotation run.
type Metrics struct {
	registry *prometheus.Registry

	entriesTotal  *prometheus.CounterVec
	hitsTotal     *prometheus.CounterVec
	basesTotal    *prometheus.CounterVec
	entryDuration prometheus.Histogram
}

// New creates the metrics and registers them with registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		registry: registry,
		entriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "annotator",
				Name:      "entries_total",
				Help:      "Database entries processed, by final state",
			},
			[]string{"state"},
		),
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "annotator",
				Name:      "hits_total",
				Help:      "Raw hits found, by region type",
			},
			[]string{"region_type"},
		),
		basesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "annotator",
				Name:      "annotated_bases_total",
				Help:      "Base intervals that received at least one hit, by region type",
			},
			[]string{"region_type"},
		),
		entryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "annotator",
				Name:      "entry_duration_seconds",
				Help:      "Time taken to build, match and merge one database entry",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4m
			},
		),
	}

	for _, c := range []prometheus.Collector{m.entriesTotal, m.hitsTotal, m.basesTotal, m.entryDuration} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordSkipped counts an entry skipped because its results already exist.
func (m *Metrics) RecordSkipped() {
	m.entriesTotal.WithLabelValues(string(models.EntrySkipped)).Inc()
}

// RecordFailed counts an entry that aborted the run.
func (m *Metrics) RecordFailed() {
	m.entriesTotal.WithLabelValues(string(models.EntryFailed)).Inc()
}

// RecordCompleted counts a completed entry with its hits and timing.
func (m *Metrics) RecordCompleted(regionType string, hits, bases int, elapsed time.Duration) {
	m.entriesTotal.WithLabelValues(string(models.EntryCompleted)).Inc()
	m.hitsTotal.WithLabelValues(regionType).Add(float64(hits))
	m.basesTotal.WithLabelValues(regionType).Add(float64(bases))
	m.entryDuration.Observe(elapsed.Seconds())
}

// WriteTextfile writes all registered metrics in the text exposition
// format, for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
