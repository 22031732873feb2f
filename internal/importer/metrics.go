package importer

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records import activity.
type Metrics struct {
	RecordsImported prometheus.Counter
	RecordsFailed   prometheus.Counter
	Runs            *prometheus.CounterVec
	Duration        prometheus.Histogram
}

// NewMetrics registers the import metrics on reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsImported: factory.NewCounter(prometheus.CounterOpts{
			Name: "pickaname_import_records_total",
			Help: "Total number of seed records written to the store",
		}),
		RecordsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "pickaname_import_failed_lines_total",
			Help: "Total number of seed lines that failed to parse",
		}),
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pickaname_import_runs_total",
			Help: "Import runs by outcome",
		}, []string{"status"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pickaname_import_duration_seconds",
			Help:    "Duration of seed imports",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

func (m *Metrics) observeRun(status string, start time.Time, succeeded, failed int) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(status).Inc()
	m.Duration.Observe(time.Since(start).Seconds())
	m.RecordsImported.Add(float64(succeeded))
	m.RecordsFailed.Add(float64(failed))
}

// WriteTextfile writes everything g gathers to path in the node exporter
// textfile format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
