// Package observability carries the run's logger and metrics. The pipeline
// drops data in several deliberate places (duplicate logger captures,
// unmatched concentration rows); the counters here keep those drops
// observable instead of silent.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for one pipeline run.
// The pipeline is batch and offline, so metrics live on a private registry
// and are reported in the run summary rather than scraped.
type Metrics struct {
	registry *prometheus.Registry

	LoggerFilesSelected  prometheus.Counter
	LoggerFilesDiscarded prometheus.Counter
	LoggerFilesEmpty     prometheus.Counter
	LoggerRowsSkipped    prometheus.Counter

	JoinMatches     *prometheus.CounterVec // label: point
	JoinMisses      *prometheus.CounterVec // label: point
	RegressionFills prometheus.Counter

	PipelineRunning prometheus.Gauge
}

// NewMetrics creates all pipeline metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		LoggerFilesSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runoff",
			Name:      "logger_files_selected_total",
			Help:      "Logger files kept as the authoritative capture of their startDay group.",
		}),
		LoggerFilesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runoff",
			Name:      "logger_files_discarded_total",
			Help:      "Logger files dropped as duplicate captures.",
		}),
		LoggerFilesEmpty: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runoff",
			Name:      "logger_files_empty_total",
			Help:      "Logger files with zero parseable rows, excluded before grouping.",
		}),
		LoggerRowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runoff",
			Name:      "logger_rows_skipped_total",
			Help:      "Logger rows dropped for an unparseable timestamp.",
		}),
		JoinMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runoff",
			Name:      "join_matches_total",
			Help:      "Concentration rows matched to a runoff record.",
		}, []string{"point"}),
		JoinMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runoff",
			Name:      "join_misses_total",
			Help:      "Concentration rows dropped for lack of a matching runoff record.",
		}, []string{"point"}),
		RegressionFills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runoff",
			Name:      "regression_fills_total",
			Help:      "Event volumes estimated by the regression model.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "runoff",
			Name:      "pipeline_running",
			Help:      "1 while the pipeline is active, 0 when finished.",
		}),
	}

	reg.MustRegister(
		m.LoggerFilesSelected,
		m.LoggerFilesDiscarded,
		m.LoggerFilesEmpty,
		m.LoggerRowsSkipped,
		m.JoinMatches,
		m.JoinMisses,
		m.RegressionFills,
		m.PipelineRunning,
	)

	return m
}

// Gather collects the current metric families from the run's registry.
func (m *Metrics) Gather() ([]*MetricSample, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []*MetricSample
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			s := &MetricSample{Name: fam.GetName()}
			for _, lp := range metric.GetLabel() {
				s.Name += "{" + lp.GetName() + "=" + lp.GetValue() + "}"
			}
			switch {
			case metric.GetCounter() != nil:
				s.Value = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				s.Value = metric.GetGauge().GetValue()
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// MetricSample is one flattened metric value for the run summary.
type MetricSample struct {
	Name  string
	Value float64
}
