// Package metrics provides Prometheus instrumentation for rightsizing runs.
//
// Metrics exposed:
//   - rightsize_resources_evaluated_total: Counter of evaluated resources by outcome
//   - rightsize_candidates_scanned: Histogram of candidates evaluated per resource
//   - rightsize_evaluation_seconds: Histogram of per-resource search duration
//   - rightsize_catalog_candidates: Gauge of candidates in the priced catalog
//   - rightsize_annual_savings: Gauge of total annual savings of the last run
//
// A CLI run has no scrape endpoint, so the registry is written to a
// node_exporter textfile at the end of the run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeResize      = "resize"
	OutcomeNoReduction = "no_reduction"
	OutcomeIncrease    = "increase"
	OutcomeSkipped     = "skipped"
)

// Metrics holds all Prometheus metrics for the engine
type Metrics struct {
	ResourcesEvaluated *prometheus.CounterVec
	CandidatesScanned  prometheus.Histogram
	EvaluationSeconds  prometheus.Histogram
	CatalogCandidates  prometheus.Gauge
	AnnualSavings      prometheus.Gauge

	registry *prometheus.Registry
}

// New creates the metrics on a fresh registry
func New(region string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"region": region}

	return &Metrics{
		registry: reg,

		ResourcesEvaluated: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "rightsize_resources_evaluated_total",
			Help:        "Resources evaluated by the search engine, by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),

		CandidatesScanned: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "rightsize_candidates_scanned",
			Help:        "Candidates evaluated before a verdict was reached",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 8),
		}),

		EvaluationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "rightsize_evaluation_seconds",
			Help:        "Time spent searching a replacement for one resource",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),

		CatalogCandidates: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "rightsize_catalog_candidates",
			Help:        "Candidate SKUs in the priced catalog",
			ConstLabels: labels,
		}),

		AnnualSavings: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "rightsize_annual_savings",
			Help:        "Total annual savings of valid recommendations in the last run",
			ConstLabels: labels,
		}),
	}
}

// Registry exposes the underlying registry for gathering
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
