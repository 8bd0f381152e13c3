// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

// Package metrics defines the Prometheus collectors updated by the lag search
// and the significance tests. All methods are safe on a nil *Metrics.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors of one run.
type Metrics struct {
	Registry *prometheus.Registry

	EvaluationsTotal    prometheus.Counter
	SingularModelsTotal prometheus.Counter
	MovesTotal          *prometheus.CounterVec
	SearchDuration      prometheus.Histogram
	LinksSelected       prometheus.Gauge
	LinkTestsTotal      prometheus.Counter
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		EvaluationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "selvar_evaluations_total",
				Help: "Total number of predictor sets evaluated.",
			},
		),
		SingularModelsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "selvar_singular_models_total",
				Help: "Candidate predictor sets rejected as numerically unfittable.",
			},
		),
		MovesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "selvar_moves_total",
				Help: "Hill-climbing moves committed, by kind (add, remove, relag).",
			},
			[]string{"kind"},
		),
		SearchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "selvar_search_duration_seconds",
				Help:    "Wall time of the search for one target variable.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		LinksSelected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "selvar_links_selected",
				Help: "Number of links in the last selected lag matrix.",
			},
		),
		LinkTestsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "selvar_link_tests_total",
				Help: "Likelihood-ratio tests performed.",
			},
		),
	}

	m.Registry.MustRegister(
		m.EvaluationsTotal,
		m.SingularModelsTotal,
		m.MovesTotal,
		m.SearchDuration,
		m.LinksSelected,
		m.LinkTestsTotal,
	)
	return m
}

// ObserveEvaluation counts one evaluation; singular marks a rejected candidate.
func (m *Metrics) ObserveEvaluation(singular bool) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.Inc()
	if singular {
		m.SingularModelsTotal.Inc()
	}
}

// ObserveMove counts one committed move of the given kind.
func (m *Metrics) ObserveMove(kind string) {
	if m == nil {
		return
	}
	m.MovesTotal.WithLabelValues(kind).Inc()
}

// ObserveSearch records the duration of one target's search.
func (m *Metrics) ObserveSearch(d time.Duration) {
	if m == nil {
		return
	}
	m.SearchDuration.Observe(d.Seconds())
}

// SetLinks records the number of selected links.
func (m *Metrics) SetLinks(n int) {
	if m == nil {
		return
	}
	m.LinksSelected.Set(float64(n))
}

// ObserveLinkTest counts one likelihood-ratio test.
func (m *Metrics) ObserveLinkTest() {
	if m == nil {
		return
	}
	m.LinkTestsTotal.Inc()
}

// WriteTextfile writes the current values in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
