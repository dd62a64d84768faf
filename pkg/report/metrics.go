// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/slukits/gospec"
)

// Metrics counts reported events for prometheus.  Metrics exposed, all
// namespaced with "gospec":
//
//   - events_total (counter) by kind and suite
//   - test_duration_seconds (histogram) of executed tests by suite and
//     outcome
//   - suites_aborted_total (counter) by suite
type Metrics struct {
	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	aborted  *prometheus.CounterVec
}

// NewMetrics registers the metrics of a metrics reporter with given
// registerer which defaults to prometheus' default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gospec",
			Name:      "events_total",
			Help:      "Reported events by kind and suite.",
		}, []string{"kind", "suite"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gospec",
			Name:      "test_duration_seconds",
			Help:      "Execution time of tests by suite and outcome.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1,
				.5, 1, 5},
		}, []string{"suite", "outcome"}),
		aborted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gospec",
			Name:      "suites_aborted_total",
			Help:      "Suite runs which aborted.",
		}, []string{"suite"}),
	}
}

func (m *Metrics) Report(e gospec.Event) {
	m.events.WithLabelValues(e.Kind.String(), e.Suite).Inc()
	switch e.Kind {
	case gospec.TestSucceeded, gospec.TestFailed, gospec.TestCanceled,
		gospec.TestPending:
		m.duration.WithLabelValues(e.Suite, e.Outcome.Kind().String()).
			Observe(e.Duration.Seconds())
	case gospec.SuiteAborted:
		m.aborted.WithLabelValues(e.Suite).Inc()
	}
}
