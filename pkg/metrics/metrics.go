// Package metrics provides Prometheus metrics for completion traffic
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors shared by the completion clients and the HTTP service
type Metrics struct {
	// Completion request metrics
	CompletionRequestsTotal   *prometheus.CounterVec
	CompletionRequestDuration *prometheus.HistogramVec
	CompletionFragmentsTotal  prometheus.Counter

	// Parse failures by kind (structured_response, ranking)
	ParseFailuresTotal *prometheus.CounterVec

	// HTTP service metrics
	HTTPRequestsTotal *prometheus.CounterVec
}

// New creates all collectors and registers them with reg.
// A nil reg registers against the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		CompletionRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "movierec_completion_requests_total",
				Help: "Total number of completion requests",
			},
			[]string{"model", "mode", "status"},
		),
		CompletionRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "movierec_completion_request_duration_seconds",
				Help:    "Duration of completion requests in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"model", "mode"},
		),
		CompletionFragmentsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "movierec_completion_fragments_total",
				Help: "Total number of streamed text fragments received",
			},
		),
		ParseFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "movierec_parse_failures_total",
				Help: "Total number of model outputs that failed to parse",
			},
			[]string{"kind"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "movierec_http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"route", "status"},
		),
	}
}

// RecordParseFailure counts one unparsable model output of the given kind
func (m *Metrics) RecordParseFailure(kind string) {
	if m == nil {
		return
	}
	m.ParseFailuresTotal.WithLabelValues(kind).Inc()
}
