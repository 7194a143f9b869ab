// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// It adapts the generic metrics.Backend interface to Prometheus using
// client_golang collectors and pushes collected metrics to a Pushgateway
// instead of exposing a scrape endpoint; a batch cleaning run is too
// short-lived for pull-based collection. All Prometheus-specific dependencies
// stay inside this package.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"cleanse/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	stageCounter  *prometheus.CounterVec // cleanse_stage_total
	stageDuration *prometheus.SummaryVec // cleanse_stage_duration_seconds
	recordCounter *prometheus.CounterVec // cleanse_records_total
}

// NewBackend constructs a Pushgateway backend. jobName becomes the
// Pushgateway "job" grouping key; gatewayURL is the base URL of the server
// and is required.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "cleanse"
	}

	reg := prometheus.NewRegistry()

	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cleanse_stage_total",
			Help: "Total number of cleaning stage executions, partitioned by stage.",
		},
		[]string{"stage"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "cleanse_stage_duration_seconds",
			Help:       "Duration of cleaning stages in seconds, partitioned by stage.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"stage"},
	)
	recordCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cleanse_records_total",
			Help: "Record-level counts per kind (input, output, dropped, inserted).",
		},
		[]string{"kind"},
	)

	reg.MustRegister(stageCounter, stageDuration, recordCounter)

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		recordCounter: recordCounter,
	}, nil
}

// IncCounter implements metrics.Backend. Counters outside the fixed collector
// set are dropped.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "cleanse_stage_total":
		b.stageCounter.WithLabelValues(labels["stage"]).Add(delta)
	case "cleanse_records_total":
		b.recordCounter.WithLabelValues(labels["kind"]).Add(delta)
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name == "cleanse_stage_duration_seconds" {
		b.stageDuration.WithLabelValues(labels["stage"]).Observe(value)
	}
}

// Flush pushes the registry to the Pushgateway.
func (b *Backend) Flush() error {
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
