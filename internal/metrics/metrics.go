// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the cleaning pipeline.
//
// A global, pluggable backend defaults to a no-op implementation, so metric
// calls are always safe even when no real backend is configured. Concrete
// systems (Prometheus Pushgateway, DogStatsD) live in subpackages and adapt
// this interface, keeping the core pipeline decoupled from any one metrics
// system.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage records one stage execution: a count and its duration.
func RecordStage(job, stage string, d time.Duration) {
	lbls := Labels{
		"job":   job,
		"stage": stage,
	}
	backend.IncCounter("cleanse_stage_total", 1, lbls)
	backend.ObserveHistogram("cleanse_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a record-level counter for the given job and kind.
//
// Typical kinds mirror the run report fields, e.g.:
//   - "input"
//   - "output"
//   - "dropped"
//   - "inserted"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("cleanse_records_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
