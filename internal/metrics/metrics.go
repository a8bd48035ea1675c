// Package metrics defines the prometheus counters the storage stack
// increments. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Backend label values.
const (
	BackendSQLite   = "sqlite"
	BackendFallback = "fallback"
)

// Write operation label values.
const (
	OpPut    = "put"
	OpInsert = "insert"
	OpDelete = "delete"
)

// Metrics holds the storage counters.
type Metrics struct {
	Writes   *prometheus.CounterVec
	Dropped  *prometheus.CounterVec
	Degraded prometheus.Counter
	Synced   *prometheus.CounterVec
}

// New creates the counters and registers them on reg. reg may be nil, in
// which case the counters are created but not registered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agenda_store_writes_total",
				Help: "Records written to a storage backend",
			},
			[]string{"backend", "op"},
		),
		Dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agenda_records_dropped_total",
				Help: "Stored records skipped because they failed to decode",
			},
			[]string{"collection", "backend"},
		),
		Degraded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "agenda_primary_degraded_total",
				Help: "Sessions that fell back from the relational store",
			},
		),
		Synced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agenda_sync_records_total",
				Help: "Records copied from the fallback store into the relational store",
			},
			[]string{"collection"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Writes, m.Dropped, m.Degraded, m.Synced)
	}
	return m
}

// Write counts n records written to backend.
func (m *Metrics) Write(backend, op string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Writes.WithLabelValues(backend, op).Add(float64(n))
}

// Drop counts one undecodable record.
func (m *Metrics) Drop(collection, backend string) {
	if m == nil {
		return
	}
	m.Dropped.WithLabelValues(collection, backend).Inc()
}

// Degrade counts one fall back to the fallback store.
func (m *Metrics) Degrade() {
	if m == nil {
		return
	}
	m.Degraded.Inc()
}

// Sync counts n records copied for collection.
func (m *Metrics) Sync(collection string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Synced.WithLabelValues(collection).Add(float64(n))
}
