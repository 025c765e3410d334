// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
// For production observability, consider integrating with Prometheus or similar.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds bridge metrics using atomic counters for thread safety.
type Metrics struct {
	// Connection lifecycle
	connectsTotal    atomic.Int64
	connectFailures  atomic.Int64
	disconnectsTotal atomic.Int64

	// Signing and submission
	signsTotal       atomic.Int64
	signFailures     atomic.Int64
	submissionsTotal atomic.Int64
	submitFailures   atomic.Int64

	// Provider call latency
	providerLatencyNanos atomic.Int64

	// Per-generation dispatch
	legacyDispatches   atomic.Int64
	standardDispatches atomic.Int64

	// Notifications fanned out
	eventsEmitted atomic.Int64
}

// New creates a zeroed metrics instance. Each bridge owns its own instance;
// there is no process-wide global.
func New() *Metrics {
	return &Metrics{}
}

// RecordConnect records a connect attempt and its outcome.
func (m *Metrics) RecordConnect(duration time.Duration, err error) {
	m.connectsTotal.Add(1)
	m.providerLatencyNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.connectFailures.Add(1)
	}
}

// RecordDisconnect records a disconnect.
func (m *Metrics) RecordDisconnect() {
	m.disconnectsTotal.Add(1)
}

// RecordSign records a signing operation and its outcome.
func (m *Metrics) RecordSign(err error) {
	m.signsTotal.Add(1)
	if err != nil {
		m.signFailures.Add(1)
	}
}

// RecordSubmission records a submission and its outcome.
func (m *Metrics) RecordSubmission(err error) {
	m.submissionsTotal.Add(1)
	if err != nil {
		m.submitFailures.Add(1)
	}
}

// RecordDispatch tracks which protocol generation served an operation.
func (m *Metrics) RecordDispatch(standard bool) {
	if standard {
		m.standardDispatches.Add(1)
	} else {
		m.legacyDispatches.Add(1)
	}
}

// RecordEvent records one fanned-out notification.
func (m *Metrics) RecordEvent() {
	m.eventsEmitted.Add(1)
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	ConnectsTotal        int64
	ConnectFailures      int64
	DisconnectsTotal     int64
	SignsTotal           int64
	SignFailures         int64
	SubmissionsTotal     int64
	SubmitFailures       int64
	ProviderLatencyNanos int64
	LegacyDispatches     int64
	StandardDispatches   int64
	EventsEmitted        int64
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		ConnectsTotal:        m.connectsTotal.Load(),
		ConnectFailures:      m.connectFailures.Load(),
		DisconnectsTotal:     m.disconnectsTotal.Load(),
		SignsTotal:           m.signsTotal.Load(),
		SignFailures:         m.signFailures.Load(),
		SubmissionsTotal:     m.submissionsTotal.Load(),
		SubmitFailures:       m.submitFailures.Load(),
		ProviderLatencyNanos: m.providerLatencyNanos.Load(),
		LegacyDispatches:     m.legacyDispatches.Load(),
		StandardDispatches:   m.standardDispatches.Load(),
		EventsEmitted:        m.eventsEmitted.Load(),
	}
}
