package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	ticks       atomic.Uint64
	productions atomic.Uint64
	trades      atomic.Uint64
	tradedValue atomic.Int64
	clamps      atomic.Uint64
	errorsTotal atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	streamClients atomic.Int32
	worldTick     atomic.Uint64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordTick records one completed tick with its latency.
func (m *Metrics) RecordTick(tick uint64, latencyNs int64) {
	m.ticks.Add(1)
	m.worldTick.Store(tick)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordProductions adds n applied production records.
func (m *Metrics) RecordProductions(n int) {
	m.productions.Add(uint64(n))
}

// RecordTrades adds n applied trades worth value cents in total.
func (m *Metrics) RecordTrades(n int, value int64) {
	m.trades.Add(uint64(n))
	m.tradedValue.Add(value)
}

// RecordClamp records an inventory line clamped at zero.
func (m *Metrics) RecordClamp() {
	m.clamps.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// IncrementConnections increments connected stream clients by 1.
func (m *Metrics) IncrementConnections() {
	m.streamClients.Add(1)
}

// DecrementConnections decrements connected stream clients by 1.
func (m *Metrics) DecrementConnections() {
	m.streamClients.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	Ticks         uint64
	WorldTick     uint64
	Productions   uint64
	Trades        uint64
	TradedValue   int64
	Clamps        uint64
	ErrorsTotal   uint64
	AvgLatencyNs  int64
	StreamClients int32
	Timestamp     time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		Ticks:         m.ticks.Load(),
		WorldTick:     m.worldTick.Load(),
		Productions:   m.productions.Load(),
		Trades:        m.trades.Load(),
		TradedValue:   m.tradedValue.Load(),
		Clamps:        m.clamps.Load(),
		ErrorsTotal:   m.errorsTotal.Load(),
		AvgLatencyNs:  avgLatency,
		StreamClients: m.streamClients.Load(),
		Timestamp:     time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ticks.Store(0)
	m.worldTick.Store(0)
	m.productions.Store(0)
	m.trades.Store(0)
	m.tradedValue.Store(0)
	m.clamps.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.streamClients.Store(0)
}
