package infra

import (
	"testing"
)

func TestMetrics_RecordTick(t *testing.T) {
	m := &Metrics{}

	m.RecordTick(1, 1000)
	m.RecordTick(2, 2000)
	m.RecordTick(3, 3000)

	snap := m.Snapshot()

	if snap.Ticks != 3 {
		t.Errorf("Expected 3 ticks, got %d", snap.Ticks)
	}
	if snap.WorldTick != 3 {
		t.Errorf("Expected world tick 3, got %d", snap.WorldTick)
	}

	// Average latency: (1000 + 2000 + 3000) / 3 = 2000
	if snap.AvgLatencyNs != 2000 {
		t.Errorf("Expected avg latency 2000, got %d", snap.AvgLatencyNs)
	}
}

func TestMetrics_Trades(t *testing.T) {
	m := &Metrics{}

	m.RecordTrades(2, 250)
	m.RecordTrades(1, 87)
	m.RecordProductions(4)

	snap := m.Snapshot()
	if snap.Trades != 3 {
		t.Errorf("Expected 3 trades, got %d", snap.Trades)
	}
	if snap.TradedValue != 337 {
		t.Errorf("Expected traded value 337, got %d", snap.TradedValue)
	}
	if snap.Productions != 4 {
		t.Errorf("Expected 4 productions, got %d", snap.Productions)
	}
}

func TestMetrics_Connections(t *testing.T) {
	m := &Metrics{}

	m.IncrementConnections()
	m.IncrementConnections()
	m.IncrementConnections()

	snap := m.Snapshot()
	if snap.StreamClients != 3 {
		t.Errorf("Expected 3 connections, got %d", snap.StreamClients)
	}

	m.DecrementConnections()
	snap = m.Snapshot()
	if snap.StreamClients != 2 {
		t.Errorf("Expected 2 connections, got %d", snap.StreamClients)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := &Metrics{}

	m.RecordTick(1, 1000)
	m.RecordClamp()
	m.RecordError()
	m.IncrementConnections()

	m.Reset()
	snap := m.Snapshot()

	if snap.Ticks != 0 {
		t.Error("Expected 0 ticks after reset")
	}
	if snap.Clamps != 0 {
		t.Error("Expected 0 clamps after reset")
	}
	if snap.ErrorsTotal != 0 {
		t.Error("Expected 0 errors after reset")
	}
	if snap.StreamClients != 0 {
		t.Error("Expected 0 connections after reset")
	}
}
