// Package event keeps the observable, append-only record of what each tick did.
package event

import (
	"fmt"
	"sync"

	"prohibition/internal/domain"
)

// Kind tags an Entry.
type Kind string

const (
	KindProduction Kind = "production"
	KindTrade      Kind = "trade"
	KindTravel     Kind = "travel"
	KindLoad       Kind = "load"
	KindOrder      Kind = "order"
)

// Entry is one logged event. Exactly one payload is set for production, trade,
// travel and order entries; load entries carry none.
type Entry struct {
	Seq        uint64             `json:"seq"`
	Tick       uint64             `json:"tick"`
	Kind       Kind               `json:"kind"`
	Production *domain.Production `json:"production,omitempty"`
	Trade      *domain.Trade      `json:"trade,omitempty"`
	Travel     *domain.Travel     `json:"travel,omitempty"`
	Order      *OrderChange       `json:"order,omitempty"`
}

// OrderChange records a player order placed on an inventory line.
type OrderChange struct {
	Entity domain.EntityID      `json:"entity"`
	City   domain.CityName      `json:"city"`
	Line   domain.InventoryLine `json:"line"`
}

// Log is an append-only event log with a strictly increasing sequence.
// Appends come from the orchestrator goroutine; the mutex is for readers.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	nextSeq uint64
}

// NewLog creates an empty log whose first entry gets sequence 1.
func NewLog() *Log {
	return &Log{nextSeq: 1}
}

// Restore rebuilds a log from persisted entries. Entries must be contiguous from 1.
func Restore(entries []Entry) (*Log, error) {
	l := NewLog()
	for _, e := range entries {
		if e.Seq != l.nextSeq {
			return nil, fmt.Errorf("restore event log: expected seq %d, got %d", l.nextSeq, e.Seq)
		}
		l.entries = append(l.entries, e)
		l.nextSeq++
	}
	return l, nil
}

// Append assigns the next sequence to e and stores it.
func (l *Log) Append(e Entry) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.Seq = l.nextSeq
	l.entries = append(l.entries, e)
	l.nextSeq++
	return e
}

// AppendTick records a tick's productions then trades, in order.
func (l *Log) AppendTick(tick uint64, prods []domain.Production, trades []domain.Trade) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	start := len(l.entries)
	for i := range prods {
		p := prods[i]
		l.entries = append(l.entries, Entry{Seq: l.nextSeq, Tick: tick, Kind: KindProduction, Production: &p})
		l.nextSeq++
	}
	for i := range trades {
		tr := trades[i]
		l.entries = append(l.entries, Entry{Seq: l.nextSeq, Tick: tick, Kind: KindTrade, Trade: &tr})
		l.nextSeq++
	}
	out := make([]Entry, len(l.entries)-start)
	copy(out, l.entries[start:])
	return out
}

// Entries returns a copy of the whole log.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Since returns the entries with Seq > seq.
func (l *Log) Since(seq uint64) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	// Seq n lives at index n-1.
	if seq >= uint64(len(l.entries)) {
		return nil
	}
	out := make([]Entry, len(l.entries)-int(seq))
	copy(out, l.entries[seq:])
	return out
}

// Until returns the entries with Seq <= seq.
func (l *Log) Until(seq uint64) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := min(seq, uint64(len(l.entries)))
	out := make([]Entry, n)
	copy(out, l.entries[:n])
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// LastSeq returns the sequence of the newest entry, 0 when empty.
func (l *Log) LastSeq() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nextSeq - 1
}
