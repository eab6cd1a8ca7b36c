package domain

import (
	"prohibition/pkg/safe"
	"sort"
)

// CapitalBook is a working set of entity balances. Balances are signed:
// an entity may end a tick in debt, the ledger only guarantees conservation.
type CapitalBook struct {
	balances map[EntityID]Money
}

// NewCapitalBook copies the given balances into a new book.
func NewCapitalBook(initial map[EntityID]Money) *CapitalBook {
	b := &CapitalBook{balances: make(map[EntityID]Money, len(initial))}
	for id, m := range initial {
		b.balances[id] = m
	}
	return b
}

// Get returns the balance of id, zero when absent.
func (b *CapitalBook) Get(id EntityID) Money {
	return b.balances[id]
}

// Credit adds amount to id. Panics on overflow.
func (b *CapitalBook) Credit(id EntityID, amount Money) {
	b.balances[id] = Money(safe.SafeAdd(int64(b.balances[id]), int64(amount)))
}

// Debit removes amount from id. Panics on overflow.
func (b *CapitalBook) Debit(id EntityID, amount Money) {
	b.balances[id] = Money(safe.SafeSub(int64(b.balances[id]), int64(amount)))
}

// Total sums every balance. Trades must leave it unchanged.
func (b *CapitalBook) Total() Money {
	var total int64
	for _, id := range b.ids() {
		total = safe.SafeAdd(total, int64(b.balances[id]))
	}
	return Money(total)
}

// Snapshot returns a copy of all balances.
func (b *CapitalBook) Snapshot() map[EntityID]Money {
	out := make(map[EntityID]Money, len(b.balances))
	for k, v := range b.balances {
		out[k] = v
	}
	return out
}

func (b *CapitalBook) ids() []EntityID {
	ids := make([]EntityID, 0, len(b.balances))
	for id := range b.balances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
