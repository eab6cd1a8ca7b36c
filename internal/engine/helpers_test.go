package engine

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"prohibition/internal/domain"
	"prohibition/internal/ledger"
	"prohibition/internal/production"
	"prohibition/internal/world"
)

var (
	sellerID = uuid.MustParse("00000000-0000-0000-0000-000000000201")
	buyerID  = uuid.MustParse("00000000-0000-0000-0000-000000000202")
	playerID = uuid.MustParse("00000000-0000-0000-0000-000000000203")
)

type zeroRNG struct{}

func (zeroRNG) Intn(int) int { return 0 }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// noProduction keeps ticks down to clearing only.
func noProduction() Options {
	return Options{
		Generator: &production.Generator{Yield: func(domain.Category, domain.RandomSource) int64 { return 0 }},
		Applier:   ledger.NewApplier(ledger.PolicyPanic, quietLogger(), nil),
	}
}

// testWorld has one crossing corn book in Chicago and the player in Chicago.
func testWorld(t *testing.T) *world.State {
	t.Helper()
	st := world.New()
	st.AddCity(domain.City{Name: "Chicago", Population: 2_000_000})
	st.AddCity(domain.City{Name: "Detroit", Population: 900_000})
	st.AddEntity(domain.NewCitizen(sellerID, "Sal", domain.PersonalityFarmer), "Chicago", 10_00)
	st.AddEntity(domain.NewCitizen(buyerID, "Bea", domain.PersonalityBrewer), "Chicago", 10_00)
	st.AddEntity(domain.NewUser(playerID), "Chicago", 5_00)
	st.AddLine("Chicago", sellerID, domain.InventoryLine{Product: domain.Corn, Type: domain.LineSupply, Quantity: 5, Bid: 100})
	st.AddLine("Chicago", buyerID, domain.InventoryLine{Product: domain.Corn, Type: domain.LineDemand, Quantity: 3, Bid: 150})
	if err := st.Validate(); err != nil {
		t.Fatalf("test world invalid: %v", err)
	}
	return st
}

type fakeTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeScheduler records timers; tests fire them by hand, stopped or not,
// to reproduce a timer racing a load.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(_ time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) fire(i int) {
	s.mu.Lock()
	t := s.timers[i]
	s.mu.Unlock()
	t.f()
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
