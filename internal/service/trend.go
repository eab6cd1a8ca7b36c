package service

import (
	"fmt"

	"prohibition/internal/domain"
	"prohibition/pkg/safe"
)

// Signal is a moving-average crossover event.
type Signal int

const (
	SignalNone   Signal = iota
	SignalGolden        // short average crossed above the long one
	SignalDead          // short average crossed below the long one
)

func (s Signal) String() string {
	switch s {
	case SignalGolden:
		return "golden"
	case SignalDead:
		return "dead"
	default:
		return "none"
	}
}

// SMACross tracks a short and a long simple moving average over a fixed ring buffer.
// Push does not allocate.
type SMACross struct {
	short, long int

	prices []int64
	head   int // next write slot
	count  int
	sum    int64 // over the long window

	primed    bool
	prevShort int64
	prevLong  int64
}

// NewSMACross creates a tracker. Panics unless 0 < short < long.
func NewSMACross(short, long int) *SMACross {
	if short <= 0 || short >= long {
		panic(fmt.Sprintf("SMACross: invalid periods %d/%d", short, long))
	}
	return &SMACross{short: short, long: long, prices: make([]int64, long)}
}

// Push adds the next price and reports a crossover, if any.
func (s *SMACross) Push(price domain.Money) Signal {
	if s.count == s.long {
		s.sum = safe.SafeSub(s.sum, s.prices[s.head])
	}
	s.prices[s.head] = int64(price)
	s.sum = safe.SafeAdd(s.sum, int64(price))
	s.head = (s.head + 1) % s.long
	if s.count < s.long {
		s.count++
	}
	if s.count < s.long {
		return SignalNone
	}

	curLong := safe.SafeDiv(s.sum, int64(s.long))
	curShort := s.shortAverage()

	sig := SignalNone
	if s.primed {
		switch {
		case s.prevShort <= s.prevLong && curShort > curLong:
			sig = SignalGolden
		case s.prevShort >= s.prevLong && curShort < curLong:
			sig = SignalDead
		}
	}
	s.primed = true
	s.prevShort, s.prevLong = curShort, curLong
	return sig
}

// Averages returns the current short and long averages once the long window is full.
func (s *SMACross) Averages() (short, long domain.Money, ok bool) {
	if !s.primed {
		return 0, 0, false
	}
	return domain.Money(s.prevShort), domain.Money(s.prevLong), true
}

func (s *SMACross) shortAverage() int64 {
	var sum int64
	idx := s.head
	for i := 0; i < s.short; i++ {
		idx--
		if idx < 0 {
			idx = s.long - 1
		}
		sum = safe.SafeAdd(sum, s.prices[idx])
	}
	return safe.SafeDiv(sum, int64(s.short))
}

// Trend is the moving-average view of a product's ask history in a city.
type Trend struct {
	Short   domain.Money `json:"short"`
	Long    domain.Money `json:"long"`
	Signal  Signal       `json:"signal"`
	Samples int          `json:"samples"`
}

// Trend folds the Buy price history of product in city through an SMA crossover.
// ok is false while the history is shorter than the long window.
func (s *MarketService) Trend(city domain.CityName, product domain.Product, short, long int) (Trend, bool) {
	h := s.reader.State().HistoryOf(city, product)
	if len(h) < long {
		return Trend{Samples: len(h)}, false
	}

	sma := NewSMACross(short, long)
	var last Signal
	for _, sum := range h {
		last = sma.Push(sum.Buy)
	}
	sh, lo, _ := sma.Averages()
	return Trend{Short: sh, Long: lo, Signal: last, Samples: len(h)}, true
}
