package domain

import (
	"math/rand"
	"testing"
)

func TestMarketSummary_StartsFromPriceRange(t *testing.T) {
	s := NewMarketSummary(Corn)
	r := Corn.PriceRange()
	if s.Sell != r.High {
		t.Errorf("Expected sell %d, got %d", r.High, s.Sell)
	}
	if s.Buy != r.Low {
		t.Errorf("Expected buy %d, got %d", r.Low, s.Buy)
	}
	if s.HasSupply() || s.HasDemand() {
		t.Error("Fresh summary should have no supply or demand")
	}
}

func TestMarketSummary_Apply(t *testing.T) {
	s := NewMarketSummary(Gin) // range 75..200
	s = s.Apply(InventoryLine{Product: Gin, Type: LineSupply, Quantity: 4, Bid: 150})
	s = s.Apply(InventoryLine{Product: Gin, Type: LineSupply, Quantity: 1, Bid: 120})
	s = s.Apply(InventoryLine{Product: Gin, Type: LineDemand, Quantity: 3, Bid: 90})
	s = s.Apply(InventoryLine{Product: Rum, Type: LineDemand, Quantity: 9, Bid: 1})

	if s.SupplyQty != 5 {
		t.Errorf("Expected supply 5, got %d", s.SupplyQty)
	}
	if s.DemandQty != 3 {
		t.Errorf("Expected demand 3, got %d", s.DemandQty)
	}
	if s.Buy != 150 {
		t.Errorf("Expected buy 150 (max supply ask), got %d", s.Buy)
	}
	if s.Sell != 90 {
		t.Errorf("Expected sell 90 (min demand bid), got %d", s.Sell)
	}
}

func TestMarketSummary_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	lines := make([]InventoryLine, 0, 40)
	for i := 0; i < 40; i++ {
		typ := LineSupply
		if i%3 == 0 {
			typ = LineDemand
		}
		lines = append(lines, InventoryLine{
			Product:  Beer,
			Type:     typ,
			Quantity: int64(rng.Intn(20)),
			Bid:      RandomPrice(rng, PriceRange{1, 300}),
		})
	}

	fold := func(ls []InventoryLine) MarketSummary {
		s := NewMarketSummary(Beer)
		for _, l := range ls {
			s = s.Apply(l)
		}
		return s
	}

	want := fold(lines)
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(lines), func(a, b int) { lines[a], lines[b] = lines[b], lines[a] })
		if got := fold(lines); got != want {
			t.Fatalf("Shuffle %d: expected %+v, got %+v", i, want, got)
		}
	}
}
