package engine

import (
	"errors"
	"testing"

	"prohibition/internal/domain"
)

func TestTravel_MovesPlayerAndGoods(t *testing.T) {
	st := testWorld(t)
	st.AddLine("Chicago", playerID, domain.InventoryLine{Product: domain.Gin, Type: domain.LineSupply, Quantity: 3, Bid: 9_00})
	st.AddLine("Detroit", playerID, domain.InventoryLine{Product: domain.Gin, Type: domain.LineSupply, Quantity: 1, Bid: 8_00})
	capital := st.TotalCapital()

	tr, err := Travel(st, playerID, "Detroit")
	if err != nil {
		t.Fatalf("Travel failed: %v", err)
	}
	if tr.From != "Chicago" || tr.To != "Detroit" {
		t.Errorf("Unexpected travel record %+v", tr)
	}
	if city, _ := st.LocationOf(playerID); city != "Detroit" {
		t.Errorf("Expected player in Detroit, got %s", city)
	}
	if got := st.InventoryOf(playerID, "Chicago"); len(got) != 0 {
		t.Errorf("Expected nothing left in Chicago, got %+v", got)
	}
	got := st.InventoryOf(playerID, "Detroit")
	if len(got) != 1 || got[0].Quantity != 4 || got[0].Bid != 8_00 {
		t.Errorf("Expected merged gin line 4 @ 800, got %+v", got)
	}
	if st.TotalQuantity(domain.Gin, domain.LineSupply) != 4 {
		t.Error("Travel created or destroyed goods")
	}
	if st.TotalCapital() != capital {
		t.Error("Travel moved capital")
	}
	if err := st.Validate(); err != nil {
		t.Errorf("State invalid after travel: %v", err)
	}
}

func TestTravel_Errors(t *testing.T) {
	tests := []struct {
		name   string
		entity domain.EntityID
		to     domain.CityName
		want   error
	}{
		{"not player", sellerID, "Detroit", domain.ErrNotPlayer},
		{"unknown city", playerID, "Atlantis", domain.ErrUnknownCity},
		{"same city", playerID, "Chicago", domain.ErrSameCity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := testWorld(t)
			_, err := Travel(st, tt.entity, tt.to)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSetOrder_Demand(t *testing.T) {
	st := testWorld(t)
	line := domain.InventoryLine{Product: domain.Corn, Type: domain.LineDemand, Quantity: 4, Bid: 200}

	city, err := SetOrder(st, playerID, line)
	if err != nil {
		t.Fatalf("SetOrder failed: %v", err)
	}
	if city != "Chicago" {
		t.Errorf("Expected Chicago, got %s", city)
	}

	line.Quantity = 1
	if _, err := SetOrder(st, playerID, line); err != nil {
		t.Fatalf("SetOrder update failed: %v", err)
	}
	got := st.InventoryOf(playerID, "Chicago")
	if len(got) != 1 || got[0].Quantity != 1 || got[0].Bid != 200 {
		t.Errorf("Expected single demand line 1 @ 200, got %+v", got)
	}
}

func TestSetOrder_SupplyOnlyReprices(t *testing.T) {
	st := testWorld(t)

	_, err := SetOrder(st, playerID, domain.InventoryLine{Product: domain.Gin, Type: domain.LineSupply, Quantity: 9, Bid: 1})
	if !errors.Is(err, domain.ErrNoHolding) {
		t.Fatalf("Expected ErrNoHolding, got %v", err)
	}

	st.AddLine("Chicago", playerID, domain.InventoryLine{Product: domain.Gin, Type: domain.LineSupply, Quantity: 2, Bid: 9_00})
	if _, err := SetOrder(st, playerID, domain.InventoryLine{Product: domain.Gin, Type: domain.LineSupply, Quantity: 50, Bid: 7_50}); err != nil {
		t.Fatalf("SetOrder failed: %v", err)
	}
	got := st.InventoryOf(playerID, "Chicago")[0]
	if got.Quantity != 2 || got.Bid != 7_50 {
		t.Errorf("Expected 2 @ 750, got %d @ %d", got.Quantity, got.Bid)
	}
}

func TestSetOrder_Invalid(t *testing.T) {
	st := testWorld(t)

	_, err := SetOrder(st, playerID, domain.InventoryLine{Product: domain.Corn, Type: domain.LineDemand, Quantity: -1})
	if !domain.IsInvariantViolation(err) {
		t.Errorf("Expected invariant violation, got %v", err)
	}
	_, err = SetOrder(st, playerID, domain.InventoryLine{Product: "Snake Oil", Type: domain.LineDemand, Quantity: 1})
	if !errors.Is(err, domain.ErrUnknownProduct) {
		t.Errorf("Expected ErrUnknownProduct, got %v", err)
	}
	_, err = SetOrder(st, buyerID, domain.InventoryLine{Product: domain.Corn, Type: domain.LineDemand, Quantity: 1})
	if !errors.Is(err, domain.ErrNotPlayer) {
		t.Errorf("Expected ErrNotPlayer, got %v", err)
	}
}
