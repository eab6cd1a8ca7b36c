package ledger

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"prohibition/internal/domain"
	"prohibition/internal/infra"
	"prohibition/internal/world"
)

var (
	seller = uuid.MustParse("00000000-0000-0000-0000-000000000101")
	buyer  = uuid.MustParse("00000000-0000-0000-0000-000000000102")
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setup(t *testing.T) *world.State {
	t.Helper()
	st := world.New()
	st.AddCity(domain.City{Name: "Chicago", Population: 2_000_000})
	st.AddEntity(domain.NewCitizen(seller, "Sal", domain.PersonalityFarmer), "Chicago", 10_00)
	st.AddEntity(domain.NewCitizen(buyer, "Bea", domain.PersonalityBrewer), "Chicago", 10_00)
	st.AddLine("Chicago", seller, domain.InventoryLine{Product: domain.Corn, Type: domain.LineSupply, Quantity: 5, Bid: 100})
	st.AddLine("Chicago", buyer, domain.InventoryLine{Product: domain.Corn, Type: domain.LineDemand, Quantity: 3, Bid: 150})
	return st
}

func trade(qty int64) domain.Trade {
	return domain.Trade{Buyer: buyer, Seller: seller, City: "Chicago", Product: domain.Corn, Price: 125, Quantity: qty}
}

func TestApplyTrades_MovesGoodsAndCapital(t *testing.T) {
	st := setup(t)
	a := NewApplier(PolicyPanic, quietLogger(), nil)
	before := st.TotalCapital()

	rep, err := a.ApplyTrades(st, []domain.Trade{trade(3)})
	if err != nil {
		t.Fatalf("ApplyTrades failed: %v", err)
	}
	if rep.Applied != 1 {
		t.Errorf("Expected 1 applied, got %d", rep.Applied)
	}
	if rep.CapitalDelta != 0 {
		t.Errorf("Expected zero capital delta, got %d", rep.CapitalDelta)
	}

	if got := st.InventoryOf(seller, "Chicago")[0].Quantity; got != 2 {
		t.Errorf("Expected seller supply 2, got %d", got)
	}
	if got := st.InventoryOf(buyer, "Chicago")[0].Quantity; got != 0 {
		t.Errorf("Expected buyer demand 0, got %d", got)
	}
	if got := st.CapitalOf(seller); got != 10_00+375 {
		t.Errorf("Expected seller capital %d, got %d", 10_00+375, got)
	}
	if got := st.CapitalOf(buyer); got != 10_00-375 {
		t.Errorf("Expected buyer capital %d, got %d", 10_00-375, got)
	}
	if after := st.TotalCapital(); after != before {
		t.Errorf("Expected total capital %d, got %d", before, after)
	}
}

func TestApplyTrades_SpreadsAcrossLines(t *testing.T) {
	st := setup(t)
	st.AddLine("Chicago", seller, domain.InventoryLine{Product: domain.Corn, Brand: "Busch", Type: domain.LineSupply, Quantity: 4, Bid: 90})
	st.AddLine("Chicago", buyer, domain.InventoryLine{Product: domain.Corn, Type: domain.LineDemand, Quantity: 5, Bid: 140})
	a := NewApplier(PolicyPanic, quietLogger(), nil)

	if _, err := a.ApplyTrades(st, []domain.Trade{trade(7)}); err != nil {
		t.Fatalf("ApplyTrades failed: %v", err)
	}

	s := st.InventoryOf(seller, "Chicago")
	if s[0].Quantity != 0 || s[1].Quantity != 2 {
		t.Errorf("Expected seller lines [0 2], got [%d %d]", s[0].Quantity, s[1].Quantity)
	}
	b := st.InventoryOf(buyer, "Chicago")
	if b[0].Quantity != 0 || b[1].Quantity != 1 {
		t.Errorf("Expected buyer lines [0 1], got [%d %d]", b[0].Quantity, b[1].Quantity)
	}
}

func TestApplyTrades_DebitsMatchingBrandFirst(t *testing.T) {
	st := setup(t)
	st.AddLine("Chicago", seller, domain.InventoryLine{Product: domain.Corn, Brand: "Busch", Type: domain.LineSupply, Quantity: 4, Bid: 90})
	st.AddLine("Chicago", buyer, domain.InventoryLine{Product: domain.Corn, Type: domain.LineDemand, Quantity: 2, Bid: 140})
	a := NewApplier(PolicyPanic, quietLogger(), nil)

	tr := trade(3)
	tr.SellerBrand = "Busch"
	if _, err := a.ApplyTrades(st, []domain.Trade{tr}); err != nil {
		t.Fatalf("ApplyTrades failed: %v", err)
	}

	s := st.InventoryOf(seller, "Chicago")
	if s[0].Quantity != 5 {
		t.Errorf("Expected unbranded line untouched at 5, got %d", s[0].Quantity)
	}
	if s[1].Quantity != 1 {
		t.Errorf("Expected Busch line 1, got %d", s[1].Quantity)
	}

	// What the branded line cannot cover falls through to the other brand.
	tr = trade(2)
	tr.SellerBrand = "Busch"
	if _, err := a.ApplyTrades(st, []domain.Trade{tr}); err != nil {
		t.Fatalf("ApplyTrades failed: %v", err)
	}
	s = st.InventoryOf(seller, "Chicago")
	if s[0].Quantity != 4 || s[1].Quantity != 0 {
		t.Errorf("Expected seller lines [4 0], got [%d %d]", s[0].Quantity, s[1].Quantity)
	}
}

func TestApplyTrades_PanicPolicy(t *testing.T) {
	st := setup(t)
	a := NewApplier(PolicyPanic, quietLogger(), nil)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Applier should have panicked on oversold supply")
		}
		err, ok := r.(error)
		if !ok || !domain.IsInvariantViolation(err) {
			t.Errorf("Expected invariant violation, got %v", r)
		}
	}()
	a.ApplyTrades(st, []domain.Trade{trade(9)})
}

func TestApplyTrades_ClampPolicy(t *testing.T) {
	st := setup(t)
	m := &infra.Metrics{}
	a := NewApplier(PolicyClamp, quietLogger(), m)

	rep, err := a.ApplyTrades(st, []domain.Trade{trade(4)})
	if err != nil {
		t.Fatalf("Clamp policy should not fail: %v", err)
	}
	// supply 5 covers it, demand 3 is short by 1
	if len(rep.Clamped) != 1 {
		t.Fatalf("Expected 1 clamp, got %d", len(rep.Clamped))
	}
	c := rep.Clamped[0]
	if c.Entity != buyer || c.Type != domain.LineDemand || c.Shortfall != 1 {
		t.Errorf("Unexpected clamp record %+v", c)
	}
	if got := st.InventoryOf(buyer, "Chicago")[0].Quantity; got != 0 {
		t.Errorf("Expected buyer demand clamped to 0, got %d", got)
	}
	if got := m.Snapshot().Clamps; got != 1 {
		t.Errorf("Expected 1 clamp metric, got %d", got)
	}
	if err := st.Validate(); err != nil {
		t.Errorf("State should stay valid after clamp: %v", err)
	}
}

func TestApplyTrades_RejectPolicyIsAtomic(t *testing.T) {
	st := setup(t)
	a := NewApplier(PolicyReject, quietLogger(), nil)
	snapshot := st.Clone()

	ok := trade(1)
	bad := trade(1)
	bad.Buyer = uuid.MustParse("00000000-0000-0000-0000-000000000999")

	_, err := a.ApplyTrades(st, []domain.Trade{ok, bad})
	if err == nil {
		t.Fatal("Expected error for missing demand line")
	}
	var ie *domain.InvariantError
	if !errors.As(err, &ie) {
		t.Fatalf("Expected *InvariantError, got %T", err)
	}
	if ie.Op != "trade.buy" || ie.Have != 0 || ie.Want != 1 {
		t.Errorf("Unexpected error details %+v", ie)
	}

	if got := st.InventoryOf(seller, "Chicago")[0].Quantity; got != snapshot.InventoryOf(seller, "Chicago")[0].Quantity {
		t.Errorf("First trade leaked into state: supply %d", got)
	}
	if st.CapitalOf(seller) != snapshot.CapitalOf(seller) {
		t.Error("Capital changed after rejected batch")
	}
}

func TestApplyTrades_SelfTrade(t *testing.T) {
	st := setup(t)
	st.AddLine("Chicago", seller, domain.InventoryLine{Product: domain.Corn, Type: domain.LineDemand, Quantity: 2, Bid: 200})
	a := NewApplier(PolicyPanic, quietLogger(), nil)

	tr := trade(2)
	tr.Buyer = seller
	rep, err := a.ApplyTrades(st, []domain.Trade{tr})
	if err != nil {
		t.Fatalf("ApplyTrades failed: %v", err)
	}
	if rep.CapitalDelta != 0 || st.CapitalOf(seller) != 10_00 {
		t.Errorf("Self trade must not move capital, delta %d balance %d", rep.CapitalDelta, st.CapitalOf(seller))
	}
}

func TestApplyProductions_IncrementsOrCreates(t *testing.T) {
	st := setup(t)
	m := &infra.Metrics{}
	a := NewApplier(PolicyPanic, quietLogger(), m)

	prods := []domain.Production{
		{City: "Chicago", Entity: seller, Line: domain.InventoryLine{Product: domain.Corn, Type: domain.LineSupply, Quantity: 2, Bid: 100}},
		{City: "Chicago", Entity: seller, Line: domain.InventoryLine{Product: domain.Corn, Brand: "Busch", Type: domain.LineSupply, Quantity: 1, Bid: 80}},
		{City: "Detroit", Entity: seller, Line: domain.InventoryLine{Product: domain.Rye, Type: domain.LineSupply, Quantity: 3, Bid: 70}},
	}

	rep, err := a.ApplyProductions(st, prods)
	if err != nil {
		t.Fatalf("ApplyProductions failed: %v", err)
	}
	if rep.Applied != 3 {
		t.Errorf("Expected 3 applied, got %d", rep.Applied)
	}

	lines := st.InventoryOf(seller, "Chicago")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines in Chicago, got %d", len(lines))
	}
	if lines[0].Quantity != 7 {
		t.Errorf("Expected unbranded corn 7, got %d", lines[0].Quantity)
	}
	if lines[1].Brand != "Busch" || lines[1].Quantity != 1 {
		t.Errorf("Expected new Busch line with 1, got %+v", lines[1])
	}
	if got := st.InventoryOf(seller, "Detroit"); len(got) != 1 || got[0].Quantity != 3 {
		t.Errorf("Expected Detroit rye line with 3, got %+v", got)
	}
	if got := m.Snapshot().Productions; got != 3 {
		t.Errorf("Expected 3 production metrics, got %d", got)
	}
}

func TestApplyProductions_NeverDecreases(t *testing.T) {
	st := setup(t)
	a := NewApplier(PolicyPanic, quietLogger(), nil)
	before := st.Clone()

	prods := []domain.Production{
		{City: "Chicago", Entity: seller, Line: domain.InventoryLine{Product: domain.Corn, Type: domain.LineSupply, Quantity: 0}},
		{City: "Chicago", Entity: buyer, Line: domain.InventoryLine{Product: domain.Corn, Type: domain.LineSupply, Quantity: 1}},
	}
	if _, err := a.ApplyProductions(st, prods); err != nil {
		t.Fatalf("ApplyProductions failed: %v", err)
	}

	for _, id := range []domain.EntityID{seller, buyer} {
		old := before.InventoryOf(id, "Chicago")
		now := st.InventoryOf(id, "Chicago")
		for i := range old {
			if now[i].Quantity < old[i].Quantity {
				t.Errorf("Line %d of %s decreased: %d -> %d", i, id, old[i].Quantity, now[i].Quantity)
			}
		}
	}
	// the buyer's demand line is not a supply line, so a new supply line appears
	if got := st.InventoryOf(buyer, "Chicago"); len(got) != 2 || got[1].Type != domain.LineSupply {
		t.Errorf("Expected a new supply line for buyer, got %+v", got)
	}
}

func TestApplyProductions_RejectsNegative(t *testing.T) {
	st := setup(t)
	a := NewApplier(PolicyClamp, quietLogger(), nil)

	_, err := a.ApplyProductions(st, []domain.Production{
		{City: "Chicago", Entity: seller, Line: domain.InventoryLine{Product: domain.Corn, Quantity: -1}},
	})
	if !errors.Is(err, domain.ErrNegativeQuantity) {
		t.Errorf("Expected ErrNegativeQuantity, got %v", err)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyClamp, false},
		{"clamp", PolicyClamp, false},
		{"panic", PolicyPanic, false},
		{"reject", PolicyReject, false},
		{"ignore", PolicyClamp, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}
