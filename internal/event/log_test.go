package event

import (
	"testing"

	"github.com/google/uuid"

	"prohibition/internal/domain"
)

func TestLog_AppendTick(t *testing.T) {
	l := NewLog()
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	prods := []domain.Production{{City: "Chicago", Entity: id, Line: domain.InventoryLine{Product: domain.Corn, Quantity: 2}}}
	trades := []domain.Trade{
		{Buyer: id, Seller: id, City: "Chicago", Product: domain.Corn, Price: 5, Quantity: 1},
		{Buyer: id, Seller: id, City: "Chicago", Product: domain.Rye, Price: 7, Quantity: 2},
	}

	got := l.AppendTick(4, prods, trades)
	if len(got) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(got))
	}
	if got[0].Kind != KindProduction || got[0].Seq != 1 || got[0].Tick != 4 {
		t.Errorf("Unexpected first entry %+v", got[0])
	}
	if got[2].Kind != KindTrade || got[2].Trade.Product != domain.Rye || got[2].Seq != 3 {
		t.Errorf("Unexpected last entry %+v", got[2])
	}
	if l.Len() != 3 || l.LastSeq() != 3 {
		t.Errorf("Expected len 3 and last seq 3, got %d/%d", l.Len(), l.LastSeq())
	}

	// payloads are copies, not aliases of the caller's slices
	trades[1].Quantity = 99
	if l.Entries()[2].Trade.Quantity != 2 {
		t.Error("Log entry aliases the input slice")
	}
}

func TestLog_Since(t *testing.T) {
	l := NewLog()
	for i := 0; i < 5; i++ {
		l.Append(Entry{Kind: KindLoad})
	}

	tests := []struct {
		since uint64
		want  int
		first uint64
	}{
		{0, 5, 1},
		{2, 3, 3},
		{5, 0, 0},
		{9, 0, 0},
	}
	for _, tt := range tests {
		got := l.Since(tt.since)
		if len(got) != tt.want {
			t.Errorf("Since(%d): expected %d entries, got %d", tt.since, tt.want, len(got))
			continue
		}
		if tt.want > 0 && got[0].Seq != tt.first {
			t.Errorf("Since(%d): expected first seq %d, got %d", tt.since, tt.first, got[0].Seq)
		}
	}
}

func TestLog_Until(t *testing.T) {
	l := NewLog()
	for i := 0; i < 4; i++ {
		l.Append(Entry{Kind: KindLoad})
	}

	tests := []struct {
		until uint64
		want  int
	}{
		{0, 0},
		{2, 2},
		{4, 4},
		{9, 4},
	}
	for _, tt := range tests {
		got := l.Until(tt.until)
		if len(got) != tt.want {
			t.Errorf("Until(%d): expected %d entries, got %d", tt.until, tt.want, len(got))
			continue
		}
		if tt.want > 0 && got[len(got)-1].Seq != uint64(tt.want) {
			t.Errorf("Until(%d): expected last seq %d, got %d", tt.until, tt.want, got[len(got)-1].Seq)
		}
	}
}

func TestRestore(t *testing.T) {
	l, err := Restore([]Entry{{Seq: 1, Kind: KindLoad}, {Seq: 2, Kind: KindLoad}})
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if e := l.Append(Entry{Kind: KindLoad}); e.Seq != 3 {
		t.Errorf("Expected seq 3 after restore, got %d", e.Seq)
	}

	if _, err := Restore([]Entry{{Seq: 2}}); err == nil {
		t.Error("Expected error for non-contiguous entries")
	}
}
