package domain

import "testing"

func TestMoney_Display(t *testing.T) {
	cases := []struct {
		in   Money
		want string
	}{
		{0, "¢0"},
		{75, "¢75"},
		{100, "$1.00"},
		{12_345, "$123.45"},
		{-250, "-$2.50"},
	}
	for _, tc := range cases {
		if got := tc.in.Display(); got != tc.want {
			t.Errorf("Display(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("12.50")
	if err != nil {
		t.Fatalf("ParseMoney failed: %v", err)
	}
	if m != 1250 {
		t.Errorf("Expected 1250, got %d", m)
	}

	if _, err := ParseMoney("0.005"); err == nil {
		t.Error("Expected error for sub-cent precision")
	}
	if _, err := ParseMoney("abc"); err == nil {
		t.Error("Expected error for malformed input")
	}
}

func TestQuality_RangesAreOrdered(t *testing.T) {
	for q := QualityBulk; q <= QualityExorbitant; q++ {
		r := q.Range()
		if r.Low > r.High {
			t.Errorf("Quality %d: low %d above high %d", q, r.Low, r.High)
		}
	}
}

func TestCatalog_EveryCategoryStocked(t *testing.T) {
	for _, c := range Categories() {
		if len(ProductsIn(c)) == 0 {
			t.Errorf("Category %s has no products", c)
		}
	}
}
