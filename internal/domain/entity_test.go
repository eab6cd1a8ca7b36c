package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestEntity_Producer(t *testing.T) {
	t.Run("citizen produces", func(t *testing.T) {
		if !NewCitizen(uuid.New(), "Ruth K.", PersonalityBrewer).Producer() {
			t.Error("Citizen should be a producer")
		}
	})

	t.Run("resource produces", func(t *testing.T) {
		if !NewResource(uuid.New(), Corn, PersonalityFarmer).Producer() {
			t.Error("Resource should be a producer")
		}
	})

	t.Run("user never produces", func(t *testing.T) {
		if NewUser(uuid.New()).Producer() {
			t.Error("User should not be a producer")
		}
	})

	t.Run("unknown kind panics", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic for unknown kind")
			}
		}()
		Entity{Kind: 99}.Producer()
	})
}

func TestEntity_DisplayName(t *testing.T) {
	if got := NewResource(uuid.New(), Juniper, PersonalityFarmer).DisplayName(); got != "Juniper" {
		t.Errorf("Expected Juniper, got %s", got)
	}
	if got := NewUser(uuid.New()).DisplayName(); got != "PLAYER" {
		t.Errorf("Expected PLAYER, got %s", got)
	}
}

func TestCity_Size(t *testing.T) {
	cases := []struct {
		pop  int
		want CitySize
	}{
		{46_000, SizeTown},
		{200_616, SizeCity},
		{457_147, SizeMajorCity},
		{993_078, SizeMetropolis},
		{5_620_048, SizeMegalopolis},
	}
	for _, tc := range cases {
		if got := (City{Population: tc.pop}).Size(); got != tc.want {
			t.Errorf("Population %d: expected size %d, got %d", tc.pop, tc.want, got)
		}
	}
}

func TestCapitalBook_Conservation(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	book := NewCapitalBook(map[EntityID]Money{a: 1_000, b: 500})
	before := book.Total()

	book.Debit(a, 300)
	book.Credit(b, 300)

	if book.Total() != before {
		t.Errorf("Expected total %d, got %d", before, book.Total())
	}
	if book.Get(a) != 700 {
		t.Errorf("Expected 700, got %d", book.Get(a))
	}
	if book.Get(uuid.New()) != 0 {
		t.Error("Missing entity should read as zero")
	}
}
