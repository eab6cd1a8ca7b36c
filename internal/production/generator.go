// Package production draws per-tick yields for every producer supply line.
package production

import (
	"fmt"

	"prohibition/internal/domain"
	"prohibition/internal/world"
)

// YieldFunc returns the units a supply line of the given category produces this tick.
type YieldFunc func(c domain.Category, rng domain.RandomSource) int64

// Generator walks the world and emits one Production per supply line with a positive yield.
// It never mutates the state.
type Generator struct {
	Yield YieldFunc
}

// NewGenerator returns a generator using DefaultYield.
func NewGenerator() *Generator {
	return &Generator{Yield: DefaultYield}
}

// Generate iterates cities by name, entities by ID, then lines in stored order,
// so a seeded rng gives the same output every run.
func (g *Generator) Generate(st *world.State, rng domain.RandomSource) []domain.Production {
	yield := g.Yield
	if yield == nil {
		yield = DefaultYield
	}

	var out []domain.Production
	for _, city := range st.SortedCities() {
		for _, id := range st.SortedEntities(city) {
			e, ok := st.Entities[id]
			if !ok || !e.Producer() {
				continue
			}
			for _, line := range st.Inventories[city][id] {
				if !line.IsSupply() {
					continue
				}
				n := yield(line.Product.Category(), rng)
				if n <= 0 {
					continue
				}
				out = append(out, domain.Production{
					City:   city,
					Entity: id,
					Line: domain.InventoryLine{
						Product:  line.Product,
						Brand:    line.Brand,
						Type:     domain.LineSupply,
						Quantity: n,
						Bid:      line.Bid,
					},
				})
			}
		}
	}
	return out
}

// oneIn yields a single unit with probability 1/n. Only the top draw hits,
// so a source that always draws zero never produces.
func oneIn(rng domain.RandomSource, n int) int64 {
	if rng.Intn(n) == n-1 {
		return 1
	}
	return 0
}

// DefaultYield is the per-category production table.
func DefaultYield(c domain.Category, rng domain.RandomSource) int64 {
	switch c {
	case domain.CategoryIngredient:
		return int64(domain.Between(rng, 0, 3))
	case domain.CategoryConsumable:
		return oneIn(rng, 3)
	case domain.CategoryEquipmentParts:
		return oneIn(rng, 6)
	case domain.CategoryLightEquipment:
		return oneIn(rng, 21)
	case domain.CategoryHeavyEquipment:
		return oneIn(rng, 26)
	default:
		panic(fmt.Sprintf("UNKNOWN_CATEGORY: %d", c))
	}
}

// YieldBounds is the inclusive range DefaultYield can return for c.
func YieldBounds(c domain.Category) (lo, hi int64) {
	if c == domain.CategoryIngredient {
		return 0, 3
	}
	return 0, 1
}
