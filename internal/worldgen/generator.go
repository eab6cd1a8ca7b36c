// Package worldgen builds a populated starting world from a seed.
package worldgen

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"prohibition/internal/domain"
	"prohibition/internal/world"
)

var firstNames = []string{
	"George", "Ruth", "Joseph", "Virginia", "Richard", "Doris", "Edward", "Mildred",
	"Donald", "Frances", "Robert", "Mary", "John", "Dorothy", "James", "Helen",
	"William", "Betty", "Charles", "Margaret", "Thomas", "Elizabeth", "Frank", "Evelyn",
	"Harold", "Anna", "Paul", "Marie", "Raymond", "Alice", "Walter", "Jean", "Jack", "Shirley",
}

// weighted is a category with a percent weight.
type weighted struct {
	category domain.Category
	weight   int
}

// Citizens mostly want drink.
var starterDemand = []weighted{
	{domain.CategoryConsumable, 60},
	{domain.CategoryIngredient, 10},
	{domain.CategoryEquipmentParts, 10},
	{domain.CategoryLightEquipment, 10},
	{domain.CategoryHeavyEquipment, 10},
}

// Resources and citizen holdings are mostly raw ingredients.
var starterSupply = []weighted{
	{domain.CategoryIngredient, 70},
	{domain.CategoryConsumable, 15},
	{domain.CategoryEquipmentParts, 7},
	{domain.CategoryLightEquipment, 5},
	{domain.CategoryHeavyEquipment, 3},
}

// Generator creates initial worlds. Equal seeds give equal worlds.
type Generator struct {
	Seed int64
	// Cities to populate. Empty means the full reference catalog.
	Cities []domain.City
}

// Factory adapts the generator to world.Factory.
func (g Generator) Factory() world.Factory {
	return g.Generate
}

// Generate builds the world: citizens and resources per city size, and the
// player with an empty inventory in the smallest city.
func (g Generator) Generate() (*world.State, error) {
	rng := rand.New(rand.NewSource(g.Seed))
	cities := g.Cities
	if len(cities) == 0 {
		cities = domain.Cities()
	}
	if len(cities) == 0 {
		return nil, fmt.Errorf("worldgen: no cities")
	}

	st := world.New()
	smallest := cities[0]
	for _, c := range cities {
		st.AddCity(c)
		if c.Population < smallest.Population {
			smallest = c
		}
	}

	for _, c := range cities {
		size := c.Size()
		for i := 0; i < size.Citizens(); i++ {
			if err := g.addCitizen(st, rng, c.Name); err != nil {
				return nil, err
			}
		}
		for i := 0; i < size.Resources(); i++ {
			if err := g.addResource(st, rng, c.Name); err != nil {
				return nil, err
			}
		}
	}

	id, err := newID(rng)
	if err != nil {
		return nil, err
	}
	st.AddEntity(domain.NewUser(id), smallest.Name, domain.RandomPrice(rng, domain.QualityMidrange.Range()))

	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("worldgen: %w", err)
	}
	return st, nil
}

func (g Generator) addCitizen(st *world.State, rng *rand.Rand, city domain.CityName) error {
	id, err := newID(rng)
	if err != nil {
		return err
	}
	p := randomPersonality(rng)
	name := fmt.Sprintf("%s %c.", firstNames[rng.Intn(len(firstNames))], 'A'+rune(rng.Intn(26)))
	st.AddEntity(domain.NewCitizen(id, name, p), city, domain.RandomPrice(rng, p.Props().Capital))

	for i := 0; i < 3; i++ {
		st.AddLine(city, id, randomLine(rng, pick(rng, starterDemand), domain.LineDemand))
	}
	for i := 0; i < 3; i++ {
		st.AddLine(city, id, randomLine(rng, pick(rng, starterSupply), domain.LineSupply))
	}
	return nil
}

func (g Generator) addResource(st *world.State, rng *rand.Rand, city domain.CityName) error {
	id, err := newID(rng)
	if err != nil {
		return err
	}
	products := domain.ProductsIn(pick(rng, starterSupply))
	product := products[rng.Intn(len(products))]
	p := randomPersonality(rng)

	st.AddEntity(domain.NewResource(id, product, p), city, domain.RandomPrice(rng, p.Props().Capital))
	line := randomLine(rng, product.Category(), domain.LineSupply)
	line.Product = product
	line.Brand = randomBrand(rng, product)
	line.Bid = domain.RandomPrice(rng, product.PriceRange())
	st.AddLine(city, id, line)
	return nil
}

func randomLine(rng *rand.Rand, c domain.Category, t domain.LineType) domain.InventoryLine {
	products := domain.ProductsIn(c)
	product := products[rng.Intn(len(products))]
	return domain.InventoryLine{
		Product:  product,
		Brand:    randomBrand(rng, product),
		Type:     t,
		Quantity: starterQuantity(rng, c),
		Bid:      domain.RandomPrice(rng, product.PriceRange()),
	}
}

func randomBrand(rng *rand.Rand, p domain.Product) domain.Brand {
	if !p.Branded() {
		return ""
	}
	return domain.Brands[rng.Intn(len(domain.Brands))]
}

// starterQuantity is the opening stock of a line.
func starterQuantity(rng *rand.Rand, c domain.Category) int64 {
	switch c {
	case domain.CategoryIngredient:
		return int64(domain.Between(rng, 1, 19))
	case domain.CategoryConsumable:
		return int64(domain.Between(rng, 1, 9))
	case domain.CategoryEquipmentParts:
		return int64(domain.Between(rng, 1, 7))
	default:
		return int64(domain.Between(rng, 1, 2))
	}
}

func pick(rng *rand.Rand, table []weighted) domain.Category {
	total := 0
	for _, w := range table {
		total += w.weight
	}
	r := rng.Intn(total)
	for _, w := range table {
		if r < w.weight {
			return w.category
		}
		r -= w.weight
	}
	return table[0].category
}

func randomPersonality(rng *rand.Rand) domain.Personality {
	all := domain.Personalities()
	total := 0
	for _, p := range all {
		total += p.Props().Frequency
	}
	r := rng.Intn(total)
	for _, p := range all {
		f := p.Props().Frequency
		if r < f {
			return p
		}
		r -= f
	}
	return domain.PersonalityFarmer
}

// newID draws a v4 UUID from rng so IDs follow the seed.
func newID(rng *rand.Rand) (domain.EntityID, error) {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return uuid.Nil, fmt.Errorf("worldgen: entity id: %w", err)
	}
	return id, nil
}
