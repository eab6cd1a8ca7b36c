package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// EntityID is the stable identity of a trading agent.
type EntityID = uuid.UUID

// EntityKind tags the Entity variant.
type EntityKind uint8

const (
	KindCitizen  EntityKind = iota + 1 // produces and consumes per its personality
	KindResource                       // natural resource tied to one product
	KindUser                           // the player
)

func (k EntityKind) String() string {
	switch k {
	case KindCitizen:
		return "citizen"
	case KindResource:
		return "resource"
	case KindUser:
		return "user"
	default:
		return "unknown"
	}
}

// Entity is a trading agent. Product is set only for KindResource.
type Entity struct {
	ID          EntityID    `json:"id"`
	Kind        EntityKind  `json:"kind"`
	Name        string      `json:"name"`
	Product     Product     `json:"product,omitempty"`
	Personality Personality `json:"personality"`
}

// NewCitizen builds a citizen entity.
func NewCitizen(id EntityID, name string, p Personality) Entity {
	return Entity{ID: id, Kind: KindCitizen, Name: name, Personality: p}
}

// NewResource builds a natural-resource entity for product.
func NewResource(id EntityID, product Product, p Personality) Entity {
	return Entity{ID: id, Kind: KindResource, Product: product, Personality: p}
}

// NewUser builds the player entity.
func NewUser(id EntityID) Entity {
	return Entity{ID: id, Kind: KindUser, Name: "PLAYER", Personality: PersonalityUser}
}

// Producer reports whether the production generator draws yields for this entity.
func (e Entity) Producer() bool {
	switch e.Kind {
	case KindCitizen, KindResource:
		return true
	case KindUser:
		return false
	default:
		panic(fmt.Sprintf("UNKNOWN_ENTITY_KIND: %d", e.Kind))
	}
}

// DisplayName is the label shown for the entity.
func (e Entity) DisplayName() string {
	switch e.Kind {
	case KindCitizen:
		return e.Name
	case KindResource:
		return string(e.Product)
	case KindUser:
		return "PLAYER"
	default:
		panic(fmt.Sprintf("UNKNOWN_ENTITY_KIND: %d", e.Kind))
	}
}

// Personality drives a citizen's production and demand profile.
type Personality uint8

const (
	PersonalityAlcoholic Personality = iota + 1
	PersonalityBrewer
	PersonalityFarmer
	PersonalityMachinist
	PersonalityMiner
	PersonalitySpeculator
	PersonalityUser
)

// PersonalityProps is the static profile of a personality.
type PersonalityProps struct {
	Name string
	// Frequency is the relative weight used when drawing a random personality (per mille).
	Frequency int
	Capital   PriceRange
	Produces  []Category
	Demands   []Category
}

var personalityTable = map[Personality]PersonalityProps{
	PersonalityAlcoholic:  {"Alcoholic", 100, PriceRange{90_00, 100_00}, nil, []Category{CategoryConsumable}},
	PersonalityBrewer:     {"Brewer", 500, PriceRange{5_00, 10_00}, []Category{CategoryConsumable}, []Category{CategoryIngredient}},
	PersonalityFarmer:     {"Farmer", 500, PriceRange{1_00, 5_00}, []Category{CategoryIngredient}, []Category{CategoryLightEquipment, CategoryConsumable}},
	PersonalityMachinist:  {"Machinist", 100, PriceRange{5_00, 10_00}, []Category{CategoryLightEquipment, CategoryHeavyEquipment}, []Category{CategoryEquipmentParts, CategoryConsumable}},
	PersonalityMiner:      {"Miner", 300, PriceRange{5_00, 10_00}, []Category{CategoryEquipmentParts}, []Category{CategoryConsumable}},
	PersonalitySpeculator: {"Speculator", 100, PriceRange{500_00, 900_00}, nil, Categories()},
	PersonalityUser:       {"You", 0, PriceRange{5_00, 10_00}, nil, nil},
}

// Props returns the profile. Panics on an unknown personality.
func (p Personality) Props() PersonalityProps {
	props, ok := personalityTable[p]
	if !ok {
		panic(fmt.Sprintf("UNKNOWN_PERSONALITY: %d", p))
	}
	return props
}

func (p Personality) String() string {
	if props, ok := personalityTable[p]; ok {
		return props.Name
	}
	return "unknown"
}

// Personalities lists the personalities a generated citizen may draw, in declaration order.
func Personalities() []Personality {
	return []Personality{
		PersonalityAlcoholic,
		PersonalityBrewer,
		PersonalityFarmer,
		PersonalityMachinist,
		PersonalityMiner,
		PersonalitySpeculator,
	}
}
