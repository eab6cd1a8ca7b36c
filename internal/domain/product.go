package domain

import (
	"fmt"
	"sort"
)

// Category groups products by how they are produced and consumed.
type Category uint8

const (
	CategoryIngredient Category = iota + 1
	CategoryConsumable
	CategoryEquipmentParts
	CategoryLightEquipment
	CategoryHeavyEquipment
)

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryIngredient,
		CategoryConsumable,
		CategoryEquipmentParts,
		CategoryLightEquipment,
		CategoryHeavyEquipment,
	}
}

func (c Category) String() string {
	switch c {
	case CategoryIngredient:
		return "ingredient"
	case CategoryConsumable:
		return "consumable"
	case CategoryEquipmentParts:
		return "equipment-parts"
	case CategoryLightEquipment:
		return "light-equipment"
	case CategoryHeavyEquipment:
		return "heavy-equipment"
	default:
		return "unknown"
	}
}

// Quality is the price tier of a product.
type Quality uint8

const (
	QualityBulk Quality = iota + 1
	QualityDiscount
	QualityEconomy
	QualityBudget
	QualityAffordable
	QualityMidrange
	QualityAboveAverage
	QualitySuperior
	QualityExpensive
	QualityLavish
	QualityLuxury
	QualityExorbitant
)

// Range returns the base price band of the tier, in cents.
func (q Quality) Range() PriceRange {
	switch q {
	case QualityBulk:
		return PriceRange{1, 10}
	case QualityDiscount:
		return PriceRange{5, 15}
	case QualityEconomy:
		return PriceRange{10, 20}
	case QualityBudget:
		return PriceRange{15, 25}
	case QualityAffordable:
		return PriceRange{20, 50}
	case QualityMidrange:
		return PriceRange{50, 75}
	case QualityAboveAverage:
		return PriceRange{75, 2_00}
	case QualitySuperior:
		return PriceRange{2_00, 5_00}
	case QualityExpensive:
		return PriceRange{5_00, 10_00}
	case QualityLavish:
		return PriceRange{10_00, 50_00}
	case QualityLuxury:
		return PriceRange{50_00, 100_00}
	case QualityExorbitant:
		return PriceRange{100_00, 10_000_00}
	default:
		panic(fmt.Sprintf("UNKNOWN_QUALITY: %d", q))
	}
}

// Product identifies a tradeable good.
type Product string

// Brand optionally distinguishes lines of the same product. Empty means unbranded.
type Brand string

// ProductInfo is the static reference data of a product.
type ProductInfo struct {
	Category Category
	Quality  Quality
}

const (
	Corn        Product = "Corn"
	Yeast       Product = "Yeast"
	Sugar       Product = "Sugar"
	Grapes      Product = "Grapes"
	Malt        Product = "Malt"
	Barley      Product = "Barley"
	Rye         Product = "Rye"
	Juniper     Product = "Juniper"
	Mash        Product = "Mash"
	Potatoes    Product = "Potatoes"
	Wheat       Product = "Wheat"
	Molasses    Product = "Molasses"
	Wine        Product = "Wine"
	Beer        Product = "Beer"
	Hooch       Product = "Hooch"
	BathtubGin  Product = "Bathtub Gin"
	Moonshine   Product = "Moonshine"
	Gin         Product = "Gin"
	Bourbon     Product = "Bourbon"
	Rum         Product = "Rum"
	Vodka       Product = "Vodka"
	Brandy      Product = "Brandy"
	Tequila     Product = "Tequila"
	Whiskey     Product = "Whiskey"
	Champagne   Product = "Champagne"
	Burgundy    Product = "Burgundy"
	Parts       Product = "Machine Parts"
	TinCan      Product = "Tin Can"
	Bucket      Product = "Bucket"
	Thermometer Product = "Thermometer"
	Hydrometer  Product = "Hydrometer"
	CheeseCloth Product = "Cheese Cloth"
	Siphon      Product = "Siphon"
	Carboy      Product = "Carboy"
	Barrel      Product = "Barrel"
	Keg         Product = "Keg"
	Mill        Product = "Grain Mill"
	Fermenter   Product = "Fermenter"
	Boiler      Product = "Boiler"
	Distiller   Product = "Distiller"
	Bottler     Product = "Bottler"
)

// Catalog is the product reference table.
var Catalog = map[Product]ProductInfo{
	Corn:   {CategoryIngredient, QualityBulk},
	Yeast:  {CategoryIngredient, QualityBulk},
	Sugar:  {CategoryIngredient, QualityBulk},
	Grapes: {CategoryIngredient, QualityBulk},
	Malt:   {CategoryIngredient, QualityBulk},
	Barley: {CategoryIngredient, QualityBulk},

	Rye:      {CategoryIngredient, QualityDiscount},
	Juniper:  {CategoryIngredient, QualityDiscount},
	Mash:     {CategoryIngredient, QualityDiscount},
	Potatoes: {CategoryIngredient, QualityDiscount},
	Wheat:    {CategoryIngredient, QualityDiscount},
	Molasses: {CategoryIngredient, QualityDiscount},

	Wine: {CategoryConsumable, QualityAffordable},
	Beer: {CategoryConsumable, QualityAffordable},

	Hooch:      {CategoryConsumable, QualityMidrange},
	BathtubGin: {CategoryConsumable, QualityMidrange},
	Moonshine:  {CategoryConsumable, QualityMidrange},

	Gin:     {CategoryConsumable, QualityAboveAverage},
	Bourbon: {CategoryConsumable, QualityAboveAverage},
	Rum:     {CategoryConsumable, QualityAboveAverage},
	Vodka:   {CategoryConsumable, QualityAboveAverage},
	Brandy:  {CategoryConsumable, QualityAboveAverage},
	Tequila: {CategoryConsumable, QualityAboveAverage},
	Whiskey: {CategoryConsumable, QualityAboveAverage},

	Champagne: {CategoryConsumable, QualitySuperior},
	Burgundy:  {CategoryConsumable, QualitySuperior},

	Parts: {CategoryEquipmentParts, QualityDiscount},

	TinCan:      {CategoryLightEquipment, QualityLavish},
	Bucket:      {CategoryLightEquipment, QualityLavish},
	Thermometer: {CategoryLightEquipment, QualityLavish},
	Hydrometer:  {CategoryLightEquipment, QualityLavish},
	CheeseCloth: {CategoryLightEquipment, QualityLavish},
	Siphon:      {CategoryLightEquipment, QualityLavish},

	Carboy:    {CategoryHeavyEquipment, QualityLavish},
	Barrel:    {CategoryHeavyEquipment, QualityLavish},
	Keg:       {CategoryHeavyEquipment, QualityLavish},
	Mill:      {CategoryHeavyEquipment, QualityLuxury},
	Fermenter: {CategoryHeavyEquipment, QualityLuxury},
	Boiler:    {CategoryHeavyEquipment, QualityLuxury},
	Distiller: {CategoryHeavyEquipment, QualityExorbitant},
	Bottler:   {CategoryHeavyEquipment, QualityExorbitant},
}

// Info returns the catalog entry. Panics on a product outside the catalog.
func (p Product) Info() ProductInfo {
	info, ok := Catalog[p]
	if !ok {
		panic(fmt.Sprintf("UNKNOWN_PRODUCT: %q", string(p)))
	}
	return info
}

// Known reports whether p is in the catalog.
func (p Product) Known() bool {
	_, ok := Catalog[p]
	return ok
}

// Category is shorthand for p.Info().Category.
func (p Product) Category() Category { return p.Info().Category }

// PriceRange is the base price band of the product's quality tier.
func (p Product) PriceRange() PriceRange { return p.Info().Quality.Range() }

// Branded reports whether lines of this product normally carry a brand.
func (p Product) Branded() bool {
	switch p.Category() {
	case CategoryConsumable:
		return true
	default:
		return false
	}
}

// Products returns every catalog product sorted by name.
func Products() []Product {
	out := make([]Product, 0, len(Catalog))
	for p := range Catalog {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ProductsIn returns the catalog products of one category sorted by name.
func ProductsIn(c Category) []Product {
	var out []Product
	for _, p := range Products() {
		if Catalog[p].Category == c {
			out = append(out, p)
		}
	}
	return out
}

// Brands lists the brand names used by consumables.
var Brands = []Brand{
	"Anheuser-Busch",
	"Coors Brewing Company",
	"Miller High Life Co",
	"Pabst Brewing Company",
	"D.G. Yuengling & Son, Inc",
	"Budweiser",
	"Bacardi",
	"Jim Beam",
	"Jack Daniels",
	"Jameson",
	"Johnnie Walker",
}
