package domain

import "prohibition/pkg/safe"

// Production is one tick's yield for a single supply line.
type Production struct {
	City   CityName      `json:"city"`
	Entity EntityID      `json:"entity"`
	Line   InventoryLine `json:"line"`
}

// Trade is a matched fill between one seller and one buyer. The brands name
// the lines the fill was matched against on each side.
type Trade struct {
	Buyer       EntityID `json:"buyer"`
	Seller      EntityID `json:"seller"`
	City        CityName `json:"city"`
	Product     Product  `json:"product"`
	SellerBrand Brand    `json:"seller_brand,omitempty"`
	BuyerBrand  Brand    `json:"buyer_brand,omitempty"`
	Price       Money    `json:"price"`
	Quantity    int64    `json:"quantity"`
}

// Value is price × quantity. Panics on overflow.
func (t Trade) Value() Money {
	return Money(safe.SafeMul(int64(t.Price), t.Quantity))
}

// CapitalDelta is the signed capital change the trade causes for id.
func (t Trade) CapitalDelta(id EntityID) Money {
	if t.Buyer == t.Seller {
		return 0
	}
	switch id {
	case t.Seller:
		return t.Value()
	case t.Buyer:
		return -t.Value()
	default:
		return 0
	}
}

// Travel moves the player between cities.
type Travel struct {
	Entity EntityID `json:"entity"`
	From   CityName `json:"from"`
	To     CityName `json:"to"`
}
