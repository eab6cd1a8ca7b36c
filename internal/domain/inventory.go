package domain

// LineType says whether an inventory line offers units for sale or asks to buy them.
type LineType uint8

const (
	LineSupply LineType = iota + 1
	LineDemand
)

func (t LineType) String() string {
	switch t {
	case LineSupply:
		return "supply"
	case LineDemand:
		return "demand"
	default:
		return "unknown"
	}
}

// InventoryLine is one priced holding of an entity in a city.
// For supply lines Bid is the ask price; for demand lines it is the bid price.
type InventoryLine struct {
	Product  Product  `json:"product"`
	Brand    Brand    `json:"brand,omitempty"`
	Type     LineType `json:"type"`
	Quantity int64    `json:"quantity"`
	Bid      Money    `json:"bid"`
}

// LineKey identifies the line an amount is credited to or debited from.
type LineKey struct {
	Product Product
	Brand   Brand
	Type    LineType
}

// Key returns the matching key of the line.
func (l InventoryLine) Key() LineKey {
	return LineKey{Product: l.Product, Brand: l.Brand, Type: l.Type}
}

func (l InventoryLine) IsSupply() bool { return l.Type == LineSupply }
func (l InventoryLine) IsDemand() bool { return l.Type == LineDemand }

// Inert reports whether the line has nothing to trade.
func (l InventoryLine) Inert() bool { return l.Quantity == 0 }

// OwnedLine tags an inventory line with its owner.
type OwnedLine struct {
	Entity EntityID
	InventoryLine
}
