package domain

// MarketSummary is the per-tick fold of every inventory line of one product in one city.
// Sell is the best (lowest) demand bid seen; Buy is the best (highest) supply ask seen.
type MarketSummary struct {
	Product   Product `json:"product"`
	SupplyQty int64   `json:"supply_qty"`
	DemandQty int64   `json:"demand_qty"`
	Sell      Money   `json:"sell"`
	Buy       Money   `json:"buy"`
}

// NewMarketSummary starts the fold from the product's price range bounds.
func NewMarketSummary(p Product) MarketSummary {
	r := p.PriceRange()
	return MarketSummary{Product: p, Sell: r.High, Buy: r.Low}
}

// Apply folds one line into the summary. Lines of other products are ignored.
func (m MarketSummary) Apply(l InventoryLine) MarketSummary {
	if l.Product != m.Product {
		return m
	}
	switch l.Type {
	case LineSupply:
		m.SupplyQty += l.Quantity
		if l.Bid > m.Buy {
			m.Buy = l.Bid
		}
	case LineDemand:
		m.DemandQty += l.Quantity
		if l.Bid < m.Sell {
			m.Sell = l.Bid
		}
	}
	return m
}

func (m MarketSummary) HasSupply() bool { return m.SupplyQty > 0 }
func (m MarketSummary) HasDemand() bool { return m.DemandQty > 0 }
