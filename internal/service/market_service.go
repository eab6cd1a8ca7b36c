package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"prohibition/internal/domain"
	"prohibition/internal/event"
	"prohibition/internal/market"
	"prohibition/internal/world"
)

// StateReader is the read side of the orchestrator.
type StateReader interface {
	// State returns the current world. It is never mutated after being published.
	State() *world.State
	Events() []event.Entry
}

// MarketService answers read-only queries for UIs and tools.
// Missing data yields empty results, never errors.
type MarketService struct {
	reader StateReader
}

// NewMarketService creates a new MarketService instance
func NewMarketService(r StateReader) *MarketService {
	return &MarketService{reader: r}
}

// PriceExtremes is the best sell and buy price of a product in a city right now.
type PriceExtremes struct {
	Sell domain.Money `json:"sell"`
	Buy  domain.Money `json:"buy"`
}

// PriceExtremes folds the current lines of product in city.
func (s *MarketService) PriceExtremes(product domain.Product, city domain.CityName) PriceExtremes {
	sum := s.current(product, city)
	return PriceExtremes{Sell: sum.Sell, Buy: sum.Buy}
}

// SupplyDemand returns the aggregate supply and demand of product in city.
func (s *MarketService) SupplyDemand(product domain.Product, city domain.CityName) (supply, demand int64) {
	sum := s.current(product, city)
	return sum.SupplyQty, sum.DemandQty
}

func (s *MarketService) current(product domain.Product, city domain.CityName) domain.MarketSummary {
	if !product.Known() {
		return domain.MarketSummary{Product: product}
	}
	owned := s.reader.State().LinesFor(city, product)
	lines := make([]domain.InventoryLine, len(owned))
	for i, o := range owned {
		lines[i] = o.InventoryLine
	}
	return market.Summarize(product, lines)
}

// Inventory returns the lines held by entity in city.
func (s *MarketService) Inventory(entity domain.EntityID, city domain.CityName) []domain.InventoryLine {
	return s.reader.State().InventoryOf(entity, city)
}

// Capital returns the balance of entity.
func (s *MarketService) Capital(entity domain.EntityID) domain.Money {
	return s.reader.State().CapitalOf(entity)
}

// History returns the recorded summaries of product in city, oldest first.
func (s *MarketService) History(city domain.CityName, product domain.Product) []domain.MarketSummary {
	return s.reader.State().HistoryOf(city, product)
}

// Events returns the full event log.
func (s *MarketService) Events() []event.Entry {
	return s.reader.Events()
}

// Quote is one row of a city overview.
type Quote struct {
	Summary domain.MarketSummary `json:"summary"`
	// Mid is the midpoint of Sell and Buy in dollars.
	Mid decimal.Decimal `json:"mid"`
	// ChangePct is the move of Buy against the previous summary, nil without one.
	ChangePct *decimal.Decimal `json:"change_pct,omitempty"`
}

// CityOverview returns the latest summary of every product recorded in city, sorted by product.
func (s *MarketService) CityOverview(city domain.CityName) []Quote {
	st := s.reader.State()
	byProduct := st.History[city]

	products := make([]domain.Product, 0, len(byProduct))
	for p, h := range byProduct {
		if len(h) > 0 {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })

	out := make([]Quote, 0, len(products))
	for _, p := range products {
		h := byProduct[p]
		latest := h[len(h)-1]
		q := Quote{
			Summary: latest,
			Mid:     latest.Sell.Decimal().Add(latest.Buy.Decimal()).Div(decimal.NewFromInt(2)),
		}
		if len(h) > 1 {
			q.ChangePct = changePct(h[len(h)-2].Buy, latest.Buy)
		}
		out = append(out, q)
	}
	return out
}

// changePct calculates 100 * (cur - prev) / prev
func changePct(prev, cur domain.Money) *decimal.Decimal {
	if prev == 0 {
		return nil
	}
	p := prev.Decimal()
	pct := cur.Decimal().Sub(p).Div(p).Mul(decimal.NewFromInt(100))
	return &pct
}

// Traders returns the entities located in city, sorted by ID.
func (s *MarketService) Traders(city domain.CityName) []domain.Entity {
	st := s.reader.State()
	ids := st.EntitiesIn(city)
	out := make([]domain.Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, st.Entities[id])
	}
	return out
}
