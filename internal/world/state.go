// Package world holds the authoritative snapshot of the simulation.
// Mutation goes through the ledger; everything here is reads, cloning, and validation.
package world

import (
	"fmt"
	"sort"

	"prohibition/internal/domain"
)

// State is the full world snapshot at a tick boundary.
type State struct {
	Tick        uint64                                                         `json:"tick"`
	Cities      map[domain.CityName]domain.City                                `json:"cities"`
	Entities    map[domain.EntityID]domain.Entity                              `json:"entities"`
	User        domain.EntityID                                                `json:"user"`
	Inventories map[domain.CityName]map[domain.EntityID][]domain.InventoryLine `json:"inventories"`
	Capital     map[domain.EntityID]domain.Money                               `json:"capital"`
	// Locations is the single source of truth for where an entity is;
	// EntitiesIn derives the inverse on demand.
	Locations map[domain.EntityID]domain.CityName                           `json:"locations"`
	History   map[domain.CityName]map[domain.Product][]domain.MarketSummary `json:"history"`
}

// Factory produces an initial world. Implementations must return a state that passes Validate.
type Factory func() (*State, error)

// New returns an empty state.
func New() *State {
	return &State{
		Cities:      make(map[domain.CityName]domain.City),
		Entities:    make(map[domain.EntityID]domain.Entity),
		Inventories: make(map[domain.CityName]map[domain.EntityID][]domain.InventoryLine),
		Capital:     make(map[domain.EntityID]domain.Money),
		Locations:   make(map[domain.EntityID]domain.CityName),
		History:     make(map[domain.CityName]map[domain.Product][]domain.MarketSummary),
	}
}

// AddCity registers reference data for a city.
func (s *State) AddCity(c domain.City) {
	s.Cities[c.Name] = c
}

// AddEntity registers an entity, its starting capital, and its location.
func (s *State) AddEntity(e domain.Entity, city domain.CityName, capital domain.Money) {
	s.Entities[e.ID] = e
	s.Capital[e.ID] = capital
	s.Locations[e.ID] = city
	if e.Kind == domain.KindUser {
		s.User = e.ID
	}
}

// AddLine appends an inventory line for entity in city.
func (s *State) AddLine(city domain.CityName, id domain.EntityID, line domain.InventoryLine) {
	byEntity, ok := s.Inventories[city]
	if !ok {
		byEntity = make(map[domain.EntityID][]domain.InventoryLine)
		s.Inventories[city] = byEntity
	}
	byEntity[id] = append(byEntity[id], line)
}

// ======================================================================================
// Reads
// ======================================================================================

// InventoryOf returns a copy of the lines held by id in city. Absent means empty.
func (s *State) InventoryOf(id domain.EntityID, city domain.CityName) []domain.InventoryLine {
	lines := s.Inventories[city][id]
	out := make([]domain.InventoryLine, len(lines))
	copy(out, lines)
	return out
}

// CapitalOf returns the balance of id, zero when absent.
func (s *State) CapitalOf(id domain.EntityID) domain.Money {
	return s.Capital[id]
}

// LocationOf returns the city id is in.
func (s *State) LocationOf(id domain.EntityID) (domain.CityName, bool) {
	c, ok := s.Locations[id]
	return c, ok
}

// HistoryOf returns the summaries recorded for product in city, oldest first.
func (s *State) HistoryOf(city domain.CityName, p domain.Product) []domain.MarketSummary {
	h := s.History[city][p]
	out := make([]domain.MarketSummary, len(h))
	copy(out, h)
	return out
}

// LatestSummary returns the newest summary for product in city.
func (s *State) LatestSummary(city domain.CityName, p domain.Product) (domain.MarketSummary, bool) {
	h := s.History[city][p]
	if len(h) == 0 {
		return domain.MarketSummary{}, false
	}
	return h[len(h)-1], true
}

// EntitiesIn derives the city → entities index from Locations, sorted by ID.
func (s *State) EntitiesIn(city domain.CityName) []domain.EntityID {
	var out []domain.EntityID
	for id, c := range s.Locations {
		if c == city {
			out = append(out, id)
		}
	}
	sortIDs(out)
	return out
}

// SortedCities returns every city that has reference data or inventory, sorted by name.
func (s *State) SortedCities() []domain.CityName {
	seen := make(map[domain.CityName]struct{}, len(s.Cities))
	for name := range s.Cities {
		seen[name] = struct{}{}
	}
	for name := range s.Inventories {
		seen[name] = struct{}{}
	}
	out := make([]domain.CityName, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SortedEntities returns the entities with inventory in city, sorted by ID.
func (s *State) SortedEntities(city domain.CityName) []domain.EntityID {
	out := make([]domain.EntityID, 0, len(s.Inventories[city]))
	for id := range s.Inventories[city] {
		out = append(out, id)
	}
	sortIDs(out)
	return out
}

// ProductsIn returns the products that have at least one line in city, sorted.
func (s *State) ProductsIn(city domain.CityName) []domain.Product {
	seen := make(map[domain.Product]struct{})
	for _, lines := range s.Inventories[city] {
		for _, l := range lines {
			seen[l.Product] = struct{}{}
		}
	}
	out := make([]domain.Product, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LinesFor returns every line of product in city tagged with its owner.
// Order is deterministic: holders by ID, then each holder's stored line order.
func (s *State) LinesFor(city domain.CityName, p domain.Product) []domain.OwnedLine {
	var out []domain.OwnedLine
	for _, id := range s.SortedEntities(city) {
		for _, l := range s.Inventories[city][id] {
			if l.Product == p {
				out = append(out, domain.OwnedLine{Entity: id, InventoryLine: l})
			}
		}
	}
	return out
}

// TotalCapital sums every balance.
func (s *State) TotalCapital() domain.Money {
	return domain.NewCapitalBook(s.Capital).Total()
}

// TotalQuantity sums every line of product of the given type across all cities.
func (s *State) TotalQuantity(p domain.Product, t domain.LineType) int64 {
	var total int64
	for _, byEntity := range s.Inventories {
		for _, lines := range byEntity {
			for _, l := range lines {
				if l.Product == p && l.Type == t {
					total += l.Quantity
				}
			}
		}
	}
	return total
}

// ======================================================================================
// Copy & checks
// ======================================================================================

// Clone returns a deep copy; the copy shares nothing mutable with s.
func (s *State) Clone() *State {
	c := &State{
		Tick:        s.Tick,
		User:        s.User,
		Cities:      make(map[domain.CityName]domain.City, len(s.Cities)),
		Entities:    make(map[domain.EntityID]domain.Entity, len(s.Entities)),
		Inventories: make(map[domain.CityName]map[domain.EntityID][]domain.InventoryLine, len(s.Inventories)),
		Capital:     make(map[domain.EntityID]domain.Money, len(s.Capital)),
		Locations:   make(map[domain.EntityID]domain.CityName, len(s.Locations)),
		History:     make(map[domain.CityName]map[domain.Product][]domain.MarketSummary, len(s.History)),
	}
	for k, v := range s.Cities {
		c.Cities[k] = v
	}
	for k, v := range s.Entities {
		c.Entities[k] = v
	}
	for city, byEntity := range s.Inventories {
		m := make(map[domain.EntityID][]domain.InventoryLine, len(byEntity))
		for id, lines := range byEntity {
			cp := make([]domain.InventoryLine, len(lines))
			copy(cp, lines)
			m[id] = cp
		}
		c.Inventories[city] = m
	}
	for k, v := range s.Capital {
		c.Capital[k] = v
	}
	for k, v := range s.Locations {
		c.Locations[k] = v
	}
	for city, byProduct := range s.History {
		m := make(map[domain.Product][]domain.MarketSummary, len(byProduct))
		for p, h := range byProduct {
			cp := make([]domain.MarketSummary, len(h))
			copy(cp, h)
			m[p] = cp
		}
		c.History[city] = m
	}
	return c
}

// Validate checks the data-model invariants a world must satisfy before it is loaded.
func (s *State) Validate() error {
	for id, city := range s.Locations {
		if _, ok := s.Entities[id]; !ok {
			return fmt.Errorf("location of %s: %w", id, domain.ErrUnknownEntity)
		}
		if _, ok := s.Cities[city]; !ok {
			return fmt.Errorf("location of %s (%s): %w", id, city, domain.ErrUnknownCity)
		}
	}
	for id := range s.Entities {
		if _, ok := s.Capital[id]; !ok {
			return fmt.Errorf("capital of %s: missing entry: %w", id, domain.ErrUnknownEntity)
		}
		if _, ok := s.Locations[id]; !ok {
			return fmt.Errorf("entity %s has no location: %w", id, domain.ErrUnknownCity)
		}
	}
	for city, byEntity := range s.Inventories {
		if _, ok := s.Cities[city]; !ok {
			return fmt.Errorf("inventory in %s: %w", city, domain.ErrUnknownCity)
		}
		for id, lines := range byEntity {
			if _, ok := s.Entities[id]; !ok {
				return fmt.Errorf("inventory of %s in %s: %w", id, city, domain.ErrUnknownEntity)
			}
			for _, l := range lines {
				if !l.Product.Known() {
					return fmt.Errorf("inventory of %s in %s (%q): %w", id, city, l.Product, domain.ErrUnknownProduct)
				}
				if l.Quantity < 0 {
					return &domain.InvariantError{Op: "validate", City: city, Entity: id, Product: l.Product, Have: l.Quantity}
				}
				if l.Bid < 0 {
					return fmt.Errorf("inventory of %s in %s (%s): %w", id, city, l.Product, domain.ErrNegativePrice)
				}
			}
		}
	}
	return nil
}

func sortIDs(ids []domain.EntityID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}
