package engine

import (
	"fmt"

	"prohibition/internal/domain"
	"prohibition/internal/world"
)

func checkPlayer(st *world.State, id domain.EntityID) (domain.CityName, error) {
	e, ok := st.Entities[id]
	if !ok {
		return "", fmt.Errorf("%s: %w", id, domain.ErrUnknownEntity)
	}
	if e.Kind != domain.KindUser {
		return "", fmt.Errorf("%s (%s): %w", id, e.Kind, domain.ErrNotPlayer)
	}
	from, ok := st.LocationOf(id)
	if !ok {
		return "", fmt.Errorf("%s has no location: %w", id, domain.ErrUnknownCity)
	}
	return from, nil
}

// Travel moves the player to city to, carrying its inventory lines along.
// Lines merge into destination lines with the same key. Capital is untouched.
func Travel(st *world.State, id domain.EntityID, to domain.CityName) (domain.Travel, error) {
	from, err := checkPlayer(st, id)
	if err != nil {
		return domain.Travel{}, err
	}
	if _, ok := st.Cities[to]; !ok {
		return domain.Travel{}, fmt.Errorf("travel to %s: %w", to, domain.ErrUnknownCity)
	}
	if from == to {
		return domain.Travel{}, fmt.Errorf("travel to %s: %w", to, domain.ErrSameCity)
	}

	carried := st.Inventories[from][id]
	if len(carried) > 0 {
		dest := st.InventoryOf(id, to)
		for _, l := range carried {
			merged := false
			for i := range dest {
				if dest[i].Key() == l.Key() {
					dest[i].Quantity += l.Quantity
					merged = true
					break
				}
			}
			if !merged {
				dest = append(dest, l)
			}
		}
		delete(st.Inventories[from], id)
		byEntity, ok := st.Inventories[to]
		if !ok {
			byEntity = make(map[domain.EntityID][]domain.InventoryLine)
			st.Inventories[to] = byEntity
		}
		byEntity[id] = dest
	}

	st.Locations[id] = to
	return domain.Travel{Entity: id, From: from, To: to}, nil
}

// SetOrder places a player order in the player's current city.
// A demand order upserts the line's quantity and bid. A supply order only
// reprices units the player already holds, so goods are never created here.
func SetOrder(st *world.State, id domain.EntityID, line domain.InventoryLine) (domain.CityName, error) {
	city, err := checkPlayer(st, id)
	if err != nil {
		return "", err
	}
	if !line.Product.Known() {
		return "", fmt.Errorf("order %q: %w", line.Product, domain.ErrUnknownProduct)
	}
	if line.Quantity < 0 {
		return "", &domain.InvariantError{Op: "order", City: city, Entity: id, Product: line.Product, Have: line.Quantity}
	}
	if line.Bid < 0 {
		return "", fmt.Errorf("order %s: %w", line.Product, domain.ErrNegativePrice)
	}

	lines := st.InventoryOf(id, city)
	idx := -1
	for i := range lines {
		if lines[i].Key() == line.Key() {
			idx = i
			break
		}
	}

	switch line.Type {
	case domain.LineDemand:
		if idx < 0 {
			lines = append(lines, line)
		} else {
			lines[idx].Quantity = line.Quantity
			lines[idx].Bid = line.Bid
		}
	case domain.LineSupply:
		if idx < 0 || lines[idx].Quantity == 0 {
			return "", fmt.Errorf("sell %s in %s: %w", line.Product, city, domain.ErrNoHolding)
		}
		lines[idx].Bid = line.Bid
	default:
		return "", fmt.Errorf("order %s: unknown line type %d", line.Product, line.Type)
	}

	byEntity, ok := st.Inventories[city]
	if !ok {
		byEntity = make(map[domain.EntityID][]domain.InventoryLine)
		st.Inventories[city] = byEntity
	}
	byEntity[id] = lines
	return city, nil
}
