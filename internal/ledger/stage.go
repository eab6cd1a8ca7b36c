package ledger

import (
	"prohibition/internal/domain"
	"prohibition/internal/world"
)

type slot struct {
	city   domain.CityName
	entity domain.EntityID
}

// stage holds copy-on-touch working sets for one batch.
type stage struct {
	st    *world.State
	touch map[slot][]domain.InventoryLine
	order []slot
	book  *domain.CapitalBook
}

func newStage(st *world.State) *stage {
	return &stage{st: st, touch: make(map[slot][]domain.InventoryLine)}
}

// lines returns the working copy of an entity's lines in city.
func (s *stage) lines(city domain.CityName, id domain.EntityID) []domain.InventoryLine {
	k := slot{city, id}
	if l, ok := s.touch[k]; ok {
		return l
	}
	l := s.st.InventoryOf(id, city)
	s.touch[k] = l
	s.order = append(s.order, k)
	return l
}

func (s *stage) set(city domain.CityName, id domain.EntityID, lines []domain.InventoryLine) {
	k := slot{city, id}
	if _, ok := s.touch[k]; !ok {
		s.order = append(s.order, k)
	}
	s.touch[k] = lines
}

func (s *stage) capital() *domain.CapitalBook {
	if s.book == nil {
		s.book = domain.NewCapitalBook(s.st.Capital)
	}
	return s.book
}

// commit writes every working set back into the state.
func (s *stage) commit() {
	for _, k := range s.order {
		lines := s.touch[k]
		if len(lines) == 0 {
			continue
		}
		byEntity, ok := s.st.Inventories[k.city]
		if !ok {
			byEntity = make(map[domain.EntityID][]domain.InventoryLine)
			s.st.Inventories[k.city] = byEntity
		}
		byEntity[k.entity] = lines
	}
	if s.book != nil {
		s.st.Capital = s.book.Snapshot()
	}
}
