package market

import (
	"prohibition/internal/domain"
	"prohibition/internal/world"
)

// Summarize folds lines into a summary of product. The fold is order independent.
func Summarize(product domain.Product, lines []domain.InventoryLine) domain.MarketSummary {
	sum := domain.NewMarketSummary(product)
	for _, l := range lines {
		sum = sum.Apply(l)
	}
	return sum
}

// Aggregate appends one summary per (city, product present) to st.History.
// With retention > 0 each history keeps only its newest retention entries.
func Aggregate(st *world.State, retention int) {
	for _, city := range st.SortedCities() {
		products := st.ProductsIn(city)
		if len(products) == 0 {
			continue
		}
		byProduct, ok := st.History[city]
		if !ok {
			byProduct = make(map[domain.Product][]domain.MarketSummary)
			st.History[city] = byProduct
		}
		for _, p := range products {
			owned := st.LinesFor(city, p)
			lines := make([]domain.InventoryLine, len(owned))
			for i, o := range owned {
				lines[i] = o.InventoryLine
			}
			h := append(byProduct[p], Summarize(p, lines))
			if retention > 0 && len(h) > retention {
				h = append(h[:0:0], h[len(h)-retention:]...)
			}
			byProduct[p] = h
		}
	}
}
