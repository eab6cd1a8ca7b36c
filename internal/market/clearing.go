// Package market clears per-city, per-product order books and folds price history.
package market

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"prohibition/internal/domain"
	"prohibition/internal/world"
)

// Order is one side of the book: an entity's line price and its unfilled quantity.
type Order struct {
	Entity    domain.EntityID
	Brand     domain.Brand
	Price     domain.Money
	Remaining int64
}

// Clear matches asks against bids for one (city, product) and returns the fills.
// asks and bids are working buffers: they are sorted and their Remaining fields
// are consumed in place.
//
// Asks are walked from the most expensive down, bids from the cheapest up. A fill
// needs ask < bid and clears min(remaining) at the truncated mean price. After a
// fill the next buyer tries the same seller; after a miss the next seller starts
// over from the cheapest buyer.
func Clear(city domain.CityName, product domain.Product, asks, bids []Order) []domain.Trade {
	if len(asks) == 0 || len(bids) == 0 {
		return nil
	}

	sort.SliceStable(asks, func(i, j int) bool { return asks[i].Price > asks[j].Price })
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price < bids[j].Price })

	var trades []domain.Trade
	s, b := 0, 0
	for s < len(asks) {
		seller := &asks[s]
		if seller.Remaining <= 0 || b >= len(bids) {
			s++
			b = 0
			continue
		}
		buyer := &bids[b]
		// An exhausted buyer is skipped and the same seller tries the next one,
		// rather than counting as a miss that moves on to the next seller.
		if buyer.Remaining <= 0 {
			b++
			continue
		}
		if seller.Price >= buyer.Price {
			s++
			b = 0
			continue
		}

		qty := min(seller.Remaining, buyer.Remaining)
		seller.Remaining -= qty
		buyer.Remaining -= qty
		trades = append(trades, domain.Trade{
			Buyer:       buyer.Entity,
			Seller:      seller.Entity,
			City:        city,
			Product:     product,
			SellerBrand: seller.Brand,
			BuyerBrand:  buyer.Brand,
			Price:       (seller.Price + buyer.Price) / 2,
			Quantity:    qty,
		})
		b++
	}
	return trades
}

// ClearCity clears every product present in city, in product order.
// The state is only read; the returned trades still have to go through the ledger.
func ClearCity(st *world.State, city domain.CityName) []domain.Trade {
	var trades []domain.Trade
	for _, p := range st.ProductsIn(city) {
		bk := AcquireBook()
		for _, l := range st.LinesFor(city, p) {
			o := Order{Entity: l.Entity, Brand: l.Brand, Price: l.Bid, Remaining: l.Quantity}
			switch l.Type {
			case domain.LineSupply:
				bk.Asks = append(bk.Asks, o)
			case domain.LineDemand:
				bk.Bids = append(bk.Bids, o)
			}
		}
		trades = append(trades, Clear(city, p, bk.Asks, bk.Bids)...)
		ReleaseBook(bk)
	}
	return trades
}

// Clearer runs ClearCity over every city of a state.
type Clearer struct {
	// Parallel clears cities concurrently. Each city only touches its own books,
	// and results are merged in city order so output matches the sequential run.
	Parallel bool
	// Workers caps concurrent cities when Parallel is set. Zero means no limit.
	Workers int
}

// ClearAll returns the trades of every city, cities in name order.
func (c Clearer) ClearAll(ctx context.Context, st *world.State) ([]domain.Trade, error) {
	cities := st.SortedCities()

	if !c.Parallel {
		var trades []domain.Trade
		for _, city := range cities {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			trades = append(trades, ClearCity(st, city)...)
		}
		return trades, nil
	}

	perCity := make([][]domain.Trade, len(cities))
	g, gctx := errgroup.WithContext(ctx)
	if c.Workers > 0 {
		g.SetLimit(c.Workers)
	}
	for i, city := range cities {
		i, city := i, city
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perCity[i] = ClearCity(st, city)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var trades []domain.Trade
	for _, t := range perCity {
		trades = append(trades, t...)
	}
	return trades, nil
}
