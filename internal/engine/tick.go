package engine

import (
	"context"
	"fmt"

	"prohibition/internal/domain"
	"prohibition/internal/ledger"
	"prohibition/internal/market"
	"prohibition/internal/production"
	"prohibition/internal/world"
)

// Options configures one tick body.
type Options struct {
	Generator *production.Generator
	Applier   *ledger.Applier
	Clearer   market.Clearer
	// Retention caps each price history. Zero keeps everything.
	Retention int
}

func (o Options) withDefaults() Options {
	if o.Generator == nil {
		o.Generator = production.NewGenerator()
	}
	if o.Applier == nil {
		o.Applier = ledger.NewApplier(ledger.PolicyClamp, nil, nil)
	}
	return o
}

// Result is what one tick produced.
type Result struct {
	Tick        uint64              `json:"tick"`
	Productions []domain.Production `json:"productions"`
	Trades      []domain.Trade      `json:"trades"`
	Report      ledger.Report       `json:"report"`
}

// Tick runs production, clearing and history aggregation on a copy of st and
// returns the next state. st itself is never modified.
func Tick(ctx context.Context, st *world.State, rng domain.RandomSource, opts Options) (*world.State, Result, error) {
	opts = opts.withDefaults()
	next := st.Clone()

	// 1. Production
	prods := opts.Generator.Generate(next, rng)
	prodRep, err := opts.Applier.ApplyProductions(next, prods)
	if err != nil {
		return nil, Result{}, fmt.Errorf("tick %d: apply productions: %w", st.Tick+1, err)
	}

	// 2. Clearing, per city and product
	trades, err := opts.Clearer.ClearAll(ctx, next)
	if err != nil {
		return nil, Result{}, fmt.Errorf("tick %d: clear: %w", st.Tick+1, err)
	}
	tradeRep, err := opts.Applier.ApplyTrades(next, trades)
	if err != nil {
		return nil, Result{}, fmt.Errorf("tick %d: apply trades: %w", st.Tick+1, err)
	}

	// 3. History
	market.Aggregate(next, opts.Retention)

	next.Tick++
	return next, Result{
		Tick:        next.Tick,
		Productions: prods,
		Trades:      trades,
		Report:      prodRep.Merge(tradeRep),
	}, nil
}
