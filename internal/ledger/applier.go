// Package ledger is the only write path into world inventories and capital.
package ledger

import (
	"fmt"
	"log/slog"

	"prohibition/internal/domain"
	"prohibition/internal/infra"
	"prohibition/internal/world"
	"prohibition/pkg/safe"
)

// Policy decides what happens when a batch would drive a quantity below zero.
type Policy uint8

const (
	// PolicyClamp clamps at zero, warns and reports the shortfall.
	PolicyClamp Policy = iota
	// PolicyPanic treats the shortfall as a programming error.
	PolicyPanic
	// PolicyReject returns the error and commits nothing.
	PolicyReject
)

func (p Policy) String() string {
	switch p {
	case PolicyClamp:
		return "clamp"
	case PolicyPanic:
		return "panic"
	case PolicyReject:
		return "reject"
	default:
		return "unknown"
	}
}

// ParsePolicy maps a config value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "clamp":
		return PolicyClamp, nil
	case "panic":
		return PolicyPanic, nil
	case "reject":
		return PolicyReject, nil
	default:
		return PolicyClamp, fmt.Errorf("unknown negative inventory policy %q", s)
	}
}

// ClampRecord is one debit that found less inventory than it needed.
type ClampRecord struct {
	City      domain.CityName `json:"city"`
	Entity    domain.EntityID `json:"entity"`
	Product   domain.Product  `json:"product"`
	Type      domain.LineType `json:"type"`
	Shortfall int64           `json:"shortfall"`
}

// Report summarizes an applied batch.
type Report struct {
	Applied      int           `json:"applied"`
	Clamped      []ClampRecord `json:"clamped,omitempty"`
	CapitalDelta domain.Money  `json:"capital_delta"`
}

// Merge folds other into r.
func (r Report) Merge(other Report) Report {
	r.Applied += other.Applied
	r.Clamped = append(r.Clamped, other.Clamped...)
	r.CapitalDelta += other.CapitalDelta
	return r
}

// Applier applies Production and Trade batches to a world state.
// Each batch is staged on copies and committed whole, so a reader never sees half of one.
type Applier struct {
	Policy  Policy
	Logger  *slog.Logger
	Metrics *infra.Metrics
}

// NewApplier creates an applier. A nil logger falls back to slog.Default().
func NewApplier(policy Policy, logger *slog.Logger, metrics *infra.Metrics) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{Policy: policy, Logger: logger, Metrics: metrics}
}

// ApplyProductions credits each record to the matching supply line of its entity,
// creating the line when absent.
func (a *Applier) ApplyProductions(st *world.State, prods []domain.Production) (Report, error) {
	var rep Report
	stg := newStage(st)

	for _, p := range prods {
		if p.Line.Quantity < 0 {
			return Report{}, fmt.Errorf("production of %s for %s in %s: %w",
				p.Line.Product, p.Entity, p.City, domain.ErrNegativeQuantity)
		}
		if !p.Line.Product.Known() {
			return Report{}, fmt.Errorf("production for %s in %s (%q): %w",
				p.Entity, p.City, p.Line.Product, domain.ErrUnknownProduct)
		}

		key := domain.LineKey{Product: p.Line.Product, Brand: p.Line.Brand, Type: domain.LineSupply}
		lines := stg.lines(p.City, p.Entity)
		found := false
		for i := range lines {
			if lines[i].Key() == key {
				lines[i].Quantity = safe.SafeAdd(lines[i].Quantity, p.Line.Quantity)
				found = true
				break
			}
		}
		if !found {
			line := p.Line
			line.Type = domain.LineSupply
			stg.set(p.City, p.Entity, append(lines, line))
		}
		rep.Applied++
	}

	stg.commit()
	if a.Metrics != nil {
		a.Metrics.RecordProductions(rep.Applied)
	}
	return rep, nil
}

// ApplyTrades moves units from seller supply to buyer demand and capital from buyer to seller.
func (a *Applier) ApplyTrades(st *world.State, trades []domain.Trade) (Report, error) {
	var rep Report
	var value int64
	stg := newStage(st)

	for _, tr := range trades {
		if tr.Quantity < 0 {
			return Report{}, fmt.Errorf("trade of %s in %s: %w", tr.Product, tr.City, domain.ErrNegativeQuantity)
		}
		if tr.Price < 0 {
			return Report{}, fmt.Errorf("trade of %s in %s: %w", tr.Product, tr.City, domain.ErrNegativePrice)
		}
		if tr.Quantity == 0 {
			continue
		}

		sellKey := domain.LineKey{Product: tr.Product, Brand: tr.SellerBrand, Type: domain.LineSupply}
		if err := a.debit(stg, &rep, "trade.sell", tr.City, tr.Seller, sellKey, tr.Quantity); err != nil {
			return Report{}, err
		}
		buyKey := domain.LineKey{Product: tr.Product, Brand: tr.BuyerBrand, Type: domain.LineDemand}
		if err := a.debit(stg, &rep, "trade.buy", tr.City, tr.Buyer, buyKey, tr.Quantity); err != nil {
			return Report{}, err
		}

		v := tr.Value()
		stg.capital().Debit(tr.Buyer, v)
		stg.capital().Credit(tr.Seller, v)
		rep.CapitalDelta += tr.CapitalDelta(tr.Buyer) + tr.CapitalDelta(tr.Seller)
		value = safe.SafeAdd(value, int64(v))
		rep.Applied++
	}

	stg.commit()
	if a.Metrics != nil {
		a.Metrics.RecordTrades(rep.Applied, value)
	}
	return rep, nil
}

// debit takes qty from id's lines in stored order. Lines with exactly key
// (product, brand, type) are drained first; only what they cannot cover falls
// through to other brands of the same product and type. Any shortfall left
// after that is resolved per the policy.
func (a *Applier) debit(stg *stage, rep *Report, op string, city domain.CityName, id domain.EntityID,
	key domain.LineKey, qty int64) error {
	lines := stg.lines(city, id)
	remaining := qty
	drain := func(match func(domain.InventoryLine) bool) {
		for i := range lines {
			if remaining == 0 {
				return
			}
			if !match(lines[i]) {
				continue
			}
			take := min(lines[i].Quantity, remaining)
			if take <= 0 {
				continue
			}
			lines[i].Quantity -= take
			remaining -= take
		}
	}
	drain(func(l domain.InventoryLine) bool { return l.Key() == key })
	drain(func(l domain.InventoryLine) bool {
		return l.Product == key.Product && l.Type == key.Type && l.Brand != key.Brand
	})
	if remaining == 0 {
		return nil
	}

	product, typ := key.Product, key.Type

	err := &domain.InvariantError{
		Op:      op,
		City:    city,
		Entity:  id,
		Product: product,
		Have:    qty - remaining,
		Want:    qty,
	}
	switch a.Policy {
	case PolicyPanic:
		a.logger().Error("INVENTORY_INVARIANT_NEGATIVE", slog.Any("error", err))
		panic(err)
	case PolicyReject:
		if a.Metrics != nil {
			a.Metrics.RecordError()
		}
		return err
	default:
		a.logger().Warn("Inventory clamped at zero",
			slog.String("op", op),
			slog.String("city", string(city)),
			slog.String("entity", id.String()),
			slog.String("product", string(product)),
			slog.Int64("shortfall", remaining),
		)
		if a.Metrics != nil {
			a.Metrics.RecordClamp()
		}
		rep.Clamped = append(rep.Clamped, ClampRecord{
			City: city, Entity: id, Product: product, Type: typ, Shortfall: remaining,
		})
		return nil
	}
}

func (a *Applier) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}
