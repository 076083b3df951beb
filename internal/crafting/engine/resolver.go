package engine

import (
	"github.com/shopspring/decimal"

	"github.com/rsned/crafting-optimizer/internal/crafting/catalog"
	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

// Resolver expands an item and quantity into the raw materials and
// production steps needed to make it. A Resolver belongs to one run.
type Resolver struct {
	cat   *catalog.Catalog
	opts  Options
	pure  *memo[chainKey, *crafting.DependencyChain]
	aware *memo[snapshotKey, *crafting.DependencyChain]
}

// NewResolver creates a Resolver with empty memo tables.
func NewResolver(cat *catalog.Catalog, opts Options) *Resolver {
	return &Resolver{
		cat:   cat,
		opts:  opts,
		pure:  newMemo[chainKey, *crafting.DependencyChain](opts.MemoSize),
		aware: newMemo[snapshotKey, *crafting.DependencyChain](opts.MemoSize),
	}
}

// isLeaf reports whether id is charged as a material instead of being crafted.
// Unknown items, raw items, and pass-through items are leaves.
func (r *Resolver) isLeaf(id string) (crafting.Item, bool) {
	it, ok := r.cat.Item(id)
	return it, !ok || it.IsRaw() || r.opts.passThrough(id)
}

// Resolve expands id from raw materials, ignoring any stock on hand.
func (r *Resolver) Resolve(id string, qty int) (*crafting.DependencyChain, error) {
	return r.resolve(id, qty, nil)
}

func (r *Resolver) resolve(id string, qty int, path []string) (*crafting.DependencyChain, error) {
	return r.pure.get(chainKey{item: id, qty: qty}, func() (*crafting.DependencyChain, error) {
		if err := guardPath(path, id, r.opts.MaxDepth); err != nil {
			return nil, err
		}
		it, leaf := r.isLeaf(id)
		if leaf {
			return leafChain(id, qty), nil
		}

		b := newChainBuilder()
		if qty == 0 {
			return b.chain(), nil
		}
		next := append(path, id)
		for _, req := range it.Requirements {
			sub, err := r.resolve(req.ItemID, mulQty(req.Quantity, qty), next)
			if err != nil {
				return nil, err
			}
			b.merge(sub)
		}
		b.addStep(r.step(it, qty))
		return b.chain(), nil
	})
}

// ResolveAgainstInventory expands id using stock from snap before crafting
// anything. Stock is drawn through a scratch ledger, so two branches sharing
// a sub-item never claim the same units. Raw shortfalls are still listed in
// RawMaterials; the chain is affordable only when snap covers them.
func (r *Resolver) ResolveAgainstInventory(id string, qty int, snap Snapshot) (*crafting.DependencyChain, error) {
	key := snapshotKey{item: id, qty: qty, fingerprint: snap.Fingerprint()}
	return r.aware.get(key, func() (*crafting.DependencyChain, error) {
		b := newChainBuilder()
		if err := r.expandAgainst(id, qty, snap.Inventory(), b, nil); err != nil {
			return nil, err
		}
		return b.chain(), nil
	})
}

func (r *Resolver) expandAgainst(id string, qty int, ledger crafting.Inventory, b *chainBuilder, path []string) error {
	if err := guardPath(path, id, r.opts.MaxDepth); err != nil {
		return err
	}
	it, leaf := r.isLeaf(id)
	if leaf {
		b.raw[id] = addQty(b.raw[id], qty)
		ledger.Deduct(id, qty)
		return nil
	}
	if qty == 0 {
		return nil
	}

	next := append(path, id)
	for _, req := range it.Requirements {
		need := mulQty(req.Quantity, qty)
		take := min(ledger.Get(req.ItemID), need)
		if take > 0 {
			b.raw[req.ItemID] = addQty(b.raw[req.ItemID], take)
			ledger.Deduct(req.ItemID, take)
		}
		if short := need - take; short > 0 {
			if err := r.expandAgainst(req.ItemID, short, ledger, b, next); err != nil {
				return err
			}
		}
	}
	b.addStep(r.step(it, qty))
	return nil
}

// step builds the production step for crafting qty of it.
func (r *Resolver) step(it crafting.Item, qty int) crafting.ProductionStep {
	reqs := make([]crafting.StepRequirement, 0, len(it.Requirements))
	for _, req := range it.Requirements {
		reqs = append(reqs, crafting.StepRequirement{Item: req.ItemID, Quantity: mulQty(req.Quantity, qty)})
	}
	return crafting.ProductionStep{
		ItemName:     it.ID,
		Quantity:     qty,
		Requirements: reqs,
		Time:         mulQty(qty, r.opts.TimePerUnit),
		Profit:       it.SellPrice * float64(qty),
	}
}

func leafChain(id string, qty int) *crafting.DependencyChain {
	return &crafting.DependencyChain{
		RawMaterials:    map[string]int{id: qty},
		ProductionSteps: []crafting.ProductionStep{},
	}
}

// chainBuilder accumulates a DependencyChain.
type chainBuilder struct {
	raw    map[string]int
	steps  []crafting.ProductionStep
	time   int
	profit decimal.Decimal
}

func newChainBuilder() *chainBuilder {
	return &chainBuilder{raw: make(map[string]int)}
}

func (b *chainBuilder) merge(c *crafting.DependencyChain) {
	for id, qty := range c.RawMaterials {
		b.raw[id] = addQty(b.raw[id], qty)
	}
	for _, s := range c.ProductionSteps {
		b.addStep(s)
	}
}

func (b *chainBuilder) addStep(s crafting.ProductionStep) {
	b.steps = append(b.steps, s)
	b.time = addQty(b.time, s.Time)
	b.profit = b.profit.Add(decimal.NewFromFloat(s.Profit))
}

func (b *chainBuilder) chain() *crafting.DependencyChain {
	steps := b.steps
	if steps == nil {
		steps = []crafting.ProductionStep{}
	}
	return &crafting.DependencyChain{
		RawMaterials:    b.raw,
		ProductionSteps: steps,
		TotalTime:       b.time,
		TotalProfit:     b.profit.InexactFloat64(),
	}
}
