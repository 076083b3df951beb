package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rsned/crafting-optimizer/internal/crafting/catalog"
	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

// candidate is one (item, quantity) option evaluated in a round.
type candidate struct {
	item   string
	qty    int
	chain  *crafting.DependencyChain
	cost   decimal.Decimal
	final  decimal.Decimal
	net    decimal.Decimal
	score  float64
	margin float64
}

func (c *candidate) beats(other *candidate) bool {
	if other == nil {
		return true
	}
	if c.score != other.score {
		return c.score > other.score
	}
	return c.final.GreaterThan(other.final)
}

// Planner runs the greedy selection loop. It owns the only mutable
// inventory of a run and is not safe for concurrent use.
type Planner struct {
	cat      *catalog.Catalog
	opts     Options
	logger   *slog.Logger
	recorder Recorder

	resolver *Resolver
	feas     *Feasibility
	opp      *OpportunityCost

	inv     crafting.Inventory
	plan    *planBuilder
	skipped map[string]bool
	rounds  int
}

// NewPlanner creates a planner over inv. The planner takes ownership of inv.
func NewPlanner(cat *catalog.Catalog, opts Options, inv crafting.Inventory, logger *slog.Logger, recorder Recorder) *Planner {
	resolver := NewResolver(cat, opts)
	return &Planner{
		cat:      cat,
		opts:     opts,
		logger:   logger,
		recorder: recorder,
		resolver: resolver,
		feas:     NewFeasibility(cat, opts, resolver),
		opp:      NewOpportunityCost(cat, opts),
		inv:      inv,
		plan:     newPlanBuilder(cat),
		skipped:  make(map[string]bool),
	}
}

// Rounds returns the number of applied rounds.
func (p *Planner) Rounds() int {
	return p.rounds
}

// Run selects and applies the best option until none is acceptable.
func (p *Planner) Run() (*crafting.OptimizationData, error) {
	for {
		if p.rounds >= p.opts.MaxRounds {
			p.logger.Warn("planner stopped at round limit", "rounds", p.rounds)
			break
		}

		snap := NewSnapshot(p.inv)
		best, err := p.selectBest(snap)
		if err != nil {
			return nil, err
		}
		if best == nil {
			break
		}

		p.apply(best)
		p.rounds++

		if best.score < p.opts.MinScore && !p.hasValuableMaterials() {
			p.logger.Debug("stopping on low score", "score", best.score)
			break
		}
	}
	return p.plan.assemble(p.opp, p.inv, p.rounds)
}

// selectBest scans the catalog and returns the best acceptable option, or nil.
func (p *Planner) selectBest(snap Snapshot) (*candidate, error) {
	var best *candidate
	for _, id := range p.cat.IDs() {
		if p.skipped[id] {
			continue
		}
		it, _ := p.cat.Item(id)
		if it.SellPrice <= 0 || it.IsRaw() || p.opts.passThrough(id) {
			continue
		}

		c, err := p.bestForItem(it, snap)
		if errors.Is(err, ErrCyclicRecipe) {
			p.logger.Warn("skipping item with cyclic recipe", "item", id, "error", err)
			p.skipped[id] = true
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", id, err)
		}
		if c != nil && c.beats(best) {
			best = c
		}
	}
	return best, nil
}

// bestForItem evaluates every affordable quantity of it up to the cap.
func (p *Planner) bestForItem(it crafting.Item, snap Snapshot) (*candidate, error) {
	bound, err := p.feas.MaxCraftable(it.ID, snap)
	if err != nil {
		return nil, err
	}
	top := min(bound, p.opts.QuantityCap)
	if top <= 0 {
		return nil, nil
	}
	if p.opts.QuantitySearch == SearchBisect {
		if top, err = p.feas.MaxCraftableExact(it.ID, snap, top); err != nil {
			return nil, err
		}
	}

	price := decimal.NewFromFloat(it.SellPrice)
	var best *candidate
	for qty := top; qty >= 1; qty-- {
		chain, err := p.resolver.ResolveAgainstInventory(it.ID, qty, snap)
		if err != nil {
			return nil, err
		}
		if !snap.Covers(chain.RawMaterials) {
			continue
		}
		cost, err := p.opp.cost(it.ID, qty, nil)
		if err != nil {
			return nil, err
		}

		final := price.Mul(decimal.NewFromInt(int64(qty)))
		net := final.Sub(cost)
		if !net.IsPositive() {
			continue
		}
		margin := Margin(net.InexactFloat64(), cost.InexactFloat64())
		c := &candidate{
			item:   it.ID,
			qty:    qty,
			chain:  chain,
			cost:   cost,
			final:  final,
			net:    net,
			margin: margin,
			score:  p.opts.Score(margin, final.InexactFloat64()),
		}
		if c.beats(best) {
			best = c
		}
	}
	return best, nil
}

// apply consumes the chain's materials and records its steps. The chosen
// item is sold, so it is not added back to the inventory.
func (p *Planner) apply(c *candidate) {
	ids := make([]string, 0, len(c.chain.RawMaterials))
	for id := range c.chain.RawMaterials {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if short := p.inv.Deduct(id, c.chain.RawMaterials[id]); short > 0 {
			p.logger.Warn("inventory went negative, clamped to zero",
				"item", id, "shortfall", short, "target", c.item)
			p.recorder.NegativeInventory()
		}
	}
	p.plan.addChain(c.chain, c.net)

	p.logger.Debug("applied round",
		"round", p.rounds+1,
		"item", c.item,
		"quantity", c.qty,
		"net_profit", c.net.InexactFloat64(),
		"score", c.score)
}

// hasValuableMaterials reports whether any remaining stock is worth another
// round: a raw material, or an item priced above the valuable threshold.
func (p *Planner) hasValuableMaterials() bool {
	for _, id := range p.inv.Positive() {
		it, ok := p.cat.Item(id)
		if ok && (it.IsRaw() || it.SellPrice > p.opts.ValuableThreshold) {
			return true
		}
	}
	return false
}
