package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rsned/crafting-optimizer/internal/crafting/catalog"
	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

// aggregateStep is every production step for one item across a run.
type aggregateStep struct {
	name     string
	qty      int
	time     int
	profit   decimal.Decimal
	reqOrder []string
	reqs     map[string]int
}

// planBuilder merges chain steps per item, keeping first emission order.
type planBuilder struct {
	cat   *catalog.Catalog
	order []string
	steps map[string]*aggregateStep

	totalProfit decimal.Decimal
	totalTime   int
}

func newPlanBuilder(cat *catalog.Catalog) *planBuilder {
	return &planBuilder{cat: cat, steps: make(map[string]*aggregateStep)}
}

// addChain merges a chosen chain's steps, shallowest dependencies first.
// The chain itself is left untouched since it may be cached.
func (p *planBuilder) addChain(chain *crafting.DependencyChain, net decimal.Decimal) {
	steps := make([]crafting.ProductionStep, len(chain.ProductionSteps))
	copy(steps, chain.ProductionSteps)
	sort.SliceStable(steps, func(i, j int) bool {
		return p.cat.Depth(steps[i].ItemName) < p.cat.Depth(steps[j].ItemName)
	})
	for _, s := range steps {
		p.merge(s)
	}
	p.totalProfit = p.totalProfit.Add(net)
	p.totalTime = addQty(p.totalTime, chain.TotalTime)
}

func (p *planBuilder) merge(s crafting.ProductionStep) {
	agg, ok := p.steps[s.ItemName]
	if !ok {
		agg = &aggregateStep{name: s.ItemName, reqs: make(map[string]int)}
		p.steps[s.ItemName] = agg
		p.order = append(p.order, s.ItemName)
	}
	agg.qty = addQty(agg.qty, s.Quantity)
	agg.time = addQty(agg.time, s.Time)
	agg.profit = agg.profit.Add(decimal.NewFromFloat(s.Profit))
	for _, req := range s.Requirements {
		if _, seen := agg.reqs[req.Item]; !seen {
			agg.reqOrder = append(agg.reqOrder, req.Item)
		}
		agg.reqs[req.Item] = addQty(agg.reqs[req.Item], req.Quantity)
	}
}

// assemble produces the run output from the merged steps and the final inventory.
func (p *planBuilder) assemble(opp *OpportunityCost, inv crafting.Inventory, rounds int) (*crafting.OptimizationData, error) {
	steps := make([]crafting.OptimizedStep, 0, len(p.order))
	for i, id := range p.order {
		agg := p.steps[id]
		out := crafting.OptimizedStep{
			Step:          i + 1,
			Name:          id,
			DisplayName:   p.cat.DisplayName(id),
			Quantity:      agg.qty,
			Value:         agg.profit.InexactFloat64(),
			Time:          agg.time,
			TimeFormatted: FormatDuration(agg.time),
			Requirements:  make([]crafting.RequirementInfo, 0, len(agg.reqOrder)),
		}
		for _, req := range agg.reqOrder {
			out.Requirements = append(out.Requirements, crafting.RequirementInfo{
				Item:        req,
				DisplayName: p.cat.DisplayName(req),
				Quantity:    agg.reqs[req],
			})
		}

		cost, err := opp.cost(id, agg.qty, nil)
		if err != nil {
			return nil, err
		}
		if cost.IsPositive() {
			oc := cost.InexactFloat64()
			margin := agg.profit.Sub(cost).Div(cost).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
			out.OpportunityCost = &oc
			out.ProfitMargin = &margin
		}
		steps = append(steps, out)
	}

	sellable := make([]crafting.SellableItem, 0)
	sellValue := decimal.Zero
	for _, id := range inv.Positive() {
		price := p.cat.Price(id)
		if price <= 0 {
			continue
		}
		value := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(inv[id])))
		sellValue = sellValue.Add(value)
		sellable = append(sellable, crafting.SellableItem{
			ID:       id,
			Name:     p.cat.DisplayName(id),
			Quantity: inv[id],
			Price:    price,
			Value:    value.InexactFloat64(),
		})
	}
	sort.SliceStable(sellable, func(i, j int) bool {
		return sellable[i].Value > sellable[j].Value
	})

	return &crafting.OptimizationData{
		Summary: crafting.Summary{
			TotalProfit:        p.totalProfit.InexactFloat64(),
			TotalSellValue:     sellValue.InexactFloat64(),
			TotalTime:          p.totalTime,
			TotalTimeFormatted: FormatDuration(p.totalTime),
			Rounds:             rounds,
		},
		SellableItems:   sellable,
		ProductionSteps: steps,
	}, nil
}
