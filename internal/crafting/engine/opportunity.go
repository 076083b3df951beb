package engine

import (
	"github.com/shopspring/decimal"

	"github.com/rsned/crafting-optimizer/internal/crafting/catalog"
)

// OpportunityCost values the inputs an item consumes as if they had been
// sold instead. Inputs with no sell price are valued through their own inputs.
type OpportunityCost struct {
	cat   *catalog.Catalog
	opts  Options
	costs *memo[chainKey, decimal.Decimal]
}

// NewOpportunityCost creates an evaluator with an empty memo table.
func NewOpportunityCost(cat *catalog.Catalog, opts Options) *OpportunityCost {
	return &OpportunityCost{
		cat:   cat,
		opts:  opts,
		costs: newMemo[chainKey, decimal.Decimal](opts.MemoSize),
	}
}

// Cost returns the market value given up by crafting qty of id.
func (o *OpportunityCost) Cost(id string, qty int) (float64, error) {
	d, err := o.cost(id, qty, nil)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

func (o *OpportunityCost) cost(id string, qty int, path []string) (decimal.Decimal, error) {
	return o.costs.get(chainKey{item: id, qty: qty}, func() (decimal.Decimal, error) {
		if err := guardPath(path, id, o.opts.MaxDepth); err != nil {
			return decimal.Zero, err
		}
		it, ok := o.cat.Item(id)
		if !ok || it.IsRaw() || o.opts.passThrough(id) {
			return decimal.Zero, nil
		}

		next := append(path, id)
		total := decimal.Zero
		for _, req := range it.Requirements {
			need := mulQty(req.Quantity, qty)
			if price := o.cat.Price(req.ItemID); price > 0 {
				total = total.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(need))))
				continue
			}
			sub, err := o.cost(req.ItemID, need, next)
			if err != nil {
				return decimal.Zero, err
			}
			total = total.Add(sub)
		}
		return total, nil
	})
}
