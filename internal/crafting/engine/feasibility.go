package engine

import (
	"github.com/rsned/crafting-optimizer/internal/crafting/catalog"
)

// Feasibility answers how much of an item can be made from a snapshot.
type Feasibility struct {
	cat      *catalog.Catalog
	opts     Options
	resolver *Resolver
	bounds   *memo[snapshotKey, int]
}

// NewFeasibility creates a Feasibility that checks exact quantities with resolver.
func NewFeasibility(cat *catalog.Catalog, opts Options, resolver *Resolver) *Feasibility {
	return &Feasibility{
		cat:      cat,
		opts:     opts,
		resolver: resolver,
		bounds:   newMemo[snapshotKey, int](opts.MemoSize),
	}
}

// MaxCraftable returns the ratio bound on how many of id can be produced:
// the minimum over requirements of (stock + craftable) / per-unit quantity.
// Leaves return their stock. The bound can overstate what is possible when
// requirements share sub-items; CanCraftExactly is the precise check.
func (f *Feasibility) MaxCraftable(id string, snap Snapshot) (int, error) {
	return f.maxCraftable(id, snap, nil)
}

func (f *Feasibility) maxCraftable(id string, snap Snapshot, path []string) (int, error) {
	key := snapshotKey{item: id, fingerprint: snap.Fingerprint()}
	return f.bounds.get(key, func() (int, error) {
		if err := guardPath(path, id, f.opts.MaxDepth); err != nil {
			return 0, err
		}
		it, leaf := f.resolver.isLeaf(id)
		if leaf {
			return snap.Get(id), nil
		}

		next := append(path, id)
		bound := -1
		for _, req := range it.Requirements {
			available := snap.Get(req.ItemID)
			if _, subLeaf := f.resolver.isLeaf(req.ItemID); !subLeaf {
				craftable, err := f.maxCraftable(req.ItemID, snap, next)
				if err != nil {
					return 0, err
				}
				available = addQty(available, craftable)
			}
			if b := available / req.Quantity; bound < 0 || b < bound {
				bound = b
			}
		}
		if bound < 0 {
			return 0, nil
		}
		return bound, nil
	})
}

// CanCraftExactly simulates consuming snap down the whole tree and reports
// whether qty of id can be produced.
func (f *Feasibility) CanCraftExactly(id string, qty int, snap Snapshot) (bool, error) {
	if qty <= 0 {
		return true, nil
	}
	chain, err := f.resolver.ResolveAgainstInventory(id, qty, snap)
	if err != nil {
		return false, err
	}
	return snap.Covers(chain.RawMaterials), nil
}

// MaxCraftableExact bisects [0, upper] for the largest quantity that passes
// CanCraftExactly.
func (f *Feasibility) MaxCraftableExact(id string, snap Snapshot, upper int) (int, error) {
	low, high := 0, upper
	for low < high {
		mid := low + (high-low+1)/2
		ok, err := f.CanCraftExactly(id, mid, snap)
		if err != nil {
			return 0, err
		}
		if ok {
			low = mid
		} else {
			high = mid - 1
		}
	}
	return low, nil
}
