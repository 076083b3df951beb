package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-optimizer/internal/crafting/catalog"
	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

// recipe builds an item from alternating requirement IDs and quantities.
func recipe(id string, price float64, reqs ...any) crafting.Item {
	it := crafting.Item{ID: id, SellPrice: price}
	for i := 0; i+1 < len(reqs); i += 2 {
		it.Requirements = append(it.Requirements, crafting.Requirement{
			ItemID:   reqs[i].(string),
			Quantity: reqs[i+1].(int),
		})
	}
	return it
}

func mustCatalog(t *testing.T, items ...crafting.Item) *catalog.Catalog {
	t.Helper()
	cat, _, err := catalog.New(items)
	require.NoError(t, err)
	return cat
}

func mustOptions(t *testing.T, opts Options) Options {
	t.Helper()
	out, err := opts.withDefaults()
	require.NoError(t, err)
	return out
}

func mustEngine(t *testing.T, cat *catalog.Catalog, opts Options) *Engine {
	t.Helper()
	eng, err := New(cat, opts, nil, nil)
	require.NoError(t, err)
	return eng
}

// jewelry is a small two-level catalog shaped like the production data.
func jewelry(t *testing.T) *catalog.Catalog {
	return mustCatalog(t,
		recipe("iron_ore", 0),
		recipe("coal", 1),
		recipe("uncut_ruby", 8),
		recipe("iron_ingot", 10, "iron_ore", 2),
		recipe("iron_ring", 100, "iron_ingot", 3),
		recipe("ruby_ring", 260, "iron_ring", 1, "uncut_ruby", 2, "coal", 1),
	)
}
