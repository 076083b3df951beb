package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

func TestResolve_RawItem(t *testing.T) {
	r := NewResolver(jewelry(t), mustOptions(t, Options{}))

	for _, n := range []int{0, 1, 7} {
		chain, err := r.Resolve("iron_ore", n)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"iron_ore": n}, chain.RawMaterials)
		assert.Empty(t, chain.ProductionSteps)
		assert.Zero(t, chain.TotalTime)
		assert.Zero(t, chain.TotalProfit)
	}
}

func TestResolve_UnknownItemIsRaw(t *testing.T) {
	r := NewResolver(jewelry(t), mustOptions(t, Options{}))

	chain, err := r.Resolve("meteorite", 3)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"meteorite": 3}, chain.RawMaterials)
	assert.Empty(t, chain.ProductionSteps)
}

func TestResolve_ZeroQuantityComposite(t *testing.T) {
	r := NewResolver(jewelry(t), mustOptions(t, Options{}))

	chain, err := r.Resolve("iron_ring", 0)
	require.NoError(t, err)
	assert.Empty(t, chain.RawMaterials)
	assert.Empty(t, chain.ProductionSteps)
	assert.Zero(t, chain.TotalTime)
}

func TestResolve_MultiLevel(t *testing.T) {
	r := NewResolver(jewelry(t), mustOptions(t, Options{}))

	chain, err := r.Resolve("ruby_ring", 2)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"iron_ore": 12, "uncut_ruby": 4, "coal": 2}, chain.RawMaterials)
	require.Len(t, chain.ProductionSteps, 3)
	assert.Equal(t, crafting.ProductionStep{
		ItemName:     "iron_ingot",
		Quantity:     6,
		Requirements: []crafting.StepRequirement{{Item: "iron_ore", Quantity: 12}},
		Time:         90,
		Profit:       60,
	}, chain.ProductionSteps[0])
	assert.Equal(t, "iron_ring", chain.ProductionSteps[1].ItemName)
	assert.Equal(t, "ruby_ring", chain.ProductionSteps[2].ItemName)
	assert.Equal(t, 2, chain.ProductionSteps[2].Quantity)

	// 6 ingots + 2 iron rings + 2 ruby rings, 15 each
	assert.Equal(t, 150, chain.TotalTime)
	assert.InDelta(t, 60+200+520, chain.TotalProfit, 1e-9)
}

func TestResolve_ScalesLinearly(t *testing.T) {
	r := NewResolver(jewelry(t), mustOptions(t, Options{}))

	one, err := r.Resolve("ruby_ring", 1)
	require.NoError(t, err)
	five, err := r.Resolve("ruby_ring", 5)
	require.NoError(t, err)

	for id, qty := range one.RawMaterials {
		assert.Equal(t, qty*5, five.RawMaterials[id], id)
	}
	require.Len(t, five.ProductionSteps, len(one.ProductionSteps))
	for i, step := range one.ProductionSteps {
		for j, req := range step.Requirements {
			assert.Equal(t, req.Quantity*5, five.ProductionSteps[i].Requirements[j].Quantity)
		}
	}
}

func TestResolve_Memoized(t *testing.T) {
	r := NewResolver(jewelry(t), mustOptions(t, Options{}))

	first, err := r.Resolve("iron_ring", 4)
	require.NoError(t, err)
	second, err := r.Resolve("iron_ring", 4)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestResolveAgainstInventory_DrawsStockFirst(t *testing.T) {
	r := NewResolver(jewelry(t), mustOptions(t, Options{}))
	snap := NewSnapshot(crafting.Inventory{"iron_ingot": 1, "iron_ore": 10})

	chain, err := r.ResolveAgainstInventory("iron_ring", 1, snap)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"iron_ingot": 1, "iron_ore": 4}, chain.RawMaterials)
	require.Len(t, chain.ProductionSteps, 2)
	assert.Equal(t, "iron_ingot", chain.ProductionSteps[0].ItemName)
	assert.Equal(t, 2, chain.ProductionSteps[0].Quantity)
	assert.Equal(t, 45, chain.TotalTime)
	assert.True(t, snap.Covers(chain.RawMaterials))
}

func TestResolveAgainstInventory_ReportsShortfall(t *testing.T) {
	r := NewResolver(jewelry(t), mustOptions(t, Options{}))
	snap := NewSnapshot(crafting.Inventory{"iron_ore": 3})

	chain, err := r.ResolveAgainstInventory("iron_ring", 1, snap)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"iron_ore": 6}, chain.RawMaterials)
	assert.False(t, snap.Covers(chain.RawMaterials))
}

func TestResolveAgainstInventory_SharedStockClaimedOnce(t *testing.T) {
	cat := mustCatalog(t,
		recipe("ore", 0),
		recipe("left", 1, "ore", 2),
		recipe("right", 1, "ore", 2),
		recipe("pair", 10, "left", 1, "right", 1),
	)
	r := NewResolver(cat, mustOptions(t, Options{}))
	snap := NewSnapshot(crafting.Inventory{"ore": 3})

	chain, err := r.ResolveAgainstInventory("pair", 1, snap)
	require.NoError(t, err)

	assert.Equal(t, 4, chain.RawMaterials["ore"])
	assert.False(t, snap.Covers(chain.RawMaterials))
}

func TestResolveAgainstInventory_KeyedBySnapshot(t *testing.T) {
	r := NewResolver(jewelry(t), mustOptions(t, Options{}))

	withIngot, err := r.ResolveAgainstInventory("iron_ring", 1, NewSnapshot(crafting.Inventory{"iron_ingot": 3}))
	require.NoError(t, err)
	withOre, err := r.ResolveAgainstInventory("iron_ring", 1, NewSnapshot(crafting.Inventory{"iron_ore": 6}))
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"iron_ingot": 3}, withIngot.RawMaterials)
	assert.Equal(t, map[string]int{"iron_ore": 6}, withOre.RawMaterials)
}

func TestResolve_PassThroughItems(t *testing.T) {
	r := NewResolver(jewelry(t), mustOptions(t, Options{StepSkipRules: []string{"*_ingot"}}))

	chain, err := r.Resolve("iron_ring", 2)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"iron_ingot": 6}, chain.RawMaterials)
	require.Len(t, chain.ProductionSteps, 1)
	assert.Equal(t, "iron_ring", chain.ProductionSteps[0].ItemName)
}

func TestResolve_CyclicRecipe(t *testing.T) {
	cat := mustCatalog(t,
		recipe("a", 1, "b", 1),
		recipe("b", 1, "a", 1),
	)
	r := NewResolver(cat, mustOptions(t, Options{}))

	_, err := r.Resolve("a", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCyclicRecipe)

	var cycle *CyclicRecipeError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, []string{"a", "b", "a"}, cycle.Path)
	assert.Equal(t, "cyclic recipe: a -> b -> a", err.Error())

	_, err = r.ResolveAgainstInventory("b", 1, NewSnapshot(crafting.Inventory{}))
	assert.ErrorIs(t, err, ErrCyclicRecipe)
}

func TestResolve_DepthLimit(t *testing.T) {
	cat := mustCatalog(t,
		recipe("d", 0),
		recipe("c", 1, "d", 1),
		recipe("b", 1, "c", 1),
		recipe("a", 1, "b", 1),
	)
	r := NewResolver(cat, mustOptions(t, Options{MaxDepth: 2}))

	_, err := r.Resolve("a", 1)
	require.Error(t, err)

	var cycle *CyclicRecipeError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, 2, cycle.MaxDepth)
	assert.Equal(t, []string{"a", "b", "c"}, cycle.Path)
	assert.ErrorIs(t, err, ErrCyclicRecipe)
}
