package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

func TestOptions_Defaults(t *testing.T) {
	opts, err := Options{QuantityCap: 10}.withDefaults()
	require.NoError(t, err)

	assert.Equal(t, 10, opts.QuantityCap)
	assert.Equal(t, 0.6, opts.MarginWeight)
	assert.Equal(t, 0.4, opts.ProfitWeight)
	assert.Equal(t, 15, opts.TimePerUnit)
	assert.Equal(t, SearchBisect, opts.QuantitySearch)
}

func TestOptions_Score(t *testing.T) {
	opts := DefaultOptions()

	assert.InDelta(t, 0.62, opts.Score(1, 50), 1e-12)
	assert.InDelta(t, -0.6, opts.Score(-1, 0), 1e-12)
}

func TestMargin(t *testing.T) {
	assert.Equal(t, 2.0, Margin(20, 10))
	assert.Equal(t, 1.0, Margin(5, 0))
	assert.Equal(t, -1.0, Margin(-5, 0))
	assert.Equal(t, -1.0, Margin(0, 0))
}

func TestOptions_PassThrough(t *testing.T) {
	opts := Options{StepSkipRules: []string{"*_ingot", "coal"}}

	assert.True(t, opts.passThrough("gold_ingot"))
	assert.True(t, opts.passThrough("coal"))
	assert.False(t, opts.passThrough("gold_ring"))
}

func TestSnapshot(t *testing.T) {
	inv := crafting.Inventory{"coal": 2, "iron_ore": 0}
	snap := NewSnapshot(inv)
	inv["coal"] = 9

	assert.Equal(t, 2, snap.Get("coal"), "snapshot is a copy")
	assert.Equal(t, NewSnapshot(crafting.Inventory{"coal": 2}).Fingerprint(), snap.Fingerprint(),
		"zero entries do not change the fingerprint")
	assert.NotEqual(t, NewSnapshot(crafting.Inventory{"coal": 3}).Fingerprint(), snap.Fingerprint())

	scratch := snap.Inventory()
	scratch.Deduct("coal", 2)
	assert.Equal(t, 2, snap.Get("coal"))
}
