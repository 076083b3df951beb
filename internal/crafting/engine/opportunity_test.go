package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpportunityCost(t *testing.T) {
	tests := []struct {
		name string
		item string
		qty  int
		want float64
	}{
		{name: "raw item", item: "coal", qty: 10, want: 0},
		{name: "unpriced inputs", item: "iron_ingot", qty: 4, want: 0},
		{name: "priced intermediate", item: "iron_ring", qty: 2, want: 60},
		{name: "mixed inputs", item: "ruby_ring", qty: 1, want: 100 + 16 + 1},
		{name: "unknown item", item: "stardust", qty: 3, want: 0},
		{name: "zero quantity", item: "ruby_ring", qty: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOpportunityCost(jewelry(t), mustOptions(t, Options{}))

			got, err := o.Cost(tt.item, tt.qty)

			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestOpportunityCost_RecursesThroughUnpricedInputs(t *testing.T) {
	cat := mustCatalog(t,
		recipe("gold_ore", 6),
		recipe("gold_dust", 0, "gold_ore", 2),
		recipe("gold_leaf", 40, "gold_dust", 3),
	)
	o := NewOpportunityCost(cat, mustOptions(t, Options{}))

	got, err := o.Cost("gold_leaf", 2)

	require.NoError(t, err)
	// 2 leaves need 6 dust, 6 dust need 12 ore at 6 each
	assert.InDelta(t, 72, got, 1e-9)
}

func TestOpportunityCost_NoFloatDrift(t *testing.T) {
	cat := mustCatalog(t,
		recipe("shard", 0.1),
		recipe("crystal", 5, "shard", 3),
	)
	o := NewOpportunityCost(cat, mustOptions(t, Options{}))

	got, err := o.Cost("crystal", 1)

	require.NoError(t, err)
	assert.Equal(t, 0.3, got)
}
