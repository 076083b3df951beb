package crafting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

func TestInventory_Clone(t *testing.T) {
	inv := crafting.Inventory{"coal": 3}

	clone := inv.Clone()
	clone["coal"] = 1
	clone["iron_ore"] = 2

	assert.Equal(t, 3, inv["coal"])
	assert.NotContains(t, inv, "iron_ore")
}

func TestInventory_Covers(t *testing.T) {
	inv := crafting.Inventory{"coal": 3, "iron_ore": 1}

	assert.True(t, inv.Covers(map[string]int{"coal": 3}))
	assert.True(t, inv.Covers(map[string]int{}))
	assert.False(t, inv.Covers(map[string]int{"coal": 4}))
	assert.False(t, inv.Covers(map[string]int{"gold_ore": 1}))
}

func TestInventory_Deduct(t *testing.T) {
	tests := []struct {
		name          string
		start         int
		take          int
		wantRemaining int
		wantShortfall int
	}{
		{name: "exact", start: 5, take: 5, wantRemaining: 0, wantShortfall: 0},
		{name: "partial", start: 5, take: 2, wantRemaining: 3, wantShortfall: 0},
		{name: "clamped", start: 2, take: 5, wantRemaining: 0, wantShortfall: 3},
		{name: "absent", start: 0, take: 1, wantRemaining: 0, wantShortfall: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := crafting.Inventory{"coal": tt.start}

			shortfall := inv.Deduct("coal", tt.take)

			assert.Equal(t, tt.wantShortfall, shortfall)
			assert.Equal(t, tt.wantRemaining, inv["coal"])
		})
	}
}

func TestInventory_Positive(t *testing.T) {
	inv := crafting.Inventory{"silver_ore": 1, "coal": 2, "gold_ore": 0}

	assert.Equal(t, []string{"coal", "silver_ore"}, inv.Positive())
}

func TestItem_IsRaw(t *testing.T) {
	assert.True(t, crafting.Item{ID: "coal"}.IsRaw())
	assert.False(t, crafting.Item{
		ID:           "iron_ingot",
		Requirements: []crafting.Requirement{{ItemID: "iron_ore", Quantity: 2}},
	}.IsRaw())
}
