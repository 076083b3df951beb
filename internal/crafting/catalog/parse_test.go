package catalog

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

const groupedJSON = `{
  "tambang": {
    "copper_ore": {"price": 3, "require": null},
    "copper_ingot": {"price": 15, "require": {"copper_ore": 2, "coal": 1}}
  },
  "perhiasan": {
    "copper_ring": {"sell_price": 60, "requirements": {"copper_ingot": 3}}
  }
}`

func byID(items []crafting.Item) map[string]crafting.Item {
	out := make(map[string]crafting.Item, len(items))
	for _, it := range items {
		sort.Slice(it.Requirements, func(i, j int) bool {
			return it.Requirements[i].ItemID < it.Requirements[j].ItemID
		})
		out[it.ID] = it
	}
	return out
}

func TestParse_JSON(t *testing.T) {
	items, err := Parse([]byte(groupedJSON), FormatJSON)
	require.NoError(t, err)
	require.Len(t, items, 3)

	got := byID(items)
	assert.Equal(t, crafting.Item{ID: "copper_ore", Group: "tambang", SellPrice: 3}, got["copper_ore"])
	assert.Equal(t, "perhiasan", got["copper_ring"].Group)
	assert.Equal(t, 60.0, got["copper_ring"].SellPrice)
	assert.Equal(t, []crafting.Requirement{{ItemID: "coal", Quantity: 1}, {ItemID: "copper_ore", Quantity: 2}}, got["copper_ingot"].Requirements)
}

func TestParse_JSONErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `{"tambang":`},
		{name: "array root", doc: `[1, 2]`},
		{name: "group not object", doc: `{"tambang": 5}`},
		{name: "item not object", doc: `{"tambang": {"coal": 5}}`},
		{name: "string price", doc: `{"tambang": {"coal": {"price": "5"}}}`},
		{name: "fractional quantity", doc: `{"tambang": {"bar": {"price": 5, "require": {"ore": 1.5}}}}`},
		{name: "requirements array", doc: `{"tambang": {"bar": {"price": 5, "require": ["ore"]}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), FormatJSON)
			assert.Error(t, err)
		})
	}
}

func TestParse_YAML(t *testing.T) {
	doc := `
tambang:
  silver_ore:
    price: 4
  silver_ingot:
    price: 20
    require:
      silver_ore: 3
perhiasan:
  silver_necklace:
    sell_price: 90
    requirements:
      silver_ingot: 2
`
	items, err := Parse([]byte(doc), FormatYAML)
	require.NoError(t, err)
	require.Len(t, items, 3)

	got := byID(items)
	assert.True(t, got["silver_ore"].IsRaw())
	assert.Equal(t, 20.0, got["silver_ingot"].SellPrice)
	assert.Equal(t, 90.0, got["silver_necklace"].SellPrice)
	assert.Equal(t, []crafting.Requirement{{ItemID: "silver_ingot", Quantity: 2}}, got["silver_necklace"].Requirements)
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := Parse([]byte(`{}`), Format("toml"))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("catalog.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("data/CATALOG.YML"))
	assert.Equal(t, FormatJSON, FormatFromPath("catalog.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("catalog"))
}
