package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

// Format is the encoding of a catalog document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file name or object key extension.
// Anything that is not .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes a grouped catalog document:
//
//	{"tambang": {"iron_ingot": {"price": 12, "require": {"iron_ore": 2}}}, "perhiasan": {...}}
//
// Every top-level object is a group. "sell_price" is accepted for "price" and
// "requirements" for "require".
func Parse(data []byte, format Format) ([]crafting.Item, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatJSON, "":
		return parseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
}

func parseJSON(data []byte) ([]crafting.Item, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("parsing JSON: invalid document")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.New("parsing JSON: catalog must be an object of groups")
	}

	var items []crafting.Item
	var parseErr error
	root.ForEach(func(groupKey, group gjson.Result) bool {
		if !group.IsObject() {
			parseErr = fmt.Errorf("group %q: expected object of items", groupKey.String())
			return false
		}
		group.ForEach(func(idKey, body gjson.Result) bool {
			it, err := jsonItem(groupKey.String(), idKey.String(), body)
			if err != nil {
				parseErr = err
				return false
			}
			items = append(items, it)
			return true
		})
		return parseErr == nil
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return items, nil
}

func jsonItem(group, id string, body gjson.Result) (crafting.Item, error) {
	if !body.IsObject() {
		return crafting.Item{}, fmt.Errorf("item %q: expected object", id)
	}
	it := crafting.Item{ID: id, Group: group}

	price := body.Get("price")
	if !price.Exists() {
		price = body.Get("sell_price")
	}
	if price.Exists() {
		if price.Type != gjson.Number {
			return crafting.Item{}, fmt.Errorf("item %q: price must be a number", id)
		}
		it.SellPrice = price.Float()
	}

	req := body.Get("require")
	if !req.Exists() {
		req = body.Get("requirements")
	}
	if !req.Exists() || req.Type == gjson.Null {
		return it, nil
	}
	if !req.IsObject() {
		return crafting.Item{}, fmt.Errorf("item %q: requirements must be an object", id)
	}

	var reqErr error
	req.ForEach(func(sub, qty gjson.Result) bool {
		if qty.Type != gjson.Number || qty.Float() != float64(qty.Int()) {
			reqErr = fmt.Errorf("item %q: requirement %q must be an integer quantity", id, sub.String())
			return false
		}
		it.Requirements = append(it.Requirements, crafting.Requirement{
			ItemID:   sub.String(),
			Quantity: int(qty.Int()),
		})
		return true
	})
	if reqErr != nil {
		return crafting.Item{}, reqErr
	}
	return it, nil
}

type yamlItem struct {
	Price        *float64       `yaml:"price"`
	SellPrice    *float64       `yaml:"sell_price"`
	Require      map[string]int `yaml:"require"`
	Requirements map[string]int `yaml:"requirements"`
}

func parseYAML(data []byte) ([]crafting.Item, error) {
	var doc map[string]map[string]yamlItem
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	var items []crafting.Item
	for group, entries := range doc {
		for id, entry := range entries {
			it := crafting.Item{ID: id, Group: group}
			switch {
			case entry.Price != nil:
				it.SellPrice = *entry.Price
			case entry.SellPrice != nil:
				it.SellPrice = *entry.SellPrice
			}

			reqs := entry.Require
			if reqs == nil {
				reqs = entry.Requirements
			}
			for sub, qty := range reqs {
				it.Requirements = append(it.Requirements, crafting.Requirement{ItemID: sub, Quantity: qty})
			}
			items = append(items, it)
		}
	}
	return items, nil
}
