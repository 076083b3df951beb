package mcp

import (
	"context"
	"encoding/json"

	"github.com/rsned/crafting-optimizer/internal/crafting/engine"
	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

// ToolDefinition describes an MCP tool.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema is a simplified JSON Schema representation.
type JSONSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a schema property.
type Property struct {
	Type                 string              `json:"type,omitempty"`
	Description          string              `json:"description,omitempty"`
	Default              any                 `json:"default,omitempty"`
	Enum                 []string            `json:"enum,omitempty"`
	Minimum              *float64            `json:"minimum,omitempty"`
	Maximum              *float64            `json:"maximum,omitempty"`
	Items                *Property           `json:"items,omitempty"`
	Properties           map[string]Property `json:"properties,omitempty"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties *Property           `json:"additionalProperties,omitempty"`
}

// GetToolDefinitions returns all tool definitions.
func GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		optimizeCraftingTool(),
		resolveChainTool(),
		maxCraftableTool(),
		opportunityCostTool(),
		itemLookupTool(),
	}
}

func inventoryProperty(description string) Property {
	zero := 0.0
	return Property{
		Type:                 "object",
		Description:          description,
		AdditionalProperties: &Property{Type: "integer", Minimum: &zero},
	}
}

func optimizeCraftingTool() ToolDefinition {
	return ToolDefinition{
		Name:        "optimize_crafting",
		Description: "Compute the most profitable crafting plan for an inventory. Returns production steps in dependency order, the items left to sell, and profit and time totals.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"inventory": inventoryProperty("Material quantities the player holds (item_id -> quantity)"),
			},
			Required: []string{"inventory"},
		},
	}
}

func resolveChainTool() ToolDefinition {
	minQty := 0.0

	return ToolDefinition{
		Name:        "resolve_chain",
		Description: "Expand an item into the raw materials and ordered production steps needed to craft it. With an inventory, stock is used before crafting.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"item_id": {
					Type:        "string",
					Description: "Item to craft",
				},
				"quantity": {
					Type:        "integer",
					Description: "How many to craft",
					Default:     1,
					Minimum:     &minQty,
				},
				"inventory": inventoryProperty("Optional stock to draw from before crafting"),
			},
			Required: []string{"item_id", "quantity"},
		},
	}
}

func maxCraftableTool() ToolDefinition {
	return ToolDefinition{
		Name:        "max_craftable",
		Description: "Estimate how many units of an item an inventory can produce. The exact mode confirms the answer with full chain simulations. The non-exact answer is an optimistic ratio bound and can overstate what is possible when requirements share sub-items.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"item_id": {
					Type:        "string",
					Description: "Item to craft",
				},
				"inventory": inventoryProperty("Material quantities the player holds"),
				"exact": {
					Type:        "boolean",
					Description: "Tighten the ratio estimate by simulation. Defaults to true when the server searches quantities by bisection",
				},
			},
			Required: []string{"item_id", "inventory"},
		},
	}
}

func opportunityCostTool() ToolDefinition {
	minQty := 0.0

	return ToolDefinition{
		Name:        "opportunity_cost",
		Description: "Calculate the sell value of the inputs consumed by crafting an item instead of selling them.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"item_id": {
					Type:        "string",
					Description: "Item to craft",
				},
				"quantity": {
					Type:        "integer",
					Description: "How many to craft",
					Default:     1,
					Minimum:     &minQty,
				},
			},
			Required: []string{"item_id", "quantity"},
		},
	}
}

func itemLookupTool() ToolDefinition {
	return ToolDefinition{
		Name:        "item_lookup",
		Description: "Look up an item: its recipe, sell price, recipe depth, unit profit, and the recipes that use it.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"item_id": {
					Type:        "string",
					Description: "Exact item ID to look up",
				},
			},
			Required: []string{"item_id"},
		},
	}
}

// Tool handlers

func (s *Server) toolOptimizeCrafting(ctx context.Context, args json.RawMessage) (any, error) {
	var req crafting.OptimizeRequest
	if err := s.decodeArgs(args, &req); err != nil {
		return nil, err
	}
	data, err := s.engine.Optimize(ctx, req.Inventory)
	if err != nil {
		return nil, err
	}
	return crafting.OptimizationResult{Success: true, Data: data}, nil
}

func (s *Server) toolResolveChain(ctx context.Context, args json.RawMessage) (any, error) {
	var req crafting.ResolveChainRequest
	if err := s.decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return s.engine.ResolveChain(ctx, req.ItemID, req.Quantity, req.Inventory)
}

func (s *Server) toolMaxCraftable(ctx context.Context, args json.RawMessage) (any, error) {
	var req crafting.MaxCraftableRequest
	if err := s.decodeArgs(args, &req); err != nil {
		return nil, err
	}
	exact := s.engine.Options().QuantitySearch == engine.SearchBisect
	if req.Exact != nil {
		exact = *req.Exact
	}
	qty, err := s.engine.MaxCraftable(ctx, req.ItemID, req.Inventory, exact)
	if err != nil {
		return nil, err
	}
	return crafting.MaxCraftableResponse{ItemID: req.ItemID, Quantity: qty, Exact: exact}, nil
}

func (s *Server) toolOpportunityCost(ctx context.Context, args json.RawMessage) (any, error) {
	var req crafting.OpportunityCostRequest
	if err := s.decodeArgs(args, &req); err != nil {
		return nil, err
	}
	cost, err := s.engine.OpportunityCost(ctx, req.ItemID, req.Quantity)
	if err != nil {
		return nil, err
	}
	return crafting.OpportunityCostResponse{ItemID: req.ItemID, Quantity: req.Quantity, OpportunityCost: cost}, nil
}

func (s *Server) toolItemLookup(ctx context.Context, args json.RawMessage) (any, error) {
	var req crafting.ItemLookupRequest
	if err := s.decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return s.engine.ItemLookup(ctx, req.ItemID)
}
