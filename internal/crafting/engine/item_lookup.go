package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

// ItemLookup describes a catalog item: its recipe, the recipes that consume
// it, and the per-unit economics of crafting it.
func (e *Engine) ItemLookup(ctx context.Context, id string) (*crafting.ItemLookupResponse, error) {
	_, span := e.tracer.Start(ctx, "Engine.ItemLookup", trace.WithAttributes(attribute.String("item.id", id)))
	defer span.End()

	resp := &crafting.ItemLookupResponse{
		DisplayName: e.cat.DisplayName(id),
		Known:       e.cat.IsKnown(id),
		Raw:         true,
		Depth:       e.cat.Depth(id),
		UsedIn:      []crafting.ItemUse{},
	}

	for _, parentID := range e.cat.UsedIn(id) {
		parent, _ := e.cat.Item(parentID)
		var perCraft int
		for _, req := range parent.Requirements {
			if req.ItemID == id {
				perCraft = req.Quantity
				break
			}
		}
		resp.UsedIn = append(resp.UsedIn, crafting.ItemUse{
			ItemID:           parentID,
			DisplayName:      e.cat.DisplayName(parentID),
			QuantityPerCraft: perCraft,
			SellPrice:        parent.SellPrice,
		})
	}

	it, ok := e.cat.Item(id)
	if !ok {
		return resp, nil
	}
	resp.Item = &it
	resp.Raw = it.IsRaw()
	if resp.Raw {
		return resp, nil
	}

	cost, err := NewOpportunityCost(e.cat, e.opts).Cost(id, 1)
	if err != nil {
		return nil, err
	}
	net := it.SellPrice - cost
	var marginPct float64
	if cost > 0 {
		marginPct = net / cost * 100
	}
	resp.Economics = &crafting.UnitEconomics{
		SellPrice:       it.SellPrice,
		OpportunityCost: cost,
		NetProfit:       net,
		ProfitMarginPct: marginPct,
	}
	return resp, nil
}
