// Package crafting contains the core types for the crafting optimizer.
package crafting

// ============================================
// CATALOG TYPES
// ============================================

// Item is a catalog entry: something that can be sold, crafted, or both.
type Item struct {
	ID           string        `json:"id" yaml:"id"`
	Group        string        `json:"group,omitempty" yaml:"group,omitempty"`
	SellPrice    float64       `json:"sell_price" yaml:"sell_price"`
	Requirements []Requirement `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}

// IsRaw reports whether the item has no crafting requirements.
func (it Item) IsRaw() bool {
	return len(it.Requirements) == 0
}

// Requirement is the quantity of a sub-item needed to craft one unit of its parent.
type Requirement struct {
	ItemID   string `json:"item_id" yaml:"item_id"`
	Quantity int    `json:"quantity" yaml:"quantity"`
}

// ============================================
// RESOLUTION TYPES
// ============================================

// DependencyChain is the fully expanded cost of producing one item at one quantity.
// Chains are cached by the engine and must not be modified by callers.
type DependencyChain struct {
	RawMaterials    map[string]int   `json:"rawMaterials"`
	ProductionSteps []ProductionStep `json:"productionSteps"`
	TotalTime       int              `json:"totalTime"`
	TotalProfit     float64          `json:"totalProfit"`
}

// ProductionStep is one craft action for one item at an aggregated quantity.
type ProductionStep struct {
	ItemName     string            `json:"itemName"`
	Quantity     int               `json:"quantity"`
	Requirements []StepRequirement `json:"requirements"`
	Time         int               `json:"time"`
	Profit       float64           `json:"profit"`
}

// StepRequirement is an input consumed by a production step.
type StepRequirement struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// ============================================
// PLAN OUTPUT TYPES
// ============================================

// RequirementInfo is a display-ready step input.
type RequirementInfo struct {
	Item        string `json:"item"`
	DisplayName string `json:"displayName"`
	Quantity    int    `json:"quantity"`
}

// OptimizedStep aggregates every production step for one item across a run.
type OptimizedStep struct {
	Step            int               `json:"step"`
	Name            string            `json:"name"`
	DisplayName     string            `json:"displayName"`
	Quantity        int               `json:"quantity"`
	Value           float64           `json:"value"`
	Time            int               `json:"time"`
	TimeFormatted   string            `json:"timeFormatted"`
	Requirements    []RequirementInfo `json:"requirements"`
	Ready           bool              `json:"ready"`
	OpportunityCost *float64          `json:"opportunityCost,omitempty"`
	ProfitMargin    *float64          `json:"profitMargin,omitempty"`
}

// SellableItem is leftover inventory that can be sold directly.
type SellableItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
}

// Summary holds the aggregate figures of a plan.
type Summary struct {
	TotalProfit        float64 `json:"totalProfit"`
	TotalSellValue     float64 `json:"totalSellValue"`
	TotalTime          int     `json:"totalTime"`
	TotalTimeFormatted string  `json:"totalTimeFormatted"`
	Rounds             int     `json:"rounds"`
}

// OptimizationData is the payload of a successful optimization.
type OptimizationData struct {
	Summary         Summary         `json:"summary"`
	SellableItems   []SellableItem  `json:"sellableItems"`
	ProductionSteps []OptimizedStep `json:"productionSteps"`
}

// ============================================
// REQUEST/RESPONSE TYPES
// ============================================

// OptimizeRequest is the input of the optimize operation.
type OptimizeRequest struct {
	Inventory map[string]int `json:"inventory" validate:"required,dive,keys,required,endkeys,gte=0,lte=1000000000"`
}

// OptimizationResult is the response envelope of the optimize operation.
type OptimizationResult struct {
	Success bool              `json:"success"`
	Data    *OptimizationData `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// ============================================
// LOOKUP TYPES
// ============================================

// ItemUse describes one recipe that consumes the looked-up item.
type ItemUse struct {
	ItemID           string  `json:"item_id"`
	DisplayName      string  `json:"display_name"`
	QuantityPerCraft int     `json:"quantity_per_craft"`
	SellPrice        float64 `json:"sell_price"`
}

// UnitEconomics is the profit picture of crafting one unit.
type UnitEconomics struct {
	SellPrice       float64 `json:"sell_price"`
	OpportunityCost float64 `json:"opportunity_cost"`
	NetProfit       float64 `json:"net_profit"`
	ProfitMarginPct float64 `json:"profit_margin_pct"`
}

// ItemLookupResponse is the result of an item lookup.
type ItemLookupResponse struct {
	Item        *Item          `json:"item,omitempty"`
	DisplayName string         `json:"display_name"`
	Known       bool           `json:"known"`
	Raw         bool           `json:"raw"`
	Depth       int            `json:"depth"`
	UsedIn      []ItemUse      `json:"used_in"`
	Economics   *UnitEconomics `json:"economics,omitempty"`
}

// ============================================
// TOOL TYPES
// ============================================

// ItemLookupRequest names the item to describe.
type ItemLookupRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

// ResolveChainRequest asks for the dependency chain of Quantity units of
// ItemID. With Inventory set, stock is drawn before crafting.
type ResolveChainRequest struct {
	ItemID    string         `json:"item_id" validate:"required"`
	Quantity  int            `json:"quantity" validate:"gte=0,lte=1000000000"`
	Inventory map[string]int `json:"inventory,omitempty" validate:"omitempty,dive,keys,required,endkeys,gte=0,lte=1000000000"`
}

// MaxCraftableRequest asks how many of ItemID the inventory can produce.
// A nil Exact follows the server's quantity search mode.
type MaxCraftableRequest struct {
	ItemID    string         `json:"item_id" validate:"required"`
	Inventory map[string]int `json:"inventory" validate:"required,dive,keys,required,endkeys,gte=0,lte=1000000000"`
	Exact     *bool          `json:"exact,omitempty"`
}

// MaxCraftableResponse is the result of a max craftable query.
type MaxCraftableResponse struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Exact    bool   `json:"exact"`
}

// OpportunityCostRequest asks for the input value consumed by crafting.
type OpportunityCostRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0,lte=1000000000"`
}

// OpportunityCostResponse is the result of an opportunity cost query.
type OpportunityCostResponse struct {
	ItemID          string  `json:"item_id"`
	Quantity        int     `json:"quantity"`
	OpportunityCost float64 `json:"opportunity_cost"`
}
