package engine

import (
	"fmt"
	"path"
)

// QuantitySearch selects how the planner finds the largest affordable quantity.
type QuantitySearch string

const (
	// SearchBisect bisects between 0 and the ratio bound using exact checks.
	SearchBisect QuantitySearch = "bisect"

	// SearchLinear checks every quantity from the ratio bound down to 1.
	SearchLinear QuantitySearch = "linear"
)

// Options tunes the planner. The zero value of any field means "use the default".
type Options struct {
	QuantityCap       int
	MarginWeight      float64
	ProfitWeight      float64
	ProfitScale       float64
	MinScore          float64
	ValuableThreshold float64
	TimePerUnit       int
	StepSkipRules     []string
	QuantitySearch    QuantitySearch
	MaxRounds         int
	MaxDepth          int
	MemoSize          int
}

// DefaultOptions returns the stock planner tuning.
func DefaultOptions() Options {
	return Options{
		QuantityCap:       50,
		MarginWeight:      0.6,
		ProfitWeight:      0.4,
		ProfitScale:       1000,
		MinScore:          0.01,
		ValuableThreshold: 10,
		TimePerUnit:       15,
		QuantitySearch:    SearchBisect,
		MaxRounds:         10000,
		MaxDepth:          64,
		MemoSize:          4096,
	}
}

// withDefaults fills zero fields from DefaultOptions and validates the rest.
func (o Options) withDefaults() (Options, error) {
	d := DefaultOptions()
	if o.QuantityCap == 0 {
		o.QuantityCap = d.QuantityCap
	}
	if o.MarginWeight == 0 && o.ProfitWeight == 0 {
		o.MarginWeight, o.ProfitWeight = d.MarginWeight, d.ProfitWeight
	}
	if o.ProfitScale == 0 {
		o.ProfitScale = d.ProfitScale
	}
	if o.MinScore == 0 {
		o.MinScore = d.MinScore
	}
	if o.ValuableThreshold == 0 {
		o.ValuableThreshold = d.ValuableThreshold
	}
	if o.TimePerUnit == 0 {
		o.TimePerUnit = d.TimePerUnit
	}
	if o.QuantitySearch == "" {
		o.QuantitySearch = d.QuantitySearch
	}
	if o.MaxRounds == 0 {
		o.MaxRounds = d.MaxRounds
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = d.MaxDepth
	}
	if o.MemoSize == 0 {
		o.MemoSize = d.MemoSize
	}

	switch {
	case o.QuantityCap < 1:
		return o, fmt.Errorf("quantity cap must be positive, got %d", o.QuantityCap)
	case o.ProfitScale <= 0:
		return o, fmt.Errorf("profit scale must be positive, got %v", o.ProfitScale)
	case o.TimePerUnit < 0:
		return o, fmt.Errorf("time per unit cannot be negative, got %d", o.TimePerUnit)
	case o.MaxRounds < 1, o.MaxDepth < 1, o.MemoSize < 1:
		return o, fmt.Errorf("max rounds, max depth and memo size must be positive")
	}
	if o.QuantitySearch != SearchBisect && o.QuantitySearch != SearchLinear {
		return o, fmt.Errorf("unknown quantity search %q", o.QuantitySearch)
	}
	for _, pattern := range o.StepSkipRules {
		if _, err := path.Match(pattern, ""); err != nil {
			return o, fmt.Errorf("step skip rule %q: %w", pattern, err)
		}
	}
	return o, nil
}

// Score blends margin and absolute profit into the planner's ranking value.
func (o Options) Score(margin, finalProfit float64) float64 {
	return margin*o.MarginWeight + (finalProfit/o.ProfitScale)*o.ProfitWeight
}

// Margin is net over opportunity cost, or ±1 when the inputs are free.
func Margin(netProfit, opportunityCost float64) float64 {
	if opportunityCost > 0 {
		return netProfit / opportunityCost
	}
	if netProfit > 0 {
		return 1
	}
	return -1
}

// passThrough reports whether id matches a step-skip rule.
func (o Options) passThrough(id string) bool {
	for _, pattern := range o.StepSkipRules {
		if ok, _ := path.Match(pattern, id); ok {
			return true
		}
	}
	return false
}
