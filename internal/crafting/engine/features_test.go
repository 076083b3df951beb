package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/rsned/crafting-optimizer/internal/crafting/catalog"
	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeOptimizeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

type optimizeContext struct {
	engine    *Engine
	inventory map[string]int
	data      *crafting.OptimizationData
	err       error
}

func initializeOptimizeScenario(sc *godog.ScenarioContext) {
	oc := &optimizeContext{}
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*oc = optimizeContext{}
		return ctx, nil
	})

	sc.Step(`^a catalog:$`, oc.aCatalog)
	sc.Step(`^an inventory:$`, oc.anInventory)
	sc.Step(`^I optimize the inventory$`, oc.iOptimizeTheInventory)
	sc.Step(`^I optimize a missing inventory$`, oc.iOptimizeAMissingInventory)
	sc.Step(`^the plan crafts (\d+) "([^"]*)"$`, oc.thePlanCrafts)
	sc.Step(`^the plan has no production steps$`, oc.thePlanHasNoProductionSteps)
	sc.Step(`^the total profit is (-?\d+(?:\.\d+)?)$`, oc.theTotalProfitIs)
	sc.Step(`^there are no sellable items$`, oc.thereAreNoSellableItems)
	sc.Step(`^"([^"]*)" is sellable for (\d+(?:\.\d+)?)$`, oc.isSellableFor)
	sc.Step(`^the sellable items are "([^"]*)"$`, oc.theSellableItemsAre)
	sc.Step(`^the optimization fails with an invalid inventory error$`, oc.theOptimizationFailsWithInvalidInventory)
}

// Given steps

func (oc *optimizeContext) aCatalog(table *godog.Table) error {
	var items []crafting.Item
	for _, row := range table.Rows[1:] {
		price, err := strconv.ParseFloat(row.Cells[1].Value, 64)
		if err != nil {
			return fmt.Errorf("price for %s: %w", row.Cells[0].Value, err)
		}
		it := crafting.Item{ID: row.Cells[0].Value, SellPrice: price}
		for _, part := range strings.Fields(strings.ReplaceAll(row.Cells[2].Value, ",", " ")) {
			id, qty, ok := strings.Cut(part, ":")
			if !ok {
				return fmt.Errorf("requirement %q must be item:quantity", part)
			}
			n, err := strconv.Atoi(qty)
			if err != nil {
				return fmt.Errorf("requirement %q: %w", part, err)
			}
			it.Requirements = append(it.Requirements, crafting.Requirement{ItemID: id, Quantity: n})
		}
		items = append(items, it)
	}

	cat, _, err := catalog.New(items)
	if err != nil {
		return err
	}
	oc.engine, err = New(cat, Options{}, nil, nil)
	return err
}

func (oc *optimizeContext) anInventory(table *godog.Table) error {
	oc.inventory = make(map[string]int)
	for _, row := range table.Rows[1:] {
		n, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return err
		}
		oc.inventory[row.Cells[0].Value] = n
	}
	return nil
}

// When steps

func (oc *optimizeContext) iOptimizeTheInventory() error {
	oc.data, oc.err = oc.engine.Optimize(context.Background(), oc.inventory)
	return oc.err
}

func (oc *optimizeContext) iOptimizeAMissingInventory() error {
	oc.data, oc.err = oc.engine.Optimize(context.Background(), nil)
	return nil
}

// Then steps

func (oc *optimizeContext) thePlanCrafts(qty int, item string) error {
	for _, step := range oc.data.ProductionSteps {
		if step.Name == item {
			if step.Quantity != qty {
				return fmt.Errorf("expected %d %s, plan crafts %d", qty, item, step.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("plan does not craft %s", item)
}

func (oc *optimizeContext) thePlanHasNoProductionSteps() error {
	if n := len(oc.data.ProductionSteps); n != 0 {
		return fmt.Errorf("expected no production steps, got %d", n)
	}
	return nil
}

func (oc *optimizeContext) theTotalProfitIs(want float64) error {
	if got := oc.data.Summary.TotalProfit; got != want {
		return fmt.Errorf("expected total profit %v, got %v", want, got)
	}
	return nil
}

func (oc *optimizeContext) thereAreNoSellableItems() error {
	if n := len(oc.data.SellableItems); n != 0 {
		return fmt.Errorf("expected no sellable items, got %d", n)
	}
	return nil
}

func (oc *optimizeContext) isSellableFor(name string, value float64) error {
	for _, item := range oc.data.SellableItems {
		if item.Name == name {
			if item.Value != value {
				return fmt.Errorf("expected %s to be worth %v, got %v", name, value, item.Value)
			}
			return nil
		}
	}
	return fmt.Errorf("%s is not sellable", name)
}

func (oc *optimizeContext) theSellableItemsAre(list string) error {
	names := make([]string, 0, len(oc.data.SellableItems))
	for _, item := range oc.data.SellableItems {
		names = append(names, item.Name)
	}
	if got := strings.Join(names, ", "); got != list {
		return fmt.Errorf("expected sellable items %q, got %q", list, got)
	}
	return nil
}

func (oc *optimizeContext) theOptimizationFailsWithInvalidInventory() error {
	if !errors.Is(oc.err, ErrInvalidInventory) {
		return fmt.Errorf("expected invalid inventory error, got %v", oc.err)
	}
	return nil
}
