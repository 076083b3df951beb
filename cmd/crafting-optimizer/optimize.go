package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rsned/crafting-optimizer/internal/crafting/engine"
	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

func newOptimizeCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "optimize <inventory.json|->",
		Short: "Print the most profitable production plan for an inventory",
		Long: `Read an inventory document and print the production plan.
The document is either {"inventory": {"iron_ore": 10}} or the bare quantity object.
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inventory, err := readInventory(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			eng, err := a.newEngine(cmd.Context(), nil)
			if err != nil {
				return err
			}
			data, err := eng.Optimize(cmd.Context(), inventory)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(crafting.OptimizationResult{Success: true, Data: data})
			}
			return printPlan(out, data)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	return cmd
}

// readInventory accepts a request envelope or a bare quantity object.
func readInventory(path string, stdin io.Reader) (map[string]int, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading inventory: %w", err)
	}

	var envelope struct {
		Inventory map[string]int `json:"inventory"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Inventory != nil {
		return envelope.Inventory, nil
	}

	var inventory map[string]int
	if err := json.Unmarshal(data, &inventory); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrInvalidInventory, err)
	}
	if inventory == nil {
		return nil, fmt.Errorf("%w: inventory is required", engine.ErrInvalidInventory)
	}
	return inventory, nil
}

func money(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

// printPlan renders a plan as aligned text tables.
func printPlan(w io.Writer, data *crafting.OptimizationData) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Total profit:\t%s\n", money(data.Summary.TotalProfit))
	fmt.Fprintf(tw, "Sell value:\t%s\n", money(data.Summary.TotalSellValue))
	fmt.Fprintf(tw, "Total time:\t%s\n", data.Summary.TotalTimeFormatted)
	fmt.Fprintf(tw, "Rounds:\t%d\n", data.Summary.Rounds)
	fmt.Fprintln(tw)

	if len(data.ProductionSteps) == 0 {
		fmt.Fprintln(tw, "Nothing worth crafting.")
	} else {
		fmt.Fprintln(tw, "STEP\tITEM\tQTY\tVALUE\tMARGIN\tTIME\tREQUIRES")
		for _, step := range data.ProductionSteps {
			margin := "-"
			if step.ProfitMargin != nil {
				margin = fmt.Sprintf("%.2f%%", *step.ProfitMargin)
			}
			reqs := make([]string, 0, len(step.Requirements))
			for _, req := range step.Requirements {
				reqs = append(reqs, fmt.Sprintf("%s x%s", req.DisplayName, humanize.Comma(int64(req.Quantity))))
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				step.Step, step.DisplayName, humanize.Comma(int64(step.Quantity)),
				money(step.Value), margin, step.TimeFormatted, strings.Join(reqs, ", "))
		}
	}

	if len(data.SellableItems) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "SELL\tQTY\tPRICE\tVALUE")
		for _, item := range data.SellableItems {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				item.Name, humanize.Comma(int64(item.Quantity)), money(item.Price), money(item.Value))
		}
	}

	return tw.Flush()
}
