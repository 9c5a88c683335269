package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/factorio-calculator/internal/application/production/services"
	"github.com/andrescamacho/factorio-calculator/pkg/utils"
)

// newCalculateCommand creates the calculate command
func newCalculateCommand(opts *Options) *cobra.Command {
	var (
		recipes []string
		totals  bool
		save    string
		colors  bool
	)

	cmd := &cobra.Command{
		Use:   "calculate [item=rate ...]",
		Short: "Build production trees for target rates",
		Long: `Build one production tree per target and print it.

Targets are item=rate pairs in items per second. Rates are arithmetic
expressions, so 1/60 means one per minute. Use --recipe to request recipe
cycles per second instead, for recipes with several results.

Examples:
  factorio-calc calculate iron-gear-wheel=4
  factorio-calc calculate automation-science-pack=1/5 logistic-science-pack=1/6 --totals
  factorio-calc calculate --recipe basic-oil-processing=2
  factorio-calc calculate electronic-circuit=10 --save "green circuits" -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := parseTargets(args, services.TargetItem)
			if err != nil {
				return err
			}
			recipeTargets, err := parseTargets(recipes, services.TargetRecipe)
			if err != nil {
				return err
			}
			targets = append(targets, recipeTargets...)
			if len(targets) == 0 {
				return fmt.Errorf("at least one item=rate target or --recipe is required")
			}

			w, err := opts.writer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			return opts.withClient(cmd, func(ctx context.Context, client Client) error {
				view, err := client.Calculate(ctx, targets, save)
				if err != nil {
					return fmt.Errorf("calculation failed: %w", err)
				}
				if w.Structured() {
					return w.Write(view)
				}

				formatter := NewTreeFormatter(colors)
				w.Printf("%s", formatter.FormatForest(view.Roots))
				for _, e := range view.Errors {
					w.Printf("✗ %s\n", e)
				}
				if totals {
					w.Println()
					w.Printf("%s", formatter.FormatTotals(view.Totals))
				}
				if view.ID != "" {
					w.Printf("\n✓ Saved calculation %s as %q\n", view.ID, save)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&recipes, "recipe", nil, "Recipe target as recipe=cycles-per-second (repeatable)")
	cmd.Flags().BoolVar(&totals, "totals", false, "Print item and machine totals after the trees")
	cmd.Flags().StringVar(&save, "save", "", "Save the calculation under this name")
	cmd.Flags().BoolVar(&colors, "color", false, "Color raw, fuel and failed nodes")

	return cmd
}

// parseTargets reads id=expression pairs
func parseTargets(args []string, kind services.TargetKind) ([]services.Target, error) {
	targets := make([]services.Target, 0, len(args))
	for _, arg := range args {
		id, expression, ok := strings.Cut(arg, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid target %q: expected %s=rate", arg, kind)
		}

		rate, err := utils.EvaluateExpression(expression)
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", id, err)
		}
		if rate < 0 {
			return nil, fmt.Errorf("invalid rate for %s: %s is negative", id, utils.FormatNumber(rate))
		}
		targets = append(targets, services.Target{Kind: kind, ID: id, Rate: rate})
	}
	return targets, nil
}
