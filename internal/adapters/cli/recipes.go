package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/factorio-calculator/pkg/utils"
)

// newRecipesCommand creates the recipes command
func newRecipesCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recipes [item]",
		Aliases: []string{"catalog"},
		Short:   "List recipes, or the recipes producing an item",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item := ""
			if len(args) == 1 {
				item = args[0]
			}

			w, err := opts.writer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			return opts.withClient(cmd, func(ctx context.Context, client Client) error {
				result, err := client.ListRecipes(ctx, item)
				if err != nil {
					return err
				}
				if w.Structured() {
					return w.Write(result)
				}

				if item != "" && result.HasMultiple {
					w.Printf("%s has several recipes; the first non-excluded one is used\n\n", item)
				}

				tw := tabwriter.NewWriter(w.Out(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "Recipe\tName\tCategory\tTime\tIngredients\tResults\t")
				fmt.Fprintln(tw, "──────\t────\t────────\t────\t───────────\t───────\t")
				for _, r := range result.Recipes {
					excluded := ""
					if r.Excluded {
						excluded = "(excluded)"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%ss\t%s\t%s\t%s\n",
						r.ID, r.Name, r.Category, utils.FormatNumber(r.Time),
						formatAmounts(r.Ingredients), formatAmounts(r.Results), excluded)
				}
				return tw.Flush()
			})
		},
	}

	return cmd
}

// formatAmounts renders "2 iron-plate, 1 coal" sorted by item
func formatAmounts(amounts map[string]float64) string {
	if len(amounts) == 0 {
		return "-"
	}
	items := make([]string, 0, len(amounts))
	for item := range amounts {
		items = append(items, item)
	}
	sort.Strings(items)

	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = utils.FormatNumber(amounts[item]) + " " + item
	}
	return strings.Join(parts, ", ")
}
