package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/pkg/utils"
)

// newHistoryCommand creates the history command
func newHistoryCommand(opts *Options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [calculation-id]",
		Short: "List saved calculations, or show one",
		Long: `Calculations run with calculate --save are kept in the database.

Examples:
  factorio-calc history
  factorio-calc history --limit 5
  factorio-calc history calc-3f2a9c1e`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			w, err := opts.writer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			return opts.withClient(cmd, func(ctx context.Context, client Client) error {
				if len(args) == 1 {
					record, err := client.GetCalculation(ctx, args[0])
					if err != nil {
						return err
					}
					if w.Structured() {
						return w.Write(record)
					}
					displayCalculation(w, record)
					return nil
				}

				records, err := client.ListCalculations(ctx, limit)
				if err != nil {
					return fmt.Errorf("failed to list calculations: %w", err)
				}
				if w.Structured() {
					return w.Write(records)
				}
				if len(records) == 0 {
					w.Println("No saved calculations")
					return nil
				}

				tw := tabwriter.NewWriter(w.Out(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tName\tCreated\tTargets")
				fmt.Fprintln(tw, "──\t────\t───────\t───────")
				for _, r := range records {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
						r.ID, r.Name, r.CreatedAt.Format("2006-01-02 15:04:05"), formatRecordedTargets(r.Targets))
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of calculations to list")

	return cmd
}

func displayCalculation(w *Writer, r *production.CalculationRecord) {
	w.Printf("Calculation %s\n", r.ID)
	w.Printf("  Name:     %s\n", r.Name)
	w.Printf("  Created:  %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	w.Printf("  Targets:  %s\n", formatRecordedTargets(r.Targets))
	if r.EnergyDraw > 0 {
		w.Printf("  Power:    %s\n", utils.FormatEnergy(r.EnergyDraw))
	}

	w.Println("\nItems:")
	tw := tabwriter.NewWriter(w.Out(), 0, 0, 2, ' ', 0)
	for _, item := range r.Items {
		machines := utils.FormatNumber(item.Machines) + " machines"
		if item.Raw {
			machines = "raw"
		}
		fmt.Fprintf(tw, "  %s\t%s/s\t%s\n", item.Item, utils.FormatNumber(item.Rate), machines)
	}
	_ = tw.Flush()
}

func formatRecordedTargets(targets []production.RecordedTarget) string {
	parts := make([]string, len(targets))
	for i, t := range targets {
		parts[i] = fmt.Sprintf("%s=%s", t.ID, utils.FormatNumber(t.Rate))
		if t.Kind == "recipe" {
			parts[i] += " (recipe)"
		}
	}
	return strings.Join(parts, ", ")
}
