package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// newDefaultsCommand creates the defaults command with subcommands
func newDefaultsCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Show or change the machine used per recipe category",
		Long: `Every recipe category has a default machine configuration, written as
machine[&fuel]|module1+module2. Categories get one automatically the first
time they are used; set replaces it for later calculations.

Examples:
  factorio-calc defaults list
  factorio-calc defaults set crafting "assembling-machine-2|speed-module+speed-module"
  factorio-calc defaults set smelting "stone-furnace&wood|"`,
	}

	cmd.AddCommand(newDefaultsListCommand(opts))
	cmd.AddCommand(newDefaultsSetCommand(opts))

	return cmd
}

func newDefaultsListCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the default configuration of every category seen so far",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.writer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			return opts.withClient(cmd, func(ctx context.Context, client Client) error {
				result, err := client.ListDefaults(ctx)
				if err != nil {
					return err
				}
				if w.Structured() {
					return w.Write(result)
				}

				w.Printf("Default fuel: %s\n\n", result.DefaultFuel)
				if len(result.Defaults) == 0 {
					w.Println("No category defaults yet")
					return nil
				}
				tw := tabwriter.NewWriter(w.Out(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "Category\tConfiguration")
				fmt.Fprintln(tw, "────────\t─────────────")
				for _, d := range result.Defaults {
					fmt.Fprintf(tw, "%s\t%s\n", d.Category, d.Configuration)
				}
				return tw.Flush()
			})
		},
	}
}

func newDefaultsSetCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <configuration>",
		Short: "Replace a category's default configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.writer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			return opts.withClient(cmd, func(ctx context.Context, client Client) error {
				summary, err := client.SetDefault(ctx, args[0], args[1])
				if err != nil {
					return fmt.Errorf("failed to set default for %s: %w", args[0], err)
				}
				if w.Structured() {
					return w.Write(summary)
				}
				w.Printf("✓ %s now uses %s\n", summary.Category, summary.Configuration)
				return nil
			})
		},
	}
}
