package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newExcludeCommand creates the exclude command, or include when excluded is false
func newExcludeCommand(opts *Options, excluded bool) *cobra.Command {
	use, short, verb := "exclude", "Stop choosing a recipe automatically", "excluded"
	if !excluded {
		use, short, verb = "include", "Allow an excluded recipe again", "included"
	}

	return &cobra.Command{
		Use:   use + " <recipe>",
		Short: short,
		Long: short + `.

An item made by several recipes uses the first one that is not excluded.
Recipes explicitly requested with calculate --recipe are always used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.writer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			return opts.withClient(cmd, func(ctx context.Context, client Client) error {
				result, err := client.Exclude(ctx, args[0], excluded)
				if err != nil {
					return fmt.Errorf("failed to update %s: %w", args[0], err)
				}
				if w.Structured() {
					return w.Write(result)
				}

				w.Printf("✓ %s %s\n", result.RecipeID, verb)
				if len(result.Excluded) > 0 {
					w.Printf("  Excluded recipes: %s\n", strings.Join(result.Excluded, ", "))
				}
				return nil
			})
		},
	}
}
