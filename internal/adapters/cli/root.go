package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/infrastructure/config"
	"github.com/andrescamacho/factorio-calculator/internal/infrastructure/logging"
)

// Options holds the global flags shared by every command
type Options struct {
	ConfigPath string
	SocketPath string
	Output     string
	Verbose    bool

	open ClientOpener
}

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(nil)
}

// NewRootCommandWith creates the root command with a custom client opener;
// nil uses the daemon when it is running and an in-process engine otherwise
func NewRootCommandWith(open ClientOpener) *cobra.Command {
	opts := &Options{open: open}
	if opts.open == nil {
		opts.open = openClient
	}

	rootCmd := &cobra.Command{
		Use:   "factorio-calc",
		Short: "Factorio production calculator",
		Long: `factorio-calc computes the machines, raw resources and energy needed to
produce items at a target rate.

Commands talk to the factorio-daemon over its Unix socket when it is running,
and run the calculator in-process otherwise.

Examples:
  factorio-calc calculate iron-gear-wheel=4
  factorio-calc calculate electronic-circuit=1/60*100 --totals
  factorio-calc calculate --recipe basic-oil-processing=1 -o yaml
  factorio-calc recipes petroleum-gas
  factorio-calc defaults set smelting "steel-furnace&solid-fuel|"
  factorio-calc exclude coal-liquefaction`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "",
		"Path to config.yaml (default: ., ./configs, ~/.factorio-calc)")
	rootCmd.PersistentFlags().StringVar(&opts.SocketPath, "socket", os.Getenv("FC_DAEMON_SOCKET_PATH"),
		"Path to the daemon Unix socket (default from config)")
	rootCmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", FormatText,
		"Output format: text, yaml or json")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(newCalculateCommand(opts))
	rootCmd.AddCommand(newRecipesCommand(opts))
	rootCmd.AddCommand(newDefaultsCommand(opts))
	rootCmd.AddCommand(newExcludeCommand(opts, true))
	rootCmd.AddCommand(newExcludeCommand(opts, false))
	rootCmd.AddCommand(newHistoryCommand(opts))
	rootCmd.AddCommand(newConfigCommand(opts))
	rootCmd.AddCommand(newDaemonCommand(opts))

	return rootCmd
}

// loadConfig loads the system config named by --config
func (o *Options) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.SocketPath != "" {
		cfg.Daemon.SocketPath = o.SocketPath
	}
	return cfg, nil
}

// context returns a command context carrying a stderr logger
func (o *Options) context(cmd *cobra.Command) context.Context {
	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.New(cmd.ErrOrStderr(), config.LoggingConfig{Level: level, Format: "text"})
	return common.WithLogger(ctx, common.NewSlogLogger(logger))
}

// withClient opens a client for the duration of fn
func (o *Options) withClient(cmd *cobra.Command, fn func(ctx context.Context, client Client) error) error {
	ctx := o.context(cmd)
	client, err := o.open(ctx, o)
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(ctx, client)
}

// writer returns the output writer for --output
func (o *Options) writer(out io.Writer) (*Writer, error) {
	return NewWriter(o.Output, out)
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
