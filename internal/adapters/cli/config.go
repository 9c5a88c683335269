package cli

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/factorio-calculator/internal/infrastructure/config"
	"github.com/andrescamacho/factorio-calculator/pkg/utils"
)

// newConfigCommand creates the config command with subcommands
func newConfigCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage factorio-calc configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (FC_* prefix)
2. Config file (config.yaml)
3. Default values

User preferences (default fuel, excluded recipes, category defaults) are
stored in ~/.factorio-calc/config.json and applied when the calculator starts.

Examples:
  factorio-calc config show
  factorio-calc config set-fuel solid-fuel
  factorio-calc config clear`,
	}

	cmd.AddCommand(newConfigShowCommand(opts))
	cmd.AddCommand(newConfigSetFuelCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.writer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				w.Printf("Warning: %v\nUsing default configuration.\n\n", err)
				cfg = config.LoadConfigOrDefault("")
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				w.Printf("Warning: failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			if w.Structured() {
				return w.Write(map[string]interface{}{
					"user":   userCfg,
					"system": cfg,
				})
			}
			displayConfig(w, cfg, userCfg, userConfigHandler.GetConfigPath())
			return nil
		},
	}
}

func displayConfig(w *Writer, cfg *config.Config, userCfg *config.UserConfig, userPath string) {
	w.Println("factorio-calc Configuration")
	w.Println("===========================")

	w.Println("User Preferences:")
	w.Printf("  Config file:      %s\n", userPath)
	w.Printf("  Default fuel:     %s\n", orNotSet(userCfg.DefaultFuel))
	w.Printf("  Excluded:         %s\n", orNotSet(strings.Join(userCfg.ExcludedRecipes, ", ")))
	categories := make([]string, 0, len(userCfg.Defaults))
	for category := range userCfg.Defaults {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		w.Printf("  Default %-9s %s\n", category+":", userCfg.Defaults[category])
	}

	w.Println("\nCalculator:")
	w.Printf("  Dataset:          %s\n", orValue(cfg.Calculator.Dataset, "(built-in)"))
	w.Printf("  Default fuel:     %s\n", cfg.Calculator.DefaultFuel)
	w.Printf("  Blacklist:        %s\n", orNotSet(cfg.Calculator.BlacklistFile))

	w.Println("\nDatabase:")
	w.Printf("  Type:             %s\n", cfg.Database.Type)
	switch {
	case cfg.Database.Type == "sqlite":
		w.Printf("  Path:             %s\n", cfg.Database.Path)
	case cfg.Database.URL != "":
		w.Printf("  URL:              %s\n", maskPassword(cfg.Database.URL))
	default:
		w.Printf("  Host:             %s:%d\n", cfg.Database.Host, cfg.Database.Port)
		w.Printf("  Database:         %s\n", cfg.Database.Name)
		w.Printf("  User:             %s\n", cfg.Database.User)
	}

	w.Println("\nDaemon:")
	w.Printf("  Socket Path:      %s\n", cfg.Daemon.SocketPath)
	w.Printf("  PID File:         %s\n", cfg.Daemon.PIDFile)
	if cfg.Server.Enabled {
		w.Printf("  HTTP API:         %s (%s req/s, burst %d)\n", cfg.Server.Address,
			utils.FormatNumber(cfg.Server.RateLimit.Requests), cfg.Server.RateLimit.Burst)
	} else {
		w.Printf("  HTTP API:         disabled\n")
	}
	if cfg.Metrics.Enabled {
		w.Printf("  Metrics:          %s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	}

	w.Println("\nLogging:")
	w.Printf("  Level:            %s\n", cfg.Logging.Level)
	w.Printf("  Format:           %s\n", cfg.Logging.Format)
	w.Printf("  Output:           %s\n", cfg.Logging.Output)
}

// newConfigSetFuelCommand creates the config set-fuel subcommand
func newConfigSetFuelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-fuel <item>",
		Short: "Set the fuel burner machines use by default",
		Long: `Set the fuel burner machines use unless their configuration names one.

The fuel must be an item with a fuel value in the loaded data; otherwise it
is ignored with a warning when the calculator starts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultFuel(args[0]); err != nil {
				return fmt.Errorf("failed to set default fuel: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Default fuel set to %s\n", args[0])
			fmt.Fprintln(cmd.OutOrStdout(), "  Restart the daemon for it to take effect there.")
			return nil
		},
	}
}

// newConfigClearCommand creates the config clear subcommand
func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all user preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.Clear(); err != nil {
				return fmt.Errorf("failed to clear user config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ User preferences cleared")
			return nil
		},
	}
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

func orNotSet(v string) string {
	return orValue(v, "(not set)")
}

func orValue(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
