package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	grpcadapter "github.com/andrescamacho/factorio-calculator/internal/adapters/grpc"
	"github.com/andrescamacho/factorio-calculator/internal/infrastructure/pidfile"
)

// newDaemonCommand creates the daemon command with subcommands
func newDaemonCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Inspect or stop the factorio-daemon",
	}

	cmd.AddCommand(newDaemonStatusCommand(opts))
	cmd.AddCommand(newDaemonStopCommand(opts))

	return cmd
}

func newDaemonStatusCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the daemon is running and answering",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			pid, running := pidfile.New(cfg.Daemon.PIDFile).Running()
			if !running {
				fmt.Fprintln(out, "✗ Daemon is not running")
				fmt.Fprintln(out, "  Commands calculate in-process until it is started.")
				return nil
			}

			client, err := grpcadapter.NewCalculatorClientGRPC(cfg.Daemon.SocketPath)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(opts.context(cmd), 5*time.Second)
			defer cancel()

			defaults, err := client.ListDefaults(ctx)
			if err != nil {
				return fmt.Errorf("daemon (PID %d) is not answering on %s: %w", pid, cfg.Daemon.SocketPath, err)
			}

			fmt.Fprintln(out, "✓ Daemon is healthy")
			fmt.Fprintf(out, "  PID:               %d\n", pid)
			fmt.Fprintf(out, "  Socket:            %s\n", cfg.Daemon.SocketPath)
			fmt.Fprintf(out, "  Default fuel:      %s\n", defaults.DefaultFuel)
			fmt.Fprintf(out, "  Category defaults: %d\n", len(defaults.Defaults))
			return nil
		},
	}
}

func newDaemonStopCommand(opts *Options) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			pf := pidfile.New(cfg.Daemon.PIDFile)
			pid, running := pf.Running()
			if !running {
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
				return nil
			}
			if err := pf.KillExisting(timeout); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Daemon (PID %d) stopped\n", pid)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "How long to wait for the daemon to exit")

	return cmd
}
