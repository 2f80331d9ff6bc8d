package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"askshell/internal/daemon"
	"askshell/internal/daemonctl"
	"askshell/internal/logging"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the resident generation daemon",
	}
	daemonCmd.AddCommand(newDaemonStartCommand(ctx))
	daemonCmd.AddCommand(newDaemonStopCommand(ctx))
	daemonCmd.AddCommand(newDaemonStatusCommand(ctx))
	daemonCmd.AddCommand(newDaemonRunCommand(ctx))
	return daemonCmd
}

func newDaemonStartCommand(ctx *commandContext) *cobra.Command {
	var waitTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the daemon in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			executable, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}

			launched, err := daemonctl.EnsureStarted(cmd.Context(), cfg, executable, ctx.configPath(), waitTimeout)
			if err != nil {
				return err
			}
			if launched {
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon started")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon already running")
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&waitTimeout, "wait", 10*time.Second, "How long to wait for the daemon to become ready")
	return cmd
}

func newDaemonStopCommand(ctx *commandContext) *cobra.Command {
	var gracePeriod time.Duration

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := daemonctl.Stop(cmd.Context(), cfg, gracePeriod); err != nil {
				if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
					fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
					return nil
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopped")
			return nil
		},
	}
	cmd.Flags().DurationVar(&gracePeriod, "grace", 10*time.Second, "How long to wait for the daemon to exit")
	return cmd
}

func newDaemonStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			status, err := daemonctl.Query(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !status.Running {
				fmt.Fprintln(out, "Daemon is not running")
				return nil
			}
			rows := [][]string{
				{"Running", yesNo(status.Running)},
				{"PID", fmt.Sprintf("%d", status.PID)},
				{"Uptime", formatUptime(status.UptimeSeconds)},
				{"Resident providers", fmt.Sprintf("%d", status.SessionCount)},
				{"Socket", cfg.Paths.SocketPath},
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				OutputPaths: []string{
					"stdout",
					filepath.Join(cfg.Paths.LogDir, "daemon.log"),
				},
			})
			if err != nil {
				return err
			}

			d, err := daemon.New(cfg, logger)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return d.Run(runCtx)
		},
	}
}
