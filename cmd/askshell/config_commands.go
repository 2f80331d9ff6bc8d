package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"askshell/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a default configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			cfg := config.Default()
			if err := cfg.Write(target); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rows := [][]string{
				{"Default provider", cfg.Generation.DefaultProvider},
				{"Auto-confirm safe commands", yesNo(cfg.Generation.AutoConfirmSafe)},
				{"History context", yesNo(cfg.Generation.HistoryContext)},
				{"Cache TTL", cfg.CacheTTL().String()},
				{"Cache max entries", fmt.Sprintf("%d", cfg.Cache.MaxEntries)},
				{"History enabled", yesNo(cfg.History.Enabled)},
				{"History max entries", fmt.Sprintf("%d", cfg.History.MaxEntries)},
				{"Max parallel jobs", fmt.Sprintf("%d", cfg.Executor.MaxParallelJobs)},
				{"Cache file", cfg.Paths.CacheFile},
				{"History database", cfg.Paths.HistoryDB},
				{"Daemon socket", cfg.Paths.SocketPath},
				{"Log directory", cfg.Paths.LogDir},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Setting", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
