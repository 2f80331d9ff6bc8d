package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"askshell/internal/executor"
	"askshell/internal/history"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		providerFlag string
		dryRun       bool
		assumeYes    bool
		noCache      bool
	)

	cmd := &cobra.Command{
		Use:   "generate \"<natural language request>\"",
		Short: "Generate a shell command and optionally run it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				return fmt.Errorf("prompt is empty")
			}

			result, err := generate(cmd.Context(), cfg, prompt, providerFlag, !noCache)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Command: %s\n", result.Command)
			if result.FromCache {
				fmt.Fprintln(out, "(from cache)")
			}

			if err := executor.Validate(result.Command); err != nil {
				recordHistory(cmd.Context(), cfg, history.Entry{
					Prompt:   prompt,
					Command:  result.Command,
					Provider: result.Provider,
				})
				return err
			}

			level := executor.Classify(result.Command)
			confirmed, err := confirmExecution(cmd, level, assumeYes || dryRun, cfg.Generation.AutoConfirmSafe)
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(out, "Aborted")
				recordHistory(cmd.Context(), cfg, history.Entry{
					Prompt:   prompt,
					Command:  result.Command,
					Provider: result.Provider,
				})
				return nil
			}

			runner := executor.NewRunner(nil, dryRun)
			res := runner.Run(cmd.Context(), result.Command)
			recordHistory(cmd.Context(), cfg, history.Entry{
				Prompt:   prompt,
				Command:  result.Command,
				Provider: result.Provider,
				Executed: !dryRun,
			})
			if res.Err != nil {
				return res.Err
			}
			if res.Stdout != "" {
				fmt.Fprint(out, res.Stdout)
			}
			if res.Stderr != "" {
				fmt.Fprint(cmd.ErrOrStderr(), res.Stderr)
			}
			if res.ExitCode != 0 {
				return fmt.Errorf("command exited with code %d", res.ExitCode)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerFlag, "provider", "p", "", "AI provider to use (gemini, claude, codex)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the generated command without running it")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Run without asking for confirmation")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the response cache")
	return cmd
}
