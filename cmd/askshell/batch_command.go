package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"askshell/internal/executor"
	"askshell/internal/history"
	"askshell/internal/planner"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		providerFlag string
		dryRun       bool
		assumeYes    bool
		noCache      bool
		sequential   bool
	)

	cmd := &cobra.Command{
		Use:   "batch \"<natural language request>\" <dir> [dir...]",
		Short: "Generate one command and run it across multiple directories",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			prompt := strings.TrimSpace(args[0])
			if prompt == "" {
				return fmt.Errorf("prompt is empty")
			}
			dirs, err := resolveDirectories(args[1:])
			if err != nil {
				return err
			}

			result, err := generate(cmd.Context(), cfg, prompt, providerFlag, !noCache)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Command: %s\n", result.Command)
			fmt.Fprintf(out, "Targets: %d directories\n", len(dirs))

			if err := executor.Validate(result.Command); err != nil {
				return err
			}
			level := executor.Classify(result.Command)
			confirmed, err := confirmExecution(cmd, level, assumeYes || dryRun, cfg.Generation.AutoConfirmSafe)
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(out, "Aborted")
				return nil
			}

			plan := planner.PerDirectory(dirs, result.Command)
			if sequential {
				plan.DisableParallelization()
			}
			runner := executor.NewRunner(nil, dryRun)
			batch := executor.NewBatch(runner, nil, cfg.Executor.MaxParallelJobs)
			batchResult, err := batch.Execute(cmd.Context(), plan)
			if err != nil {
				return err
			}

			recordHistory(cmd.Context(), cfg, history.Entry{
				Prompt:   prompt,
				Command:  result.Command,
				Provider: result.Provider,
				Executed: !dryRun,
			})

			fmt.Fprintln(out, renderBatchTable(batchResult))
			fmt.Fprintf(out, "Success rate: %.1f%% (%s)\n", batchResult.SuccessRate(), formatDuration(batchResult.Duration))
			if !batchResult.AllSucceeded() {
				return fmt.Errorf("%d of %d tasks failed", batchResult.FailureCount(), len(batchResult.Results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerFlag, "provider", "p", "", "AI provider to use (gemini, claude, codex)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the generated command without running it")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Run without asking for confirmation")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the response cache")
	cmd.Flags().BoolVar(&sequential, "sequential", false, "Run directories one at a time in order")
	return cmd
}

func resolveDirectories(args []string) ([]string, error) {
	var dirs []string
	for _, arg := range args {
		path, err := filepath.Abs(strings.TrimSpace(arg))
		if err != nil {
			return nil, fmt.Errorf("resolve directory %q: %w", arg, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat directory %q: %w", arg, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%q is not a directory", arg)
		}
		dirs = append(dirs, path)
	}
	return dirs, nil
}

var statusCaser = cases.Title(language.English)

func renderBatchTable(result executor.BatchResult) string {
	rows := make([][]string, 0, len(result.Results))
	for _, r := range result.Results {
		status := "failed"
		if r.Result.Succeeded() {
			status = "success"
		}
		detail := ""
		if r.Result.Err != nil {
			detail = r.Result.Err.Error()
		} else if !r.Result.Succeeded() {
			detail = strings.TrimSpace(r.Result.Stderr)
		}
		rows = append(rows, []string{
			filepath.Base(r.Task.WorkingDir),
			statusCaser.String(status),
			fmt.Sprintf("%d", r.Result.ExitCode),
			formatDuration(r.Result.Duration),
			detail,
		})
	}
	return renderTable(
		[]string{"Directory", "Status", "Exit", "Duration", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}
