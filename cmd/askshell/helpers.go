package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"askshell/internal/executor"
)

// confirmExecution decides whether a generated command may run. Auto-confirm
// handles safe commands; everything else needs an interactive yes or --yes.
func confirmExecution(cmd *cobra.Command, level executor.DangerLevel, assumeYes, autoConfirmSafe bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if !executor.RequiresConfirmation(level, autoConfirmSafe) {
		return true, nil
	}

	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return false, fmt.Errorf("confirmation required for %s-risk command in non-interactive mode (use --yes to override)", level)
	}

	out := cmd.OutOrStdout()
	if level != executor.DangerLow {
		fmt.Fprintf(out, "Warning: command classified as %s risk\n", level)
	}
	fmt.Fprintf(out, "Run this command? [y/N] ")

	reader := bufio.NewReader(cmd.InOrStdin())
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false, nil
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

func formatUptime(seconds uint64) string {
	return (time.Duration(seconds) * time.Second).String()
}
