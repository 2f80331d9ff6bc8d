package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"askshell/internal/logging"
	"askshell/internal/services"
)

// Runner executes a single shell command through the system shell.
type Runner struct {
	logger *slog.Logger
	dryRun bool
}

// NewRunner constructs a runner. A nil logger disables logging.
func NewRunner(logger *slog.Logger, dryRun bool) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{logger: logging.WithComponent(logger, "executor"), dryRun: dryRun}
}

// Result captures the outcome of one command invocation.
type Result struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	Err      error
}

// Succeeded reports whether the command ran and exited zero.
func (r Result) Succeeded() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Run invokes the command via `bash -c`, capturing output. In dry-run mode
// the command is logged and reported successful without being executed.
func (r *Runner) Run(ctx context.Context, command string) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{Err: services.Wrap(services.ErrExecution, "executor", "run", "empty command", nil)}
	}

	if r.dryRun {
		r.logger.Info(
			"dry run",
			logging.String(logging.FieldEventType, "command_dry_run"),
			logging.String("command", command),
		)
		return Result{Command: command}
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Command:  command,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	switch {
	case err == nil:
	case ctx.Err() != nil:
		result.ExitCode = -1
		result.Err = services.Wrap(services.ErrExecution, "executor", "run", "command interrupted", ctx.Err())
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			result.Err = services.Wrap(services.ErrExecution, "executor", "run", "command start failed", err)
		}
	}

	r.logger.Debug(
		"command finished",
		logging.String(logging.FieldEventType, "command_complete"),
		logging.String("command", command),
		logging.Int("exit_code", result.ExitCode),
		logging.Duration("duration", result.Duration),
	)
	return result
}

// WithDirectory prefixes command with a change of working directory so the
// whole pipeline runs from dir within a single shell.
func WithDirectory(dir, command string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return command
	}
	return fmt.Sprintf("cd %s && %s", dir, command)
}
