package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"askshell/internal/executor"
	"askshell/internal/planner"
	"askshell/internal/provider"
	"askshell/internal/testsupport"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigInitAndShow(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := executeCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("init output missing path: %q", out)
	}

	if _, err := executeCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite must fail")
	}
	if _, err := executeCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init --overwrite: %v", err)
	}

	out, err = executeCommand(t, "--config", target, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "Default provider") || !strings.Contains(out, "gemini") {
		t.Fatalf("show output unexpected: %q", out)
	}
}

func TestCacheStatsAndClear(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := executeCommand(t, "--config", cfgPath, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	if !strings.Contains(out, "Entries") {
		t.Fatalf("stats output unexpected: %q", out)
	}

	out, err = executeCommand(t, "--config", cfgPath, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "cleared") {
		t.Fatalf("clear output unexpected: %q", out)
	}
}

func TestGenerateDryRunWithStub(t *testing.T) {
	provider.ResetInstallationCache()
	testsupport.StubProvider(t, "gemini", "echo hello")
	cfgPath := writeTestConfig(t)

	out, err := executeCommand(t, "--config", cfgPath, "generate", "say hello", "--dry-run")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "Command: echo hello") {
		t.Fatalf("generate output unexpected: %q", out)
	}
}

func TestGenerateBlocksDestructiveCommand(t *testing.T) {
	provider.ResetInstallationCache()
	testsupport.StubProvider(t, "gemini", "rm -rf /")
	cfgPath := writeTestConfig(t)

	if _, err := executeCommand(t, "--config", cfgPath, "generate", "wipe everything", "--yes", "--no-cache"); err == nil {
		t.Fatal("destructive command must be rejected")
	}
}

func TestBatchRejectsMissingDirectory(t *testing.T) {
	provider.ResetInstallationCache()
	testsupport.StubProvider(t, "gemini", "git status")
	cfgPath := writeTestConfig(t)

	missing := filepath.Join(t.TempDir(), "nope")
	if _, err := executeCommand(t, "--config", cfgPath, "batch", "check status", missing, "--yes"); err == nil {
		t.Fatal("missing directory must be rejected")
	}
}

func TestBatchDryRunAcrossDirectories(t *testing.T) {
	provider.ResetInstallationCache()
	testsupport.StubProvider(t, "claude", "git status")
	cfgPath := writeTestConfig(t)

	dirA := t.TempDir()
	dirB := t.TempDir()
	out, err := executeCommand(t, "--config", cfgPath,
		"batch", "check status", dirA, dirB, "--provider", "claude", "--dry-run", "--no-cache")
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if !strings.Contains(out, "Success rate: 100.0%") {
		t.Fatalf("batch output unexpected: %q", out)
	}
	if !strings.Contains(out, filepath.Base(dirA)) {
		t.Fatalf("table missing directory: %q", out)
	}
}

func TestDaemonStatusWithoutDaemon(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := executeCommand(t, "--config", cfgPath, "daemon", "status")
	if err != nil {
		t.Fatalf("daemon status: %v", err)
	}
	if !strings.Contains(out, "not running") {
		t.Fatalf("status output unexpected: %q", out)
	}
}

func TestHistoryEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := executeCommand(t, "--config", cfgPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No history yet") {
		t.Fatalf("history output unexpected: %q", out)
	}
}

func TestRenderBatchTable(t *testing.T) {
	result := executor.BatchResult{
		Results: []executor.TaskResult{
			{
				Task:   planner.Task{ID: 0, Command: "true", WorkingDir: "/repos/alpha"},
				Result: executor.Result{Command: "true", Duration: 120 * time.Millisecond},
			},
			{
				Task:   planner.Task{ID: 1, Command: "false", WorkingDir: "/repos/beta"},
				Result: executor.Result{Command: "false", ExitCode: 1, Stderr: "boom"},
			},
		},
	}
	rendered := renderBatchTable(result)
	for _, fragment := range []string{"alpha", "beta", "Success", "Failed", "boom"} {
		if !strings.Contains(rendered, fragment) {
			t.Fatalf("table missing %q:\n%s", fragment, rendered)
		}
	}
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	path := filepath.Join(cfg.Paths.BaseDir, "config.toml")
	if err := cfg.Write(path); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
