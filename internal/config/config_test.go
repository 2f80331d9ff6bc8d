package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generation.DefaultProvider != "gemini" {
		t.Errorf("DefaultProvider = %q, want gemini", cfg.Generation.DefaultProvider)
	}
	if cfg.Cache.TTLDays != 7 || cfg.Cache.MaxEntries != 1000 {
		t.Errorf("cache defaults wrong: %+v", cfg.Cache)
	}
	if cfg.Executor.MaxParallelJobs != 4 {
		t.Errorf("MaxParallelJobs = %d, want 4", cfg.Executor.MaxParallelJobs)
	}
}

func TestLoadParsesFileAndDerivesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[generation]
default_provider = "Claude"

[cache]
ttl_days = 1
max_entries = 10

[paths]
base_dir = "` + dir + `"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generation.DefaultProvider != "claude" {
		t.Errorf("provider not lowercased: %q", cfg.Generation.DefaultProvider)
	}
	if cfg.CacheTTL() != 24*time.Hour {
		t.Errorf("CacheTTL = %v, want 24h", cfg.CacheTTL())
	}
	if cfg.Paths.CacheFile != filepath.Join(dir, "cache.json") {
		t.Errorf("CacheFile = %q", cfg.Paths.CacheFile)
	}
	if cfg.Paths.SocketPath != filepath.Join(dir, "daemon.sock") {
		t.Errorf("SocketPath = %q", cfg.Paths.SocketPath)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Cache.TTLDays = 0
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "ttl_days") {
		t.Errorf("expected ttl_days error, got %v", err)
	}

	cfg = Default()
	cfg.Executor.MaxParallelJobs = -1
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "max_parallel_jobs") {
		t.Errorf("expected max_parallel_jobs error, got %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.toml")

	cfg := Default()
	cfg.Generation.DefaultProvider = "codex"
	cfg.Paths.BaseDir = dir
	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Generation.DefaultProvider != "codex" {
		t.Errorf("round-trip provider = %q, want codex", loaded.Generation.DefaultProvider)
	}
}
