package testsupport

import (
	"path/filepath"
	"testing"

	"askshell/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config rooted in a unique temp directory per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.BaseDir = base
	cfg.Paths.CacheFile = filepath.Join(base, "cache.json")
	cfg.Paths.HistoryDB = filepath.Join(base, "history.db")
	cfg.Paths.SocketPath = filepath.Join(base, "daemon.sock")
	cfg.Paths.PIDFile = filepath.Join(base, "daemon.pid")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure config directories: %v", err)
	}
	return &cfg
}

// WithProvider sets the default provider on the test config.
func WithProvider(name string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Generation.DefaultProvider = name
	}
}

// WithCacheLimits overrides cache TTL and capacity on the test config.
func WithCacheLimits(ttlDays, maxEntries int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Cache.TTLDays = ttlDays
		cfg.Cache.MaxEntries = maxEntries
	}
}
