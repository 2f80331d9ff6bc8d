package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Generation contains settings for the natural-language command generation
// pipeline.
type Generation struct {
	// DefaultProvider selects the backend CLI when --provider is not given.
	DefaultProvider string `toml:"default_provider"`
	// AutoConfirmSafe executes low-danger commands without prompting.
	AutoConfirmSafe bool `toml:"auto_confirm_safe"`
	// HistoryContext appends relevant past commands to the generation context.
	HistoryContext bool `toml:"history_context"`
	// HistoryContextLimit caps how many past commands are appended.
	HistoryContextLimit int `toml:"history_context_limit"`
}

// Cache contains response cache tuning.
type Cache struct {
	TTLDays    int `toml:"ttl_days"`
	MaxEntries int `toml:"max_entries"`
}

// History contains command history persistence settings.
type History struct {
	Enabled    bool `toml:"enabled"`
	MaxEntries int  `toml:"max_entries"`
}

// Executor contains batch execution settings.
type Executor struct {
	MaxParallelJobs int `toml:"max_parallel_jobs"`
}

// Logging contains log output settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Paths contains file and socket locations. Empty values are derived from
// BaseDir during normalization.
type Paths struct {
	BaseDir    string `toml:"base_dir"`
	CacheFile  string `toml:"cache_file"`
	HistoryDB  string `toml:"history_db"`
	SocketPath string `toml:"socket_path"`
	PIDFile    string `toml:"pid_file"`
	LogDir     string `toml:"log_dir"`
}

// Config is the top-level askshell configuration.
type Config struct {
	Generation Generation `toml:"generation"`
	Cache      Cache      `toml:"cache"`
	History    History    `toml:"history"`
	Executor   Executor   `toml:"executor"`
	Logging    Logging    `toml:"logging"`
	Paths      Paths      `toml:"paths"`
}

// Default returns the built-in configuration. Paths are left empty and
// resolved against the user's home directory by normalize.
func Default() Config {
	return Config{
		Generation: Generation{
			DefaultProvider:     "gemini",
			AutoConfirmSafe:     false,
			HistoryContext:      true,
			HistoryContextLimit: 5,
		},
		Cache: Cache{
			TTLDays:    7,
			MaxEntries: 1000,
		},
		History: History{
			Enabled:    true,
			MaxEntries: 100,
		},
		Executor: Executor{
			MaxParallelJobs: 4,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns the canonical config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".askshell", "config.toml"), nil
}

// Load reads the configuration from path, or from the default location when
// path is empty. A missing file yields the defaults rather than an error.
func Load(path string) (*Config, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		resolved = defaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(resolved)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", resolved, err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", resolved, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write serializes the configuration to path, creating parent directories.
func (c *Config) Write(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// EnsureDirectories creates the base and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.BaseDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// CacheTTL returns the configured cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLDays) * 24 * time.Hour
}

func (c *Config) normalize() error {
	base := strings.TrimSpace(c.Paths.BaseDir)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		base = filepath.Join(home, ".askshell")
	}
	c.Paths.BaseDir = base

	defaultPath := func(current *string, name string) {
		if strings.TrimSpace(*current) == "" {
			*current = filepath.Join(base, name)
		}
	}
	defaultPath(&c.Paths.CacheFile, "cache.json")
	defaultPath(&c.Paths.HistoryDB, "history.db")
	defaultPath(&c.Paths.SocketPath, "daemon.sock")
	defaultPath(&c.Paths.PIDFile, "daemon.pid")
	defaultPath(&c.Paths.LogDir, "logs")

	c.Generation.DefaultProvider = strings.ToLower(strings.TrimSpace(c.Generation.DefaultProvider))
	return nil
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	if c.Generation.DefaultProvider == "" {
		return errors.New("config: generation.default_provider is required")
	}
	if c.Cache.TTLDays <= 0 {
		return fmt.Errorf("config: cache.ttl_days must be positive, got %d", c.Cache.TTLDays)
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("config: cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
	}
	if c.Executor.MaxParallelJobs <= 0 {
		return fmt.Errorf("config: executor.max_parallel_jobs must be positive, got %d", c.Executor.MaxParallelJobs)
	}
	if c.History.Enabled && c.History.MaxEntries <= 0 {
		return fmt.Errorf("config: history.max_entries must be positive, got %d", c.History.MaxEntries)
	}
	if c.Generation.HistoryContextLimit < 0 {
		return fmt.Errorf("config: generation.history_context_limit must not be negative, got %d", c.Generation.HistoryContextLimit)
	}
	return nil
}
