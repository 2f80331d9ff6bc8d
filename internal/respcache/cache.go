package respcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"askshell/internal/logging"
)

// Options configures cache construction.
type Options struct {
	// Path is the snapshot file location. Empty disables persistence.
	Path       string
	TTL        time.Duration
	MaxEntries int
}

// Stats summarizes cache state for the stats command and Ping responses.
type Stats struct {
	Entries    int
	TotalHits  int64
	MaxEntries int
	TTL        time.Duration
}

type entry struct {
	command   string
	timestamp time.Time
	hitCount  int64
}

// snapshotEntry is the on-disk form: timestamps are epoch seconds.
type snapshotEntry struct {
	Command   string `json:"command"`
	Timestamp int64  `json:"timestamp"`
	HitCount  int64  `json:"hit_count"`
}

// Cache memoizes (prompt, context) pairs to generated commands with TTL
// expiry, bounded size, and a JSON disk snapshot. All methods are safe for
// concurrent use; no lock is held across anything slower than the snapshot
// write itself.
type Cache struct {
	path       string
	ttl        time.Duration
	maxEntries int
	logger     *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// New creates a cache and loads the snapshot when one exists. A missing or
// corrupt snapshot yields an empty cache with a warning, never an error.
func New(opts Options, logger *slog.Logger) *Cache {
	logger = logging.WithComponent(logger, "respcache")

	c := &Cache{
		path:       opts.Path,
		ttl:        opts.TTL,
		maxEntries: opts.MaxEntries,
		logger:     logger,
		entries:    make(map[string]*entry),
	}

	if err := c.Load(); err != nil {
		logger.Warn("failed to load response cache",
			logging.String(logging.FieldEventType, "respcache_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldImpact, "previously cached commands will be regenerated"))
	}
	return c
}

// Key derives the deterministic cache key for a prompt/context pair.
func Key(prompt, context string) string {
	h := sha256.New()
	h.Write([]byte(prompt))
	h.Write([]byte("|"))
	h.Write([]byte(context))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached command for the pair when present and fresh. An
// expired entry is removed on read. A hit increments the entry's hit count.
func (c *Cache) Get(prompt, context string) (string, bool) {
	key := Key(prompt, context)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if time.Since(e.timestamp) >= c.ttl {
		delete(c.entries, key)
		return "", false
	}
	e.hitCount++
	return e.command, true
}

// Set stores a generated command, evicting the single oldest entry first when
// the cache is at capacity.
func (c *Cache) Set(prompt, context, command string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[Key(prompt, context)] = &entry{
		command:   command,
		timestamp: time.Now(),
	}
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, e := range c.entries {
		if oldestKey == "" || e.timestamp.Before(oldest) {
			oldestKey = key
			oldest = e.timestamp
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Clear empties the cache and removes the snapshot file if present.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()

	if c.path == "" {
		return nil
	}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

// Stats reports entry count, cumulative hits, and configured limits.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var hits int64
	for _, e := range c.entries {
		hits += e.hitCount
	}
	return Stats{
		Entries:    len(c.entries),
		TotalHits:  hits,
		MaxEntries: c.maxEntries,
		TTL:        c.ttl,
	}
}

// Load replaces the in-memory contents with the disk snapshot. A missing
// file is a fresh start, not an error.
func (c *Cache) Load() error {
	if c.path == "" {
		return nil
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var snapshot map[string]snapshotEntry
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	entries := make(map[string]*entry, len(snapshot))
	for key, se := range snapshot {
		entries[key] = &entry{
			command:   se.Command,
			timestamp: time.Unix(se.Timestamp, 0),
			hitCount:  se.HitCount,
		}
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()

	c.logger.Debug("loaded response cache",
		logging.Int("entry_count", len(entries)),
		logging.String("path", c.path))
	return nil
}

// Save writes the snapshot atomically via a temp file rename.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	snapshot := make(map[string]snapshotEntry, len(c.entries))
	for key, e := range c.entries {
		snapshot[key] = snapshotEntry{
			Command:   e.command,
			Timestamp: e.timestamp.Unix(),
			HitCount:  e.hitCount,
		}
	}
	c.mu.Unlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Close attempts a final snapshot write. Failure is logged, never fatal.
func (c *Cache) Close() {
	if err := c.Save(); err != nil {
		c.logger.Warn("failed to save response cache",
			logging.String(logging.FieldEventType, "respcache_save_failed"),
			logging.Error(err),
			logging.String(logging.FieldImpact, "cached commands will not survive this process"))
	}
}
