package history

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"askshell/internal/config"
)

// Entry records one prompt-to-command generation.
type Entry struct {
	ID        int64
	Prompt    string
	Command   string
	Provider  string
	Executed  bool
	CreatedAt time.Time
}

// Store persists generation history backed by SQLite.
type Store struct {
	db         *sql.DB
	path       string
	maxEntries int
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Paths.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: cfg.Paths.HistoryDB, maxEntries: cfg.History.MaxEntries}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) applyMigrations(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS history (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            prompt TEXT NOT NULL,
            command TEXT NOT NULL,
            provider TEXT NOT NULL,
            executed INTEGER NOT NULL DEFAULT 0,
            created_at TEXT NOT NULL
        )`)
	if err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add records a generation and prunes the oldest rows beyond the configured
// capacity.
func (s *Store) Add(ctx context.Context, entry Entry) error {
	created := entry.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (prompt, command, provider, executed, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		entry.Prompt, entry.Command, entry.Provider, boolToInt(entry.Executed),
		created.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}

	if s.maxEntries > 0 {
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM history WHERE id NOT IN (
                SELECT id FROM history ORDER BY id DESC LIMIT ?
            )`, s.maxEntries)
		if err != nil {
			return fmt.Errorf("prune history: %w", err)
		}
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = s.maxEntries
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, prompt, command, provider, executed, created_at
         FROM history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Relevant returns up to limit entries whose prompts share words with
// prompt, best matches first. Entries with no overlap are excluded.
func (s *Store) Relevant(ctx context.Context, prompt string, limit int) ([]Entry, error) {
	words := promptWords(prompt)
	if len(words) == 0 || limit <= 0 {
		return nil, nil
	}

	entries, err := s.Recent(ctx, 0)
	if err != nil {
		return nil, err
	}

	type scored struct {
		score int
		entry Entry
	}
	var matches []scored
	for _, entry := range entries {
		entryWords := promptWords(entry.Prompt)
		score := 0
		for word := range words {
			if entryWords[word] {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{score: score, entry: entry})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	result := make([]Entry, 0, len(matches))
	for _, m := range matches {
		result = append(result, m.entry)
	}
	return result, nil
}

// FormatContext renders entries as a prompt fragment describing past work.
// An empty slice renders as the empty string.
func FormatContext(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nRelevant past commands:\n")
	for i, entry := range entries {
		fmt.Fprintf(&b, "%d. Prompt: %q -> Command: %q\n", i+1, entry.Prompt, entry.Command)
	}
	return b.String()
}

func promptWords(prompt string) map[string]bool {
	words := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(prompt)) {
		words[word] = true
	}
	return words
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			entry    Entry
			executed int
			created  string
		)
		if err := rows.Scan(&entry.ID, &entry.Prompt, &entry.Command, &entry.Provider, &executed, &created); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entry.Executed = executed != 0
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			entry.CreatedAt = ts
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
