// Package history persists past prompt-to-command generations in SQLite and
// retrieves the entries most relevant to a new prompt for inclusion in the
// generation context.
package history
