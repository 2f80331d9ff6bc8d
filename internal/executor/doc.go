// Package executor runs generated shell commands, individually and in
// dependency-ordered batches, and screens them for destructive patterns
// before execution.
package executor
