// Package planner builds execution plans for batches of shell commands and
// derives the order in which they can safely run, grouping independent tasks
// for concurrent execution.
package planner
