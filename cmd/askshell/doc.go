// Command askshell turns natural-language requests into shell commands via
// external AI CLIs, runs them after safety screening, and keeps a resident
// daemon to reuse provider sessions and cached responses across invocations.
package main
