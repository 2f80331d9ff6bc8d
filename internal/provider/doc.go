// Package provider turns natural-language prompts into shell commands by
// delegating to external AI CLIs (gemini, claude, codex) and normalizing
// their responses.
package provider
