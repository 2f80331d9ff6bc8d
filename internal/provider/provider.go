package provider

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"askshell/internal/services"
)

// Provider generates a shell command from a natural-language prompt by
// invoking an external AI CLI.
type Provider interface {
	// Name returns the canonical provider name.
	Name() string
	// CheckInstallation verifies the provider binary is on PATH.
	CheckInstallation(ctx context.Context) error
	// GenerateCommand produces exactly one bash command for the prompt.
	// envContext describes the caller's environment (directory, shell, OS).
	GenerateCommand(ctx context.Context, prompt, envContext string) (string, error)
}

// Supported lists the provider names New accepts.
func Supported() []string {
	return []string{"gemini", "claude", "codex"}
}

// IsSupported reports whether name resolves to a provider, ignoring case.
func IsSupported(name string) bool {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, candidate := range Supported() {
		if candidate == normalized {
			return true
		}
	}
	return false
}

// New resolves a provider by name, case-insensitively.
func New(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gemini":
		return newCLIProvider("gemini", "npm install -g @google/generative-ai-cli", ""), nil
	case "claude":
		return newCLIProvider("claude", "npm install -g @anthropic-ai/claude-code", ""), nil
	case "codex":
		return newCLIProvider("codex", "npm install -g @openai/codex", codexRules), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "provider", "new",
			"unknown provider "+name+" (supported: gemini, claude, codex)", nil)
	}
}

// installCheck caches PATH lookups per binary so repeated generations in one
// process pay the lookup cost once.
var installCheck sync.Map

func checkBinary(binary, installHint string) error {
	if cached, ok := installCheck.Load(binary); ok {
		if err, failed := cached.(error); failed && err != nil {
			return err
		}
		return nil
	}
	_, lookErr := exec.LookPath(binary)
	var result error
	if lookErr != nil {
		result = services.Wrap(services.ErrExternalTool, "provider", "check",
			binary+" CLI not found on PATH (install: "+installHint+")", lookErr)
	}
	installCheck.Store(binary, result)
	return result
}

// ResetInstallationCache clears memoized PATH lookups. Intended for tests
// that mutate PATH between cases.
func ResetInstallationCache() {
	installCheck.Range(func(key, _ any) bool {
		installCheck.Delete(key)
		return true
	})
}
