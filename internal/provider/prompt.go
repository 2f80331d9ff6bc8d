package provider

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

const codexRules = "- Be concise and use standard Unix commands"

// BuildPrompt assembles the instruction block sent to an AI CLI. extraRules
// appends provider-specific constraints after the shared rule set.
func BuildPrompt(prompt, envContext, extraRules string) string {
	var b strings.Builder
	b.WriteString("You are a bash command generator. Convert natural language to a single bash command.\n\n")
	b.WriteString("RULES:\n")
	b.WriteString("- Output ONLY the bash command (no explanations, no markdown)\n")
	b.WriteString("- Do NOT say \"I cannot\" or similar - just output the command\n")
	b.WriteString("- Be precise and accurate\n")
	if extraRules != "" {
		b.WriteString(extraRules)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nContext: %s\nRequest: %s\n\n", envContext, prompt)
	b.WriteString("Examples:\n")
	b.WriteString("\"list files\" -> ls -la\n")
	b.WriteString("\"git status\" -> git status\n")
	b.WriteString("\"find txt files\" -> find . -name \"*.txt\"\n")
	b.WriteString("\"current time\" -> date\n\n")
	b.WriteString("Command:")
	return b.String()
}

// EnvironmentContext describes the caller's shell environment for the prompt.
func EnvironmentContext() string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "unknown"
	}
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "bash"
	}
	return fmt.Sprintf("Current directory: %s\nShell: %s\nOS: %s", cwd, shell, runtime.GOOS)
}
