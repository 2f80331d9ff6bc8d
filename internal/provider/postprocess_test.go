package provider

import (
	"errors"
	"strings"
	"testing"

	"askshell/internal/services"
)

func TestPostprocessCleanCommand(t *testing.T) {
	got, err := Postprocess("ls -la")
	if err != nil {
		t.Fatal(err)
	}
	if got != "ls -la" {
		t.Fatalf("got %q", got)
	}
}

func TestPostprocessCodeFences(t *testing.T) {
	cases := map[string]string{
		"```bash\ngit status\n```": "git status",
		"```sh\ndate\n```":         "date",
		"```\nuptime\n```":         "uptime",
	}
	for raw, want := range cases {
		got, err := Postprocess(raw)
		if err != nil {
			t.Fatalf("Postprocess(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("Postprocess(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestPostprocessStripsPrefixes(t *testing.T) {
	got, err := Postprocess("Here is the command: ls -la")
	if err != nil {
		t.Fatal(err)
	}
	if got != "ls -la" {
		t.Fatalf("got %q", got)
	}

	got, err = Postprocess("You can use: git status")
	if err != nil {
		t.Fatal(err)
	}
	if got != "git status" {
		t.Fatalf("got %q", got)
	}
}

func TestPostprocessMultiline(t *testing.T) {
	got, err := Postprocess("ls -la\nThis lists all files")
	if err != nil {
		t.Fatal(err)
	}
	if got != "ls -la" {
		t.Fatalf("first line should win, got %q", got)
	}

	got, err = Postprocess("This is a command to list files:\nls -la")
	if err != nil {
		t.Fatal(err)
	}
	if got != "ls -la" {
		t.Fatalf("second line should win after a prose lead, got %q", got)
	}
}

func TestPostprocessRejectsRefusals(t *testing.T) {
	for _, raw := range []string{
		"I am unable to execute shell commands.",
		"I cannot run this command",
		"As an AI, I should explain instead",
	} {
		if _, err := Postprocess(raw); !errors.Is(err, services.ErrGenerationQuality) {
			t.Fatalf("expected generation quality error for %q, got %v", raw, err)
		}
	}
}

func TestPostprocessRejectsEmpty(t *testing.T) {
	for _, raw := range []string{"", "   \n  \n  "} {
		if _, err := Postprocess(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestPostprocessPrefixedFence(t *testing.T) {
	got, err := Postprocess("Here is the command:\n```bash\nfind . -name \"*.txt\"\n```")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "find") || !strings.Contains(got, "*.txt") {
		t.Fatalf("got %q", got)
	}
}

func TestPostprocessIdempotent(t *testing.T) {
	first, err := Postprocess("```bash\ngit log --oneline\n```")
	if err != nil {
		t.Fatal(err)
	}
	second, err := Postprocess(first)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("postprocess not idempotent: %q vs %q", first, second)
	}
}
