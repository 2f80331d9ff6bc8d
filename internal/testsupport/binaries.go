package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// StubProvider installs a fake AI CLI named binary that prints output and
// exits zero, and prepends its directory to PATH for the test's duration.
func StubProvider(t testing.TB, binary, output string) {
	t.Helper()
	script := fmt.Sprintf("#!/bin/sh\ncat <<'EOF'\n%s\nEOF\n", output)
	installStub(t, binary, script)
}

// StubProviderFailure installs a fake AI CLI that writes message to stderr
// and exits nonzero.
func StubProviderFailure(t testing.TB, binary, message string) {
	t.Helper()
	script := fmt.Sprintf("#!/bin/sh\necho %q >&2\nexit 1\n", message)
	installStub(t, binary, script)
}

func installStub(t testing.TB, binary, script string) {
	t.Helper()
	binDir := filepath.Join(t.TempDir(), "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, binary)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", binary, err)
	}

	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}
