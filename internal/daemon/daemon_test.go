package daemon

import (
	"context"
	"testing"
	"time"

	"askshell/internal/ipc"
	"askshell/internal/provider"
	"askshell/internal/testsupport"
)

func startTestDaemon(t *testing.T) (*Daemon, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("daemon did not stop")
		}
	})

	waitForSocket(t, cfg.Paths.SocketPath)
	return d, cfg.Paths.SocketPath
}

func waitForSocket(t *testing.T, socketPath string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if ipc.Probe(socketPath) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("daemon socket never appeared")
}

func TestPingReportsPrewarmedSession(t *testing.T) {
	_, socketPath := startTestDaemon(t)

	resp, err := ipc.Send(context.Background(), socketPath, ipc.Ping())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Status != ipc.StatusPong {
		t.Fatalf("unexpected status %q", resp.Status)
	}
	if resp.SessionCount != 1 {
		t.Fatalf("expected the default provider resident at start, got %d", resp.SessionCount)
	}
}

func TestGenerateCreatesSessionAndCaches(t *testing.T) {
	provider.ResetInstallationCache()
	testsupport.StubProvider(t, "claude", "ls -la")
	_, socketPath := startTestDaemon(t)

	ctx := context.Background()
	resp, err := ipc.Send(ctx, socketPath, ipc.GenerateCommand("list files please", "ctx", "claude"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Status != ipc.StatusSuccess || resp.Command != "ls -la" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.FromCache {
		t.Fatal("first generation must miss the cache")
	}

	pong, err := ipc.Send(ctx, socketPath, ipc.Ping())
	if err != nil {
		t.Fatalf("Send ping: %v", err)
	}
	if pong.SessionCount != 2 {
		t.Fatalf("expected claude resident next to the default provider, got %d", pong.SessionCount)
	}

	again, err := ipc.Send(ctx, socketPath, ipc.GenerateCommand("list files please", "ctx", "claude"))
	if err != nil {
		t.Fatalf("Send repeat: %v", err)
	}
	if !again.FromCache {
		t.Fatal("repeat generation must hit the cache")
	}
	if again.Command != "ls -la" {
		t.Fatalf("cache returned %q", again.Command)
	}

	pong, err = ipc.Send(ctx, socketPath, ipc.Ping())
	if err != nil {
		t.Fatalf("Send ping: %v", err)
	}
	if pong.SessionCount != 2 {
		t.Fatalf("cache hit must not create sessions, got %d", pong.SessionCount)
	}
}

func TestGenerateUnknownProvider(t *testing.T) {
	_, socketPath := startTestDaemon(t)

	resp, err := ipc.Send(context.Background(), socketPath, ipc.GenerateCommand("x", "y", "oracle"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Status != ipc.StatusError {
		t.Fatalf("expected error response, got %+v", resp)
	}
}

func TestShutdownRequest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()
	waitForSocket(t, cfg.Paths.SocketPath)

	resp, err := ipc.Send(context.Background(), cfg.Paths.SocketPath, ipc.Shutdown())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Status != ipc.StatusShuttingDown {
		t.Fatalf("unexpected status %q", resp.Status)
	}

	select {
	case runErr := <-done:
		if runErr != nil {
			t.Fatalf("Run returned %v", runErr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not exit after shutdown request")
	}
	if ipc.Probe(cfg.Paths.SocketPath) {
		t.Fatal("socket not removed on clean shutdown")
	}
}

func TestSessionPoolPrewarmAndCacheMaintenance(t *testing.T) {
	provider.ResetInstallationCache()
	testsupport.StubProvider(t, "codex", "uptime")
	cfg := testsupport.NewConfig(t)
	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := d.pool.PrewarmProvider("codex"); err != nil {
		t.Fatalf("PrewarmProvider: %v", err)
	}
	if count := d.pool.ProviderCount(); count != 1 {
		t.Fatalf("expected one resident provider after prewarm, got %d", count)
	}
	if err := d.pool.PrewarmProvider("oracle"); err == nil {
		t.Fatal("expected error for unsupported provider")
	}

	ctx := context.Background()
	if _, _, err := d.pool.Generate(ctx, "show uptime", "a", "codex"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, hit, err := d.pool.Generate(ctx, "show uptime", "a", "codex"); err != nil || !hit {
		t.Fatalf("expected cache hit, hit=%v err=%v", hit, err)
	}

	if err := d.pool.SaveCache(); err != nil {
		t.Fatalf("SaveCache: %v", err)
	}
	if err := d.pool.ClearCache(); err != nil {
		t.Fatalf("ClearCache: %v", err)
	}
	if _, hit, err := d.pool.Generate(ctx, "show uptime", "a", "codex"); err != nil || hit {
		t.Fatalf("cleared cache must miss, hit=%v err=%v", hit, err)
	}
}

func TestSessionPoolResolveNormalizesName(t *testing.T) {
	provider.ResetInstallationCache()
	testsupport.StubProvider(t, "claude", "date")
	cfg := testsupport.NewConfig(t)
	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if _, _, err := d.pool.Generate(ctx, "time", "a", "CLAUDE"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, _, err := d.pool.Generate(ctx, "other prompt", "a", "claude"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if count := d.pool.ProviderCount(); count != 1 {
		t.Fatalf("expected one session across case variants, got %d", count)
	}
}
