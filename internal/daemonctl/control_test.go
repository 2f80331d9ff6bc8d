package daemonctl

import (
	"context"
	"errors"
	"testing"
	"time"

	"askshell/internal/daemon"
	"askshell/internal/ipc"
	"askshell/internal/testsupport"
)

func TestQueryWithoutDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	status, err := Query(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if status.Running {
		t.Fatal("no daemon should be reported running")
	}
}

func TestStopWithoutDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := Stop(context.Background(), cfg, time.Second); !errors.Is(err, ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestQueryAndStopAgainstLiveDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	ctx := context.Background()
	if err := WaitForReady(ctx, cfg.Paths.SocketPath, 5*time.Second); err != nil {
		t.Fatalf("WaitForReady: %v", err)
	}

	status, err := Query(ctx, cfg)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !status.Running || status.SessionCount != 0 {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.PID == 0 {
		t.Fatal("pid file not reflected in status")
	}

	if err := Stop(ctx, cfg, 5*time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case runErr := <-done:
		if runErr != nil {
			t.Fatalf("daemon Run returned %v", runErr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not exit")
	}
	if ipc.Probe(cfg.Paths.SocketPath) {
		t.Fatal("socket left behind")
	}
}

func TestLaunchRejectsEmptyExecutable(t *testing.T) {
	if err := Launch("", ""); err == nil {
		t.Fatal("expected error for empty executable path")
	}
}
