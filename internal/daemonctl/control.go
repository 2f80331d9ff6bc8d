package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"askshell/internal/config"
	"askshell/internal/ipc"
)

// ErrDaemonNotRunning indicates no daemon answers on the socket.
var ErrDaemonNotRunning = errors.New("daemon not running")

// Status describes a running daemon as reported by Ping.
type Status struct {
	Running       bool
	PID           int
	UptimeSeconds uint64
	SessionCount  int
}

// Launch starts a detached daemon process running `<executable> daemon run`.
func Launch(executablePath, configPath string) error {
	if strings.TrimSpace(executablePath) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}

	args := []string{"daemon", "run"}
	if cfg := strings.TrimSpace(configPath); cfg != "" {
		args = append(args, "--config", cfg)
	}

	proc := exec.Command(executablePath, args...)
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// WaitForReady polls the socket until the daemon answers a Ping.
func WaitForReady(ctx context.Context, socketPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		resp, err := ipc.Send(ctx, socketPath, ipc.Ping())
		if err == nil && resp.Status == ipc.StatusPong {
			return nil
		}
		lastErr = err
		time.Sleep(200 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for daemon")
	}
	return fmt.Errorf("daemon failed to start: %w", lastErr)
}

// EnsureStarted launches a daemon if none answers, then waits for readiness.
// It reports whether a new process was launched.
func EnsureStarted(ctx context.Context, cfg *config.Config, executablePath, configPath string, waitTimeout time.Duration) (bool, error) {
	if _, err := ipc.Send(ctx, cfg.Paths.SocketPath, ipc.Ping()); err == nil {
		return false, nil
	} else if !isDaemonUnavailable(err) {
		return false, err
	}

	if err := Launch(executablePath, configPath); err != nil {
		return false, err
	}
	if err := WaitForReady(ctx, cfg.Paths.SocketPath, waitTimeout); err != nil {
		return true, err
	}
	return true, nil
}

// Stop asks the daemon to shut down and waits for the socket to disappear.
func Stop(ctx context.Context, cfg *config.Config, gracePeriod time.Duration) error {
	resp, err := ipc.Send(ctx, cfg.Paths.SocketPath, ipc.Shutdown())
	if err != nil {
		if isDaemonUnavailable(err) {
			return ErrDaemonNotRunning
		}
		return err
	}
	if resp.Status != ipc.StatusShuttingDown {
		return fmt.Errorf("unexpected shutdown response %q", resp.Status)
	}

	deadline := time.Now().Add(gracePeriod)
	for time.Now().Before(deadline) {
		if !ipc.Probe(cfg.Paths.SocketPath) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("daemon did not stop within %s", gracePeriod)
}

// Query pings the daemon and reads the pid file. A missing or silent socket
// yields Running=false without error.
func Query(ctx context.Context, cfg *config.Config) (Status, error) {
	resp, err := ipc.Send(ctx, cfg.Paths.SocketPath, ipc.Ping())
	if err != nil {
		if isDaemonUnavailable(err) {
			return Status{}, nil
		}
		return Status{}, err
	}
	if resp.Status != ipc.StatusPong {
		return Status{}, fmt.Errorf("unexpected ping response %q", resp.Status)
	}

	status := Status{
		Running:       true,
		UptimeSeconds: resp.UptimeSeconds,
		SessionCount:  resp.SessionCount,
	}
	if data, readErr := os.ReadFile(cfg.Paths.PIDFile); readErr == nil {
		if pid, parseErr := strconv.Atoi(strings.TrimSpace(string(data))); parseErr == nil {
			status.PID = pid
		}
	}
	return status, nil
}

func isDaemonUnavailable(err error) bool {
	return os.IsNotExist(err) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, unix.ENOENT) ||
		errors.Is(err, unix.ECONNREFUSED)
}
