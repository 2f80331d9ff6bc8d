package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"askshell/internal/config"
	"askshell/internal/ipc"
	"askshell/internal/logging"
	"askshell/internal/provider"
	"askshell/internal/respcache"
	"askshell/internal/services"
)

// Daemon is the resident generation service. It owns the response cache and
// provider sessions and serves CLI requests over the unix socket.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	runID  string

	cache  *respcache.Cache
	pool   *SessionPool
	server *ipc.Server
	lock   *flock.Flock

	started    time.Time
	shutdownCh chan struct{}
}

// New wires a daemon from configuration. The response cache snapshot is
// loaded immediately so the first request can hit.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "daemon", "new", "configuration is required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "daemon", "new", "ensure directories", err)
	}

	runID := uuid.NewString()
	logger = logger.With(logging.String("run_id", runID))

	cache := respcache.New(respcache.Options{
		Path:       cfg.Paths.CacheFile,
		TTL:        cfg.CacheTTL(),
		MaxEntries: cfg.Cache.MaxEntries,
	}, logger)

	d := &Daemon{
		cfg:        cfg,
		logger:     logging.WithComponent(logger, "daemon"),
		runID:      runID,
		cache:      cache,
		pool:       NewSessionPool(cache, logger),
		lock:       flock.New(cfg.Paths.PIDFile + ".lock"),
		shutdownCh: make(chan struct{}, 1),
	}
	d.server = ipc.NewServer(cfg.Paths.SocketPath, d.handle, logger)
	return d, nil
}

// Run starts the daemon and blocks until a shutdown request or context
// cancellation, then cleans up the socket and pid files.
func (d *Daemon) Run(ctx context.Context) error {
	locked, err := d.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "daemon", "run", "acquire daemon lock", err)
	}
	if !locked {
		return services.Wrap(services.ErrConfiguration, "daemon", "run", "another daemon instance is already running", nil)
	}
	defer func() {
		_ = d.lock.Unlock()
	}()

	if err := d.writePIDFile(); err != nil {
		return err
	}
	d.started = time.Now()

	if err := d.server.Start(ctx); err != nil {
		d.removePIDFile()
		return err
	}

	if err := d.pool.PrewarmProvider(d.cfg.Generation.DefaultProvider); err != nil {
		d.logger.Warn(
			"default provider prewarm failed",
			logging.String("provider", d.cfg.Generation.DefaultProvider),
			logging.Error(err),
		)
	}
	added := d.cache.Prewarm(provider.EnvironmentContext())
	d.logger.Info(
		"daemon started",
		logging.String(logging.FieldEventType, "daemon_start"),
		logging.String("socket", d.cfg.Paths.SocketPath),
		logging.Int("prewarmed", added),
	)

	select {
	case <-ctx.Done():
		d.logger.Info("daemon interrupted", logging.String(logging.FieldEventType, "daemon_interrupt"))
	case <-d.shutdownCh:
	}

	d.server.Stop()
	d.cache.Close()
	d.removePIDFile()
	d.logger.Info(
		"daemon stopped",
		logging.String(logging.FieldEventType, "daemon_stop"),
		logging.Duration("uptime", time.Since(d.started)),
	)
	return nil
}

// handle dispatches one decoded request. Provider and generation failures
// become typed error responses rather than dropped connections.
func (d *Daemon) handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Type {
	case ipc.RequestGenerateCommand:
		providerName := strings.TrimSpace(req.Provider)
		if providerName == "" {
			providerName = d.cfg.Generation.DefaultProvider
		}
		if !provider.IsSupported(providerName) {
			return ipc.Error(fmt.Sprintf("unknown provider %q (supported: %s)",
				providerName, strings.Join(provider.Supported(), ", ")))
		}
		command, fromCache, err := d.pool.Generate(ctx, req.Prompt, req.Context, providerName)
		if err != nil {
			return ipc.Error(services.Details(err))
		}
		return ipc.Success(command, fromCache)

	case ipc.RequestPing:
		uptime := uint64(time.Since(d.started).Seconds())
		return ipc.Pong(uptime, d.pool.ProviderCount())

	case ipc.RequestShutdown:
		d.logger.Info("shutdown requested", logging.String(logging.FieldEventType, "daemon_shutdown_request"))
		d.server.RequestShutdown()
		select {
		case d.shutdownCh <- struct{}{}:
		default:
		}
		return ipc.ShuttingDown()

	default:
		return ipc.Error("unknown request type " + req.Type)
	}
}

func (d *Daemon) writePIDFile() error {
	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(d.cfg.Paths.PIDFile, []byte(pid+"\n"), 0o644); err != nil {
		return services.Wrap(services.ErrConfiguration, "daemon", "run", "write pid file", err)
	}
	return nil
}

func (d *Daemon) removePIDFile() {
	if err := os.Remove(d.cfg.Paths.PIDFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.logger.Warn("remove pid file failed", logging.Error(err))
	}
}
