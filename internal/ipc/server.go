package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"askshell/internal/logging"
	"askshell/internal/services"
)

// Handler processes one decoded request and produces the response to send.
type Handler func(ctx context.Context, req Request) Response

// Server accepts line-delimited JSON requests over a unix domain socket.
type Server struct {
	socketPath string
	handler    Handler
	logger     *slog.Logger

	running  atomic.Bool
	listener net.Listener
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewServer constructs a server for the given socket path. The handler runs
// once per connection.
func NewServer(socketPath string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logging.WithComponent(logger, "ipc"),
	}
}

// Start binds the socket, removing any stale file first, and launches the
// accept loop. It returns once the listener is ready.
func (s *Server) Start(ctx context.Context) error {
	if s.handler == nil {
		return services.Wrap(services.ErrTransport, "ipc", "start", "handler is required", nil)
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return services.Wrap(services.ErrTransport, "ipc", "start", "remove stale socket", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return services.Wrap(services.ErrTransport, "ipc", "start", "bind unix socket", err)
	}
	s.listener = listener
	s.running.Store(true)

	s.logger.Info(
		"ipc server listening",
		logging.String(logging.FieldEventType, "ipc_listen"),
		logging.String("socket", s.socketPath),
	)

	s.wg.Add(1)
	go s.acceptLoop(ctx)
	return nil
}

func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()
	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() {
				return
			}
			s.logger.Warn("accept failed", logging.Error(err))
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	line, err := reader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		s.logger.Debug("connection closed before request", logging.Error(err))
		return
	}

	var resp Response
	var req Request
	if decodeErr := json.Unmarshal(line, &req); decodeErr != nil {
		resp = Error("malformed request: " + decodeErr.Error())
	} else {
		resp = s.handler(ctx, req)
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("encode response failed", logging.Error(err))
		return
	}
	payload = append(payload, '\n')
	if _, err := conn.Write(payload); err != nil {
		s.logger.Debug("write response failed", logging.Error(err))
	}
}

// RequestShutdown clears the running flag so the accept loop exits after its
// current iteration. In-flight connections are allowed to finish.
func (s *Server) RequestShutdown() {
	s.stopOnce.Do(func() {
		s.running.Store(false)
		if s.listener != nil {
			_ = s.listener.Close()
		}
	})
}

// Stop shuts the server down and waits for in-flight connections, then
// removes the socket file.
func (s *Server) Stop() {
	s.RequestShutdown()
	s.wg.Wait()
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("remove socket failed", logging.Error(err))
	}
}

// Running reports whether the accept loop is still taking connections.
func (s *Server) Running() bool {
	return s.running.Load()
}
