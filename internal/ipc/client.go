package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"time"

	"askshell/internal/services"
)

// Send connects to the daemon socket, writes one request line, and reads one
// response line. Each call uses a fresh connection.
func Send(ctx context.Context, socketPath string, req Request) (Response, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransport, "ipc", "send", "connect to daemon", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(2 * time.Minute))
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, services.Wrap(services.ErrSerialization, "ipc", "send", "encode request", err)
	}
	payload = append(payload, '\n')
	if _, err := conn.Write(payload); err != nil {
		return Response{}, services.Wrap(services.ErrTransport, "ipc", "send", "write request", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return Response{}, services.Wrap(services.ErrTransport, "ipc", "send", "read response", err)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, services.Wrap(services.ErrSerialization, "ipc", "send", "decode response", err)
	}
	return resp, nil
}

// Probe reports whether a daemon endpoint exists at socketPath. It checks
// only for the socket file, not daemon health.
func Probe(socketPath string) bool {
	info, err := os.Stat(socketPath)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSocket != 0
}
