package ipc

// Request type tags.
const (
	RequestGenerateCommand = "GenerateCommand"
	RequestPing            = "Ping"
	RequestShutdown        = "Shutdown"
)

// Response status tags.
const (
	StatusSuccess      = "Success"
	StatusPong         = "Pong"
	StatusError        = "Error"
	StatusShuttingDown = "ShuttingDown"
)

// Request is one client message: a type tag plus that variant's fields.
// Fields unused by a variant are omitted from the wire form.
type Request struct {
	Type     string `json:"type"`
	Prompt   string `json:"prompt,omitempty"`
	Context  string `json:"context,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// Response is one daemon message: a status tag plus that variant's fields.
type Response struct {
	Status        string `json:"status"`
	Command       string `json:"command,omitempty"`
	FromCache     bool   `json:"from_cache,omitempty"`
	UptimeSeconds uint64 `json:"uptime_seconds,omitempty"`
	SessionCount  int    `json:"session_count,omitempty"`
	Message       string `json:"message,omitempty"`
}

// GenerateCommand builds a generation request.
func GenerateCommand(prompt, context, provider string) Request {
	return Request{Type: RequestGenerateCommand, Prompt: prompt, Context: context, Provider: provider}
}

// Ping builds a liveness request.
func Ping() Request {
	return Request{Type: RequestPing}
}

// Shutdown builds a shutdown request.
func Shutdown() Request {
	return Request{Type: RequestShutdown}
}

// Success builds a generation response.
func Success(command string, fromCache bool) Response {
	return Response{Status: StatusSuccess, Command: command, FromCache: fromCache}
}

// Pong builds a liveness response.
func Pong(uptimeSeconds uint64, sessionCount int) Response {
	return Response{Status: StatusPong, UptimeSeconds: uptimeSeconds, SessionCount: sessionCount}
}

// Error builds an error response.
func Error(message string) Response {
	return Response{Status: StatusError, Message: message}
}

// ShuttingDown builds a shutdown acknowledgement.
func ShuttingDown() Response {
	return Response{Status: StatusShuttingDown}
}
