// Package ipc implements the line-delimited JSON protocol spoken between the
// CLI and the resident daemon over a unix domain socket. Each connection
// carries exactly one request and one response.
package ipc
