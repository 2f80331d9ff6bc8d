// Package daemon implements the resident generation service. It keeps
// provider sessions and the response cache warm between CLI invocations and
// answers requests over the unix-socket protocol in package ipc.
package daemon
