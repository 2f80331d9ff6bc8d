// Package daemonctl orchestrates the daemon from the CLI side: launching a
// detached process, waiting for readiness, requesting shutdown, and
// reporting status.
package daemonctl
