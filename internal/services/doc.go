// Package services defines the shared error taxonomy used by providers, the
// executor, and the daemon, with helpers to wrap and introspect failures.
package services
