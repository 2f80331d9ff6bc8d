// Package logging builds the process-wide slog logger and provides typed
// attribute helpers plus the standardized field keys used across components.
package logging
