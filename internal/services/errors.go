package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers classifying failures across the generation and execution
// pipeline. Callers wrap concrete errors with one of these via Wrap so the
// CLI and daemon can branch on the class without string matching.
var (
	// ErrExternalTool marks an absent or misbehaving backend binary.
	ErrExternalTool = errors.New("external tool error")
	// ErrGenerationQuality marks refusal text or an empty result after
	// post-processing.
	ErrGenerationQuality = errors.New("generation quality error")
	// ErrExecution marks a scheduled shell command that failed.
	ErrExecution = errors.New("execution error")
	// ErrConfiguration marks an unresolvable path or invalid setting.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransport marks an IPC bind/connect/read/write failure.
	ErrTransport = errors.New("transport error")
	// ErrSerialization marks malformed JSON at the IPC boundary.
	ErrSerialization = errors.New("serialization error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExecution
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Details extracts the human-readable portion of a wrapped error, stripping
// the sentinel prefix when present.
func Details(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []error{
		ErrExternalTool,
		ErrGenerationQuality,
		ErrExecution,
		ErrConfiguration,
		ErrTransport,
		ErrSerialization,
	} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
