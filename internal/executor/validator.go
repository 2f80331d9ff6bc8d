package executor

import (
	"strings"

	"askshell/internal/services"
)

// DangerLevel classifies how risky a command is to run unattended.
type DangerLevel string

const (
	DangerLow    DangerLevel = "low"
	DangerMedium DangerLevel = "medium"
	DangerHigh   DangerLevel = "high"
)

// blockedPatterns are substrings that make a command unrunnable regardless of
// confirmation. These target filesystem destruction and fork bombs.
var blockedPatterns = []string{
	"rm -rf /",
	"rm -rf /*",
	"mkfs",
	"dd if=/dev/zero of=/dev/",
	"dd of=/dev/sd",
	":(){ :|:& };:",
	"> /dev/sda",
	"chmod -R 777 /",
	"chown -R root /",
}

// highRiskPatterns mark commands that must always be confirmed interactively.
var highRiskPatterns = []string{
	"rm -rf",
	"rm -r",
	"git push --force",
	"git reset --hard",
	"truncate",
	"shred",
	"> /etc/",
	"kill -9",
	"pkill",
	"drop table",
	"drop database",
}

// Validate rejects commands matching a blocked pattern. The returned error
// names the offending pattern.
func Validate(command string) error {
	normalized := strings.ToLower(strings.Join(strings.Fields(command), " "))
	for _, pattern := range blockedPatterns {
		if strings.Contains(normalized, pattern) {
			return services.Wrap(services.ErrExecution, "executor", "validate",
				"refusing to run destructive command matching "+pattern, nil)
		}
	}
	return nil
}

// Classify reports the danger level of a command. Blocked commands never
// reach classification; callers validate first.
func Classify(command string) DangerLevel {
	normalized := strings.ToLower(strings.Join(strings.Fields(command), " "))
	for _, pattern := range highRiskPatterns {
		if strings.Contains(normalized, pattern) {
			return DangerHigh
		}
	}
	if strings.Contains(normalized, "sudo ") {
		return DangerMedium
	}
	return DangerLow
}

// RequiresConfirmation reports whether a command at the given level should
// prompt before running when auto-confirmation of safe commands is enabled.
func RequiresConfirmation(level DangerLevel, autoConfirmSafe bool) bool {
	if !autoConfirmSafe {
		return true
	}
	return level != DangerLow
}
