package provider

import (
	"regexp"
	"strings"

	"askshell/internal/services"
)

var codeBlockRE = regexp.MustCompile("(?s)```(?:bash|sh)?\n(.*?)\n```")

// refusalPhrases identify responses where the model explained itself instead
// of emitting a command.
var refusalPhrases = []string{
	"i am unable to",
	"i cannot",
	"i can't",
	"i will try to find",
	"i'm sorry",
	"as an ai",
	"i don't have the ability",
}

// explanationPrefixes get stripped from the front of a response.
var explanationPrefixes = []string{
	"here is the command:",
	"the command is:",
	"you can use:",
	"try this:",
	"run this:",
	"execute:",
	"command:",
}

// Postprocess distills a raw AI response down to a single bash command.
// It rejects refusals, unwraps markdown fences, strips explanation prefixes,
// and collapses multi-line answers to the command line. Running it on an
// already-clean command is a no-op.
func Postprocess(raw string) (string, error) {
	command := raw
	lowered := strings.ToLower(command)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lowered, phrase) {
			return "", services.Wrap(services.ErrGenerationQuality, "provider", "postprocess",
				"AI returned an explanation instead of a command", nil)
		}
	}

	if strings.Contains(command, "```") {
		if m := codeBlockRE.FindStringSubmatch(command); m != nil {
			command = m[1]
		} else {
			command = strings.ReplaceAll(command, "```bash", "")
			command = strings.ReplaceAll(command, "```sh", "")
			command = strings.ReplaceAll(command, "```", "")
			command = strings.TrimSpace(command)
		}
	}

	for _, prefix := range explanationPrefixes {
		if strings.HasPrefix(strings.ToLower(command), prefix) {
			command = strings.TrimSpace(command[len(prefix):])
		}
	}

	var lines []string
	for _, line := range strings.Split(command, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > 1 {
		// A first line ending in a colon or running long is prose, so the
		// command follows it.
		if strings.HasSuffix(lines[0], ":") || len(lines[0]) > 50 {
			command = lines[1]
		} else {
			command = lines[0]
		}
	}

	command = strings.TrimSpace(command)
	if command == "" {
		return "", services.Wrap(services.ErrGenerationQuality, "provider", "postprocess",
			"AI returned an empty command", nil)
	}
	return command, nil
}
