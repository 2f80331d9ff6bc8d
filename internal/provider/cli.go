package provider

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"askshell/internal/services"
)

// cliProvider shells out to an AI CLI, passing the full prompt as a single
// argument and reading the generated command from stdout.
type cliProvider struct {
	binary      string
	installHint string
	extraRules  string
}

func newCLIProvider(binary, installHint, extraRules string) *cliProvider {
	return &cliProvider{binary: binary, installHint: installHint, extraRules: extraRules}
}

func (p *cliProvider) Name() string { return p.binary }

func (p *cliProvider) CheckInstallation(_ context.Context) error {
	return checkBinary(p.binary, p.installHint)
}

func (p *cliProvider) GenerateCommand(ctx context.Context, prompt, envContext string) (string, error) {
	if err := p.CheckInstallation(ctx); err != nil {
		return "", err
	}

	fullPrompt := BuildPrompt(prompt, envContext, p.extraRules)
	cmd := exec.CommandContext(ctx, p.binary, fullPrompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", services.Wrap(services.ErrExternalTool, "provider", "generate",
			p.binary+" invocation failed: "+detail, err)
	}

	return Postprocess(strings.TrimSpace(stdout.String()))
}
