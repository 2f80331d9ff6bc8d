package main

import (
	"context"
	"fmt"
	"strings"

	"askshell/internal/config"
	"askshell/internal/history"
	"askshell/internal/ipc"
	"askshell/internal/logging"
	"askshell/internal/provider"
	"askshell/internal/respcache"
)

type generationResult struct {
	Command   string
	Provider  string
	FromCache bool
	ViaDaemon bool
}

// generate produces a command for the prompt, going through the daemon when
// one is listening and falling back to in-process generation otherwise.
func generate(ctx context.Context, cfg *config.Config, prompt, providerName string, useCache bool) (generationResult, error) {
	providerName = strings.TrimSpace(providerName)
	if providerName == "" {
		providerName = cfg.Generation.DefaultProvider
	}

	envContext := provider.EnvironmentContext()
	if cfg.Generation.HistoryContext {
		envContext += historyContext(ctx, cfg, prompt)
	}

	if useCache && ipc.Probe(cfg.Paths.SocketPath) {
		resp, err := ipc.Send(ctx, cfg.Paths.SocketPath, ipc.GenerateCommand(prompt, envContext, providerName))
		if err == nil {
			switch resp.Status {
			case ipc.StatusSuccess:
				return generationResult{
					Command:   resp.Command,
					Provider:  providerName,
					FromCache: resp.FromCache,
					ViaDaemon: true,
				}, nil
			case ipc.StatusError:
				return generationResult{}, daemonError(resp.Message)
			}
		}
		// Daemon unreachable or misbehaving; generate locally instead.
	}

	return generateLocal(ctx, cfg, prompt, envContext, providerName, useCache)
}

func daemonError(message string) error {
	return fmt.Errorf("daemon: %s", message)
}

func generateLocal(ctx context.Context, cfg *config.Config, prompt, envContext, providerName string, useCache bool) (generationResult, error) {
	prov, err := provider.New(providerName)
	if err != nil {
		return generationResult{}, err
	}

	var cache *respcache.Cache
	if useCache {
		cache = respcache.New(respcache.Options{
			Path:       cfg.Paths.CacheFile,
			TTL:        cfg.CacheTTL(),
			MaxEntries: cfg.Cache.MaxEntries,
		}, logging.NewNop())
		if command, ok := cache.Get(prompt, envContext); ok {
			cache.Close()
			return generationResult{Command: command, Provider: prov.Name(), FromCache: true}, nil
		}
	}

	command, err := prov.GenerateCommand(ctx, prompt, envContext)
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		return generationResult{}, err
	}

	if cache != nil {
		cache.Set(prompt, envContext, command)
		cache.Close()
	}
	return generationResult{Command: command, Provider: prov.Name()}, nil
}

// historyContext returns the relevant-history prompt fragment, or empty when
// history is disabled or unavailable. History failures never block generation.
func historyContext(ctx context.Context, cfg *config.Config, prompt string) string {
	if !cfg.History.Enabled {
		return ""
	}
	store, err := history.Open(cfg)
	if err != nil {
		return ""
	}
	defer store.Close()

	entries, err := store.Relevant(ctx, prompt, cfg.Generation.HistoryContextLimit)
	if err != nil {
		return ""
	}
	return history.FormatContext(entries)
}

// recordHistory appends a generation to the history store, silently skipping
// when history is disabled or the store cannot be opened.
func recordHistory(ctx context.Context, cfg *config.Config, entry history.Entry) {
	if !cfg.History.Enabled {
		return
	}
	store, err := history.Open(cfg)
	if err != nil {
		return
	}
	defer store.Close()
	_ = store.Add(ctx, entry)
}
