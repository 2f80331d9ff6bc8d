package daemon

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"askshell/internal/logging"
	"askshell/internal/provider"
	"askshell/internal/respcache"
)

// SessionPool keeps constructed providers resident between requests and
// fronts them with the shared response cache.
type SessionPool struct {
	mu        sync.RWMutex
	providers map[string]provider.Provider

	cache  *respcache.Cache
	logger *slog.Logger
}

// NewSessionPool builds an empty pool over the given cache.
func NewSessionPool(cache *respcache.Cache, logger *slog.Logger) *SessionPool {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SessionPool{
		providers: make(map[string]provider.Provider),
		cache:     cache,
		logger:    logging.WithComponent(logger, "session-pool"),
	}
}

// ProviderCount returns the number of resident providers.
func (p *SessionPool) ProviderCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.providers)
}

// PrewarmProvider constructs and registers the named provider ahead of the
// first request so the initial generation pays no setup cost.
func (p *SessionPool) PrewarmProvider(name string) error {
	_, err := p.resolve(name)
	return err
}

// ClearCache drops every cached response shared by the pool.
func (p *SessionPool) ClearCache() error {
	return p.cache.Clear()
}

// SaveCache flushes the response cache to disk.
func (p *SessionPool) SaveCache() error {
	return p.cache.Save()
}

// Generate answers a prompt from the cache when possible, otherwise through
// the named provider. The cache and registry locks are never held across the
// provider invocation.
func (p *SessionPool) Generate(ctx context.Context, prompt, envContext, providerName string) (string, bool, error) {
	if command, ok := p.cache.Get(prompt, envContext); ok {
		p.logger.Debug(
			"cache hit",
			logging.String(logging.FieldEventType, "generation_cache_hit"),
			logging.String("provider", providerName),
		)
		return command, true, nil
	}

	prov, err := p.resolve(providerName)
	if err != nil {
		return "", false, err
	}

	command, err := prov.GenerateCommand(ctx, prompt, envContext)
	if err != nil {
		return "", false, err
	}

	p.cache.Set(prompt, envContext, command)
	p.logger.Info(
		"command generated",
		logging.String(logging.FieldEventType, "generation_complete"),
		logging.String("provider", prov.Name()),
	)
	return command, false, nil
}

// resolve returns the resident provider for name, constructing it on first
// use. Construction is double-checked so concurrent requests for the same
// name build it once.
func (p *SessionPool) resolve(name string) (provider.Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	p.mu.RLock()
	prov, ok := p.providers[name]
	p.mu.RUnlock()
	if ok {
		return prov, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if prov, ok := p.providers[name]; ok {
		return prov, nil
	}
	prov, err := provider.New(name)
	if err != nil {
		return nil, err
	}
	p.providers[name] = prov
	p.logger.Info(
		"provider session created",
		logging.String(logging.FieldEventType, "session_created"),
		logging.String("provider", prov.Name()),
	)
	return prov, nil
}
