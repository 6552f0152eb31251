package crm

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// Factory creates a toolkit API implementation.
type Factory func() (API, error)

// Registry maps toolkit script paths to the implementations standing in for them
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new script registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory for a script path
func (r *Registry) Register(script string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[script]; exists {
		return fmt.Errorf("script %s already registered", script)
	}

	r.factories[script] = factory
	return nil
}

// Create instantiates the API registered for script
func (r *Registry) Create(script string) (API, error) {
	r.mu.RLock()
	factory, exists := r.factories[script]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("script %s not registered (registered: %s)", script, strings.Join(r.List(), ", "))
	}

	return factory()
}

// List returns all registered script paths, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegistryScriptLoader loads toolkit scripts by instantiating the registered
// implementation and installing it into a Slot. Each URL is loaded once; a
// later Load of the same URL reinstalls the API it created if the slot was
// cleared in the meantime.
type RegistryScriptLoader struct {
	registry *Registry
	slot     *Slot

	mu      sync.Mutex
	settled map[string]loadOutcome
}

type loadOutcome struct {
	api API
	err error
}

// NewRegistryScriptLoader creates a loader that fills slot from registry.
func NewRegistryScriptLoader(registry *Registry, slot *Slot) *RegistryScriptLoader {
	return &RegistryScriptLoader{
		registry: registry,
		slot:     slot,
		settled:  make(map[string]loadOutcome),
	}
}

// Load resolves rawURL to a registered script and installs its API. A URL
// that already settled returns its first outcome without loading again.
func (l *RegistryScriptLoader) Load(ctx context.Context, rawURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	out, ok := l.settled[rawURL]
	if !ok {
		out = l.load(rawURL)
		l.settled[rawURL] = out
	}
	if out.err != nil {
		return out.err
	}
	if _, installed := l.slot.Get(); !installed {
		l.slot.Set(out.api)
	}
	return nil
}

func (l *RegistryScriptLoader) load(rawURL string) loadOutcome {
	script, err := scriptPath(rawURL)
	if err != nil {
		return loadOutcome{err: err}
	}
	api, err := l.registry.Create(script)
	if err != nil {
		return loadOutcome{err: fmt.Errorf("loading %s: %w", rawURL, err)}
	}
	return loadOutcome{api: api}
}

// scriptPath extracts the script path following /support/api/<version>/.
func scriptPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing script URL: %w", err)
	}
	rest, ok := strings.CutPrefix(u.Path, "/support/api/")
	if !ok {
		return "", fmt.Errorf("script URL %s is not under /support/api/", rawURL)
	}
	_, script, ok := strings.Cut(rest, "/")
	if !ok || script == "" {
		return "", fmt.Errorf("script URL %s has no script path", rawURL)
	}
	return script, nil
}
