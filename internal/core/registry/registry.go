// Package registry keeps the infrastructure targets available to the host.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/melih/lighthouse-jobs/internal/core/domain"
	"github.com/melih/lighthouse-jobs/internal/core/ports"
)

// Registry maps target names to infrastructure targets.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]ports.InfrastructureTarget
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{targets: make(map[string]ports.InfrastructureTarget)}
}

// Register adds a target under its own name.
func (r *Registry) Register(target ports.InfrastructureTarget) error {
	name := target.Name()
	if name == "" {
		return fmt.Errorf("register target: empty name: %w", domain.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.targets[name]; ok {
		return fmt.Errorf("register target %q: %w", name, domain.ErrAlreadyExists)
	}
	r.targets[name] = target
	return nil
}

// Get returns the target registered under name.
func (r *Registry) Get(name string) (ports.InfrastructureTarget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	target, ok := r.targets[name]
	if !ok {
		return nil, fmt.Errorf("infrastructure target %q: %w", name, domain.ErrNotFound)
	}
	return target, nil
}

// Names returns the registered target names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
