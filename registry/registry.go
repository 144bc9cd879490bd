// Package registry keeps named workflows so compositions can reference
// previously built workflows by name, both in code and in YAML definitions.
package registry

import (
	"sort"
	"sync"

	"github.com/BaSui01/flowkit/types"
	"github.com/BaSui01/flowkit/workflow"
)

// Registry is a concurrency-safe name to workflow mapping.
type Registry struct {
	mu        sync.RWMutex
	workflows map[string]workflow.Workflow
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{workflows: make(map[string]workflow.Workflow)}
}

// Register stores w under name, replacing any previous entry.
func (r *Registry) Register(name string, w workflow.Workflow) error {
	if name == "" {
		return types.NewError(types.ErrInvalidConfig, "registry: empty workflow name")
	}
	if w == nil {
		return types.NewError(types.ErrInvalidConfig, "registry: nil workflow")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workflows[name] = w
	return nil
}

// Lookup returns the workflow registered under name.
func (r *Registry) Lookup(name string) (workflow.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workflows[name]
	if !ok {
		return nil, types.Errorf(types.ErrNotRegistered, "registry: workflow %q not registered", name)
	}
	return w, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.workflows))
	for name := range r.workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered workflows.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workflows)
}
