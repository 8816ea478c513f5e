package agent

import (
	"fmt"
	"sort"
	"sync"

	"github.com/scholarforge/scholarforge/pkg/models"
)

// ErrDuplicateAgent is returned when a kind is registered twice.
var ErrDuplicateAgent = fmt.Errorf("agent already registered")

// Registry maps task kinds to agent instances. Registration happens once
// at startup; afterwards the registry is read-only and safe to share
// across concurrent jobs.
type Registry struct {
	mu     sync.RWMutex
	agents map[models.TaskKind]Agent
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[models.TaskKind]Agent)}
}

// Register adds an agent under its declared kind.
func (r *Registry) Register(a Agent) error {
	if a == nil {
		return fmt.Errorf("agent must not be nil")
	}
	kind := a.Kind()
	if !kind.Valid() {
		return fmt.Errorf("unknown task kind %q", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAgent, kind)
	}
	r.agents[kind] = a
	return nil
}

// Get returns the agent for kind.
func (r *Registry) Get(kind models.TaskKind) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[kind]
	return a, ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []models.TaskKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]models.TaskKind, 0, len(r.agents))
	for kind := range r.agents {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
