package provider

import "sync"

// Registry holds the waterfall steps in registration order.
type Registry struct {
	mu    sync.RWMutex
	steps []Step
	index map[string]int
}

// NewRegistry creates an empty step registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register appends a step. Registering a name twice replaces the earlier
// step in place.
func (r *Registry) Register(s Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.index[s.Name()]; ok {
		r.steps[i] = s
		return
	}
	r.index[s.Name()] = len(r.steps)
	r.steps = append(r.steps, s)
}

// Get returns a step by name, or nil if not found.
func (r *Registry) Get(name string) Step {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i, ok := r.index[name]; ok {
		return r.steps[i]
	}
	return nil
}

// Steps returns the registered steps in order.
func (r *Registry) Steps() []Step {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Step(nil), r.steps...)
}

// List returns the registered step names in order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.steps))
	for i, s := range r.steps {
		names[i] = s.Name()
	}
	return names
}
