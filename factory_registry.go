package settings

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory constructs a strategy instance from builder-expression arguments.
type Factory func(args ...any) (any, error)

// FactoryRegistry stores the constructors that evaluator expressions may
// call, keyed by dotted name (for example "acme.handlers.Custom"). Names
// are case-sensitive, matching how hosts name their types.
type FactoryRegistry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewFactoryRegistry constructs an empty registry.
func NewFactoryRegistry() *FactoryRegistry {
	return &FactoryRegistry{
		factories: make(map[string]Factory),
	}
}

// Register stores fn under name, guarding against duplicates.
func (r *FactoryRegistry) Register(name string, fn Factory) error {
	if fn == nil {
		return fmt.Errorf("settings: factory %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("settings: factory name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factories == nil {
		r.factories = make(map[string]Factory)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("settings: factory %q already registered", name)
	}
	r.factories[name] = fn
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FactoryRegistry) Clone() *FactoryRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FactoryRegistry{
		factories: make(map[string]Factory, len(r.factories)),
	}
	for name, fn := range r.factories {
		clone.factories[name] = fn
	}
	return clone
}

// Build invokes the factory registered for name.
func (r *FactoryRegistry) Build(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("settings: factory registry is nil")
	}
	r.mu.RLock()
	fn := r.factories[name]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("settings: factory %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered factory names sorted alphabetically.
func (r *FactoryRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bindings arranges the registered factories into nested maps keyed by the
// dot-separated segments of their names, so that evaluator environments
// can resolve "acme.handlers.Custom(...)" as a regular member access.
func (r *FactoryRegistry) Bindings() map[string]any {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	root := make(map[string]any, len(r.factories))
	for name, fn := range r.factories {
		segments := strings.Split(name, ".")
		current := root
		ok := true
		for _, segment := range segments[:len(segments)-1] {
			next, exists := current[segment]
			if !exists {
				child := map[string]any{}
				current[segment] = child
				current = child
				continue
			}
			child, isMap := next.(map[string]any)
			if !isMap {
				// A registered name is a prefix of this one; the
				// shorter name wins the binding slot.
				ok = false
				break
			}
			current = child
		}
		if ok {
			current[segments[len(segments)-1]] = fn
		}
	}
	return root
}

// WithCustomFactory registers fn under name for the node being built.
func WithCustomFactory(name string, fn Factory) NodeOption {
	return func(cfg *nodeConfig) {
		if cfg.factories == nil {
			cfg.factories = NewFactoryRegistry()
		}
		_ = cfg.factories.Register(name, fn)
	}
}
